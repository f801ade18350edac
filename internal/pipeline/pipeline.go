// Package pipeline is the command/query middleware chain spec.md §4.4
// describes: Logging → Validation → DomainEvents, wrapping every handler.
// Grounded on the teacher's WithBody/ValidateStruct decorator chain
// (_examples/LerianStudio-midaz/common/net/http/withBody.go) — same
// go-playground validator usage and same "wrap the real handler" shape —
// generalized from an HTTP-specific decorator to a generic in-process one.
package pipeline

import (
	"context"

	"github.com/corebank-platform/core/internal/domain/event"
)

// Handler executes one command or query. The []event.Event return is the
// set of domain events the Unit of Work committed during the call — set
// only on success, consumed by the DomainEvents middleware and otherwise
// invisible to callers of Execute.
type Handler[TCmd any, TResult any] func(ctx context.Context, cmd TCmd) (TResult, []event.Event, error)

// Middleware wraps a Handler to produce another.
type Middleware[TCmd any, TResult any] func(next Handler[TCmd, TResult]) Handler[TCmd, TResult]

// Compose applies mws around base, outermost first: Compose(base, Logging,
// Validation, DomainEvents) runs Logging, then Validation, then
// DomainEvents, then base.
func Compose[TCmd any, TResult any](base Handler[TCmd, TResult], mws ...Middleware[TCmd, TResult]) Handler[TCmd, TResult] {
	h := base
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}

	return h
}

// Execute composes base with mws and runs cmd through it, discarding the
// committed-events list handlers and middleware use internally — callers
// outside the pipeline only ever see the typed result and error.
func Execute[TCmd any, TResult any](ctx context.Context, cmd TCmd, base Handler[TCmd, TResult], mws ...Middleware[TCmd, TResult]) (TResult, error) {
	result, _, err := Compose(base, mws...)(ctx, cmd)
	return result, err
}
