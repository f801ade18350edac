package pipeline

import (
	"context"

	"github.com/corebank-platform/core/internal/domain/event"
	"github.com/corebank-platform/core/internal/events"
)

// DomainEvents runs only after next returns success; it flushes the events
// the Unit of Work committed during the call to the in-process dispatcher
// (spec.md §4.4 stage 3). Because it sits innermost in the chain — closest
// to the handler — it runs after the handler's own Unit-of-Work commit and
// before Validation/Logging see the result, matching "must run after Unit
// of Work commit, not before".
func DomainEvents[TCmd any, TResult any](dispatcher *events.Dispatcher) Middleware[TCmd, TResult] {
	return func(next Handler[TCmd, TResult]) Handler[TCmd, TResult] {
		return func(ctx context.Context, cmd TCmd) (TResult, []event.Event, error) {
			result, evts, err := next(ctx, cmd)
			if err != nil {
				return result, evts, err
			}

			for _, e := range evts {
				dispatcher.Publish(ctx, e)
			}

			return result, evts, nil
		}
	}
}
