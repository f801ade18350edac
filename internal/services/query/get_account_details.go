// Package query holds the read-side operations spec.md §4.4 names:
// GetAccountDetails, GetTransactionHistory, GetCustomers, GetCustomerDetails.
// None of them produce domain events, so every handler returns a nil events
// slice — the DomainEvents pipeline stage is a no-op for queries but still
// runs, keeping the same three-stage chain for commands and queries alike
// (spec.md §4.4 "the same pipeline wraps both commands and queries").
package query

import (
	"context"

	"github.com/corebank-platform/core/internal/domain/account"
	"github.com/corebank-platform/core/internal/domain/event"
	"github.com/corebank-platform/core/internal/pipeline"
)

// GetAccountDetailsQuery is the validated input to GetAccountDetails.
type GetAccountDetailsQuery struct {
	AccountNumber string `validate:"required"`
}

// NewGetAccountDetailsHandler builds the GetAccountDetails handler.
func NewGetAccountDetailsHandler(accounts account.Repository) pipeline.Handler[GetAccountDetailsQuery, *account.Account] {
	return func(ctx context.Context, q GetAccountDetailsQuery) (*account.Account, []event.Event, error) {
		a, err := accounts.ByAccountNumber(ctx, q.AccountNumber)
		if err != nil {
			return nil, nil, err
		}

		return a, nil, nil
	}
}
