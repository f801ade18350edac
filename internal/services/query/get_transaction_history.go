package query

import (
	"context"
	"time"

	"github.com/corebank-platform/core/internal/domain/account"
	"github.com/corebank-platform/core/internal/domain/event"
	"github.com/corebank-platform/core/internal/pipeline"
)

// GetTransactionHistoryQuery is the validated input to GetTransactionHistory.
type GetTransactionHistoryQuery struct {
	AccountNumber string `validate:"required"`
	Start         time.Time
	End           time.Time `validate:"required"`
}

// NewGetTransactionHistoryHandler builds the GetTransactionHistory handler.
// A zero Start is treated as "since account opening" by passing it straight
// through to ByAccountAndDateRange, which in turn treats a zero time.Time as
// an open lower bound.
func NewGetTransactionHistoryHandler(accounts account.Repository, transactions account.TransactionRepository) pipeline.Handler[GetTransactionHistoryQuery, []*account.Transaction] {
	return func(ctx context.Context, q GetTransactionHistoryQuery) ([]*account.Transaction, []event.Event, error) {
		a, err := accounts.ByAccountNumber(ctx, q.AccountNumber)
		if err != nil {
			return nil, nil, err
		}

		txns, err := transactions.ByAccountAndDateRange(ctx, a.ID, q.Start, q.End)
		if err != nil {
			return nil, nil, err
		}

		return txns, nil, nil
	}
}
