package account

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TransactionRepository is the typed accessor over persisted Transaction
// state (spec.md §4.2), including the average-daily-balance projection used
// by monthly interest calculation.
//
//go:generate mockgen --destination=mock/transaction_repository_mock.go --package=mock . TransactionRepository
type TransactionRepository interface {
	Add(ctx context.Context, t *Transaction) error
	AddRange(ctx context.Context, txns []*Transaction) error
	SaveChanges(ctx context.Context) error

	ByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ByAccount(ctx context.Context, accountID uuid.UUID) ([]*Transaction, error)
	ByAccountAndDateRange(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]*Transaction, error)
	OlderThan(ctx context.Context, cutoff time.Time) ([]*Transaction, error)
	RecentSince(ctx context.Context, accountID uuid.UUID, since time.Time) ([]*Transaction, error)
	ByDateRange(ctx context.Context, start, end time.Time) ([]*Transaction, error)
	CountByTypeInRange(ctx context.Context, accountID uuid.UUID, txnType TxnType, start, end time.Time) (int, error)

	// AverageDailyBalance implements spec.md §4.2's algorithm: seed the
	// running balance from the account's balance as of startDate minus one
	// day (the corrected semantics spec.md §9 mandates over the source's
	// unseeded walk), then apply each day's transactions in [startDate,
	// endDate] and average the end-of-day balances over the day count.
	AverageDailyBalance(ctx context.Context, accountID uuid.UUID, startDate, endDate time.Time) (float64, error)
}
