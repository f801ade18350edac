package account

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the typed accessor over persisted Account state (spec.md
// §4.2). Grounded on the teacher's portfolio/account Repository interface
// (_examples/LerianStudio-midaz/components/ledger/internal/domain/portfolio/account/account_repository.go),
// which carries the same `//go:generate mockgen` convention this interface
// keeps. No generated mock is checked in; the unit tests use hand-written
// fakes.
//
//go:generate mockgen --destination=mock/account_repository_mock.go --package=mock . Repository
type Repository interface {
	Add(ctx context.Context, a *Account) error
	Update(ctx context.Context, a *Account) error
	SaveChanges(ctx context.Context) error

	ByID(ctx context.Context, id uuid.UUID) (*Account, error)
	ByAccountNumber(ctx context.Context, accountNumber string) (*Account, error)
	AllForCustomer(ctx context.Context, customerID uuid.UUID) ([]*Account, error)
	AccountNumberExists(ctx context.Context, accountNumber string) (bool, error)

	Active(ctx context.Context) ([]*Account, error)
	InterestBearing(ctx context.Context) ([]*Account, error)
	InactiveSince(ctx context.Context, cutoff time.Time) ([]*Account, error)
	ByStatus(ctx context.Context, status Status) ([]*Account, error)
	LowBalance(ctx context.Context, threshold float64) ([]*Account, error)
}
