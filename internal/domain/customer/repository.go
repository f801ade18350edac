package customer

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the typed accessor over persisted Customer state (spec.md
// §4.2).
//
//go:generate mockgen --destination=mock/customer_repository_mock.go --package=mock . Repository
type Repository interface {
	Add(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
	SaveChanges(ctx context.Context) error

	ByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
	ByEmail(ctx context.Context, email string) (*Customer, error)
	All(ctx context.Context) ([]*Customer, error)
}
