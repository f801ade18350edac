package query

import (
	"context"

	"github.com/corebank-platform/core/internal/domain/customer"
	"github.com/corebank-platform/core/internal/domain/event"
	"github.com/corebank-platform/core/internal/pipeline"
)

// GetCustomersQuery has no parameters; it lists every customer.
type GetCustomersQuery struct{}

// NewGetCustomersHandler builds the GetCustomers handler.
func NewGetCustomersHandler(customers customer.Repository) pipeline.Handler[GetCustomersQuery, []*customer.Customer] {
	return func(ctx context.Context, _ GetCustomersQuery) ([]*customer.Customer, []event.Event, error) {
		all, err := customers.All(ctx)
		if err != nil {
			return nil, nil, err
		}

		return all, nil, nil
	}
}
