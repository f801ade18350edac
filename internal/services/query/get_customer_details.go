package query

import (
	"context"

	"github.com/google/uuid"

	"github.com/corebank-platform/core/internal/domain/account"
	"github.com/corebank-platform/core/internal/domain/customer"
	"github.com/corebank-platform/core/internal/domain/event"
	"github.com/corebank-platform/core/internal/pipeline"
)

// GetCustomerDetailsQuery is the validated input to GetCustomerDetails.
type GetCustomerDetailsQuery struct {
	CustomerID uuid.UUID `validate:"required"`
}

// CustomerDetails bundles a customer with the accounts it owns — the
// customer aggregate itself holds no account collection (spec.md §3 "the
// collection is loaded only when needed").
type CustomerDetails struct {
	Customer *customer.Customer
	Accounts []*account.Account
}

// NewGetCustomerDetailsHandler builds the GetCustomerDetails handler.
func NewGetCustomerDetailsHandler(customers customer.Repository, accounts account.Repository) pipeline.Handler[GetCustomerDetailsQuery, CustomerDetails] {
	return func(ctx context.Context, q GetCustomerDetailsQuery) (CustomerDetails, []event.Event, error) {
		c, err := customers.ByID(ctx, q.CustomerID)
		if err != nil {
			return CustomerDetails{}, nil, err
		}

		owned, err := accounts.AllForCustomer(ctx, q.CustomerID)
		if err != nil {
			return CustomerDetails{}, nil, err
		}

		return CustomerDetails{Customer: c, Accounts: owned}, nil, nil
	}
}
