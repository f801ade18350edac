// Package command holds the write-side operations spec.md §4.4 names:
// CreateCustomer, CreateAccount, TransferMoney. Each is built as a
// pipeline.Handler, backed by a fresh uow.Scope per invocation (spec.md §5
// "each command execution runs inside its own scope with a
// freshly-provisioned Unit of Work"). Grounded on the teacher's
// command-layer shape (one file per use case under
// components/*/internal/services/command), adapted from its DDD
// input/UseCase pair to the generic pipeline.Handler contract.
package command

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/corebank-platform/core/internal/domain/customer"
	"github.com/corebank-platform/core/internal/domain/event"
	"github.com/corebank-platform/core/internal/pipeline"
	"github.com/corebank-platform/core/internal/uow"
	"github.com/corebank-platform/core/pkg/cerr"
)

// CreateCustomerCommand is the validated input to CreateCustomer.
type CreateCustomerCommand struct {
	Names       string    `validate:"required"`
	Email       string    `validate:"required,email"`
	Phone       string    `validate:"required"`
	Address     string    `validate:"required"`
	DateOfBirth time.Time `validate:"required"`
	BVN         string    `validate:"required,len=11"`
	CreditScore int       `validate:"gte=0,lte=999"`
}

// CreateCustomerResult is what CreateCustomer returns on success.
type CreateCustomerResult struct {
	CustomerID uuid.UUID
}

// NewCreateCustomerHandler builds the CreateCustomer handler: check the
// email is free, construct the aggregate, and commit it through a fresh
// Unit of Work scope. Customer emits no domain events, so the handler
// always returns a nil events slice — the DomainEvents pipeline stage has
// nothing to dispatch for this command.
func NewCreateCustomerHandler(customers customer.Repository, unitOfWork *uow.UnitOfWork) pipeline.Handler[CreateCustomerCommand, CreateCustomerResult] {
	return func(ctx context.Context, cmd CreateCustomerCommand) (CreateCustomerResult, []event.Event, error) {
		existing, err := customers.ByEmail(ctx, cmd.Email)
		emailExists := err == nil && existing != nil

		c, err := customer.Create(cmd.Names, cmd.Email, cmd.Phone, cmd.Address, cmd.DateOfBirth, cmd.BVN, cmd.CreditScore, emailExists)
		if err != nil {
			return CreateCustomerResult{}, nil, cerr.Translate(err, "Customer")
		}

		scope := unitOfWork.NewScope()
		scope.TrackNewCustomer(c)

		if _, err := scope.Commit(ctx); err != nil {
			return CreateCustomerResult{}, nil, err
		}

		return CreateCustomerResult{CustomerID: c.ID}, nil, nil
	}
}
