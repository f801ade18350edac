package command

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corebank-platform/core/internal/domain/account"
	"github.com/corebank-platform/core/internal/domain/customer"
	"github.com/corebank-platform/core/internal/domain/event"
	"github.com/corebank-platform/core/internal/pipeline"
	"github.com/corebank-platform/core/internal/uow"
	"github.com/corebank-platform/core/pkg/accountnumber"
	"github.com/corebank-platform/core/pkg/cerr"
	"github.com/corebank-platform/core/pkg/money"
)

// maxAccountNumberAttempts bounds the generate-and-check loop CreateAccount
// runs to find an unused account number before giving up (spec.md §9, over
// the sentinel cerr.ErrAccountNumberExhausted).
const maxAccountNumberAttempts = 10

// CreateAccountCommand is the validated input to CreateAccount.
type CreateAccountCommand struct {
	CustomerID      uuid.UUID    `validate:"required"`
	Type            account.Type `validate:"required,oneof=CHECKING SAVINGS FIXED_DEPOSIT"`
	InitialDeposit  decimal.Decimal
	Currency        string `validate:"required,len=3"`
	InterestBearing bool
}

// CreateAccountResult is what CreateAccount returns on success.
type CreateAccountResult struct {
	AccountID     uuid.UUID
	AccountNumber string
}

// NewCreateAccountHandler builds the CreateAccount handler: confirm the
// owning customer exists, allocate a unique account number, construct the
// aggregate and commit it.
func NewCreateAccountHandler(accounts account.Repository, customers customer.Repository, unitOfWork *uow.UnitOfWork) pipeline.Handler[CreateAccountCommand, CreateAccountResult] {
	return func(ctx context.Context, cmd CreateAccountCommand) (CreateAccountResult, []event.Event, error) {
		exists, err := customers.ExistsByID(ctx, cmd.CustomerID)
		if err != nil {
			return CreateAccountResult{}, nil, err
		}

		if !exists {
			return CreateAccountResult{}, nil, cerr.Translate(cerr.ErrCustomerNotFound, "Customer")
		}

		accountNumber, err := allocateAccountNumber(ctx, accounts)
		if err != nil {
			return CreateAccountResult{}, nil, err
		}

		deposit, err := money.New(cmd.InitialDeposit, cmd.Currency)
		if err != nil {
			return CreateAccountResult{}, nil, cerr.Translate(cerr.ErrCurrencyMismatch, "Account")
		}

		a, err := account.Create(cmd.CustomerID, accountNumber, cmd.Type, deposit)
		if err != nil {
			return CreateAccountResult{}, nil, cerr.Translate(err, "Account")
		}

		a.SetInterestBearing(cmd.InterestBearing)

		scope := unitOfWork.NewScope()
		scope.TrackNewAccount(a)

		committed, err := scope.Commit(ctx)
		if err != nil {
			return CreateAccountResult{}, nil, err
		}

		return CreateAccountResult{AccountID: a.ID, AccountNumber: a.AccountNumber}, committed, nil
	}
}

// allocateAccountNumber generates a random 10-digit account number and
// retries on collision, up to maxAccountNumberAttempts times.
func allocateAccountNumber(ctx context.Context, accounts account.Repository) (string, error) {
	for i := 0; i < maxAccountNumberAttempts; i++ {
		candidate, err := accountnumber.Generate()
		if err != nil {
			return "", err
		}

		taken, err := accounts.AccountNumberExists(ctx, candidate)
		if err != nil {
			return "", err
		}

		if !taken {
			return candidate, nil
		}
	}

	return "", cerr.Translate(cerr.ErrAccountNumberExhausted, "Account")
}
