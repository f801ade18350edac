package command

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/corebank-platform/core/internal/domain/account"
	"github.com/corebank-platform/core/internal/domain/event"
	"github.com/corebank-platform/core/internal/pipeline"
	"github.com/corebank-platform/core/internal/uow"
	"github.com/corebank-platform/core/pkg/money"
)

// TransferMoneyCommand is the validated input to TransferMoney.
type TransferMoneyCommand struct {
	SourceAccountNumber      string `validate:"required"`
	DestinationAccountNumber string `validate:"required"`
	Amount                   decimal.Decimal
	Currency                 string `validate:"required,len=3"`
	Reference                string
	Description              string
}

// TransferMoneyResult is what TransferMoney returns on success.
type TransferMoneyResult struct {
	SourceTransactionID      string
	DestinationTransactionID string
}

// NewTransferMoneyHandler builds the TransferMoney handler. It reloads both
// accounts fresh inside the handler (never across retries), applies
// Account.Transfer, and commits both mutated aggregates plus the two child
// transactions in one Unit of Work scope — spec.md §4.3's "a transfer
// touches two aggregates; both flush in the same transaction or neither
// does."
func NewTransferMoneyHandler(accounts account.Repository, unitOfWork *uow.UnitOfWork) pipeline.Handler[TransferMoneyCommand, TransferMoneyResult] {
	return func(ctx context.Context, cmd TransferMoneyCommand) (TransferMoneyResult, []event.Event, error) {
		source, err := accounts.ByAccountNumber(ctx, cmd.SourceAccountNumber)
		if err != nil {
			return TransferMoneyResult{}, nil, err
		}

		destination, err := accounts.ByAccountNumber(ctx, cmd.DestinationAccountNumber)
		if err != nil {
			return TransferMoneyResult{}, nil, err
		}

		amount, err := money.New(cmd.Amount, cmd.Currency)
		if err != nil {
			return TransferMoneyResult{}, nil, err
		}

		result, err := source.Transfer(destination, amount, cmd.Reference, cmd.Description)

		scope := unitOfWork.NewScope()
		scope.TrackAccount(source)

		if err != nil {
			// Transfer() may have appended an InsufficientFunds event to
			// source without mutating any balance; that event still needs
			// to reach the outbox, so source is tracked and committed even
			// on failure.
			if _, commitErr := scope.Commit(ctx); commitErr != nil {
				return TransferMoneyResult{}, nil, commitErr
			}

			return TransferMoneyResult{}, nil, err
		}

		scope.TrackAccount(destination)
		scope.AddTransaction(result.SourceTxn)
		scope.AddTransaction(result.DestinationTxn)

		committed, err := scope.Commit(ctx)
		if err != nil {
			return TransferMoneyResult{}, nil, err
		}

		return TransferMoneyResult{
			SourceTransactionID:      result.SourceTxn.ID.String(),
			DestinationTransactionID: result.DestinationTxn.ID.String(),
		}, committed, nil
	}
}
