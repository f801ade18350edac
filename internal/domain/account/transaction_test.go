package account

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank-platform/core/pkg/cerr"
	"github.com/corebank-platform/core/pkg/money"
)

func TestNewTransactionGeneratesReferenceWhenEmpty(t *testing.T) {
	amount, _ := money.New(decimal.NewFromInt(10), "NGN")

	txn, err := newTransaction(uuid.New(), TxnDeposit, amount, "x", "")
	require.NoError(t, err)
	assert.Regexp(t, `^\d{14}-[0-9a-f]{8}$`, txn.Reference)
}

func TestNewTransactionPreservesCallerReference(t *testing.T) {
	amount, _ := money.New(decimal.NewFromInt(10), "NGN")

	txn, err := newTransaction(uuid.New(), TxnDeposit, amount, "x", "CALLER-REF-1")
	require.NoError(t, err)
	assert.Equal(t, "CALLER-REF-1", txn.Reference, "a non-empty caller-supplied reference must never be dropped")
}

func TestNewTransactionStoresEveryConstructorArgument(t *testing.T) {
	accountID := uuid.New()
	amount, _ := money.New(decimal.NewFromInt(42), "NGN")

	txn, err := newTransaction(accountID, TxnWithdrawal, amount, "rent", "REF-X")
	require.NoError(t, err)

	assert.Equal(t, accountID, txn.AccountID)
	assert.Equal(t, TxnWithdrawal, txn.Type)
	assert.True(t, txn.Amount.Amount.Equal(decimal.NewFromInt(42)))
	assert.Equal(t, "rent", txn.Description)
	assert.Equal(t, "REF-X", txn.Reference)
	assert.NotEqual(t, uuid.Nil, txn.ID)
	assert.False(t, txn.Timestamp.IsZero())
}

func TestNewTransactionRejectsNonPositiveAmount(t *testing.T) {
	zero, _ := money.New(decimal.Zero, "NGN")

	_, err := newTransaction(uuid.New(), TxnDeposit, zero, "x", "")
	assert.ErrorIs(t, err, cerr.ErrNonPositiveAmount)
}

func TestCreateInterestCreditReferenceFormat(t *testing.T) {
	amount, _ := money.New(decimal.NewFromFloat(14.79), "NGN")

	txn, err := CreateInterestCredit(uuid.New(), amount, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "interest")
	require.NoError(t, err)

	assert.Equal(t, TxnInterestCredit, txn.Type)
	assert.Regexp(t, `^INT-20260301-[0-9A-F]{8}$`, txn.Reference)
}

func TestTxnTypeSign(t *testing.T) {
	assert.Equal(t, 1, TxnDeposit.Sign())
	assert.Equal(t, 1, TxnTransferIn.Sign())
	assert.Equal(t, 1, TxnInterestCredit.Sign())
	assert.Equal(t, -1, TxnWithdrawal.Sign())
	assert.Equal(t, -1, TxnTransferOut.Sign())
	assert.Equal(t, 0, TxnTransfer.Sign())
}
