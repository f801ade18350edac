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

func mustMoney(t *testing.T, amount float64, currency string) money.Money {
	t.Helper()

	m, err := money.New(decimal.NewFromFloat(amount), currency)
	require.NoError(t, err)

	return m
}

func newTestAccount(t *testing.T, balance float64, accountType Type) *Account {
	t.Helper()

	a, err := Create(uuid.New(), "1234567890", accountType, mustMoney(t, balance, "NGN"))
	require.NoError(t, err)
	a.ClearPendingEvents()

	return a
}

func TestCreateAppendsAccountCreatedEvent(t *testing.T) {
	a, err := Create(uuid.New(), "1234567890", TypeChecking, mustMoney(t, 100, "NGN"))
	require.NoError(t, err)

	events := a.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "AccountCreated", events[0].Type())
	assert.True(t, a.IsActive)
	assert.Equal(t, StatusActive, a.Status)
}

func TestCreateRejectsNegativeInitialDeposit(t *testing.T) {
	_, err := Create(uuid.New(), "1234567890", TypeChecking, mustMoney(t, -1, "NGN"))
	assert.ErrorIs(t, err, cerr.ErrNegativeInitialDeposit)
}

func TestCreateRejectsBadCurrency(t *testing.T) {
	bad := money.Money{Amount: decimal.NewFromInt(10), Currency: "NG"}
	_, err := Create(uuid.New(), "1234567890", TypeChecking, bad)
	assert.ErrorIs(t, err, cerr.ErrCurrencyMismatch)
}

func TestDepositCreditsBalanceAndTransaction(t *testing.T) {
	a := newTestAccount(t, 100, TypeChecking)

	txn, err := a.Deposit(mustMoney(t, 50, "NGN"), "salary")
	require.NoError(t, err)

	assert.True(t, a.Balance.Amount.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, TxnDeposit, txn.Type)
	assert.Equal(t, a.ID, txn.AccountID)
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	a := newTestAccount(t, 100, TypeChecking)

	_, err := a.Deposit(mustMoney(t, 0, "NGN"), "x")
	assert.ErrorIs(t, err, cerr.ErrNonPositiveAmount)

	_, err = a.Deposit(mustMoney(t, -10, "NGN"), "x")
	assert.ErrorIs(t, err, cerr.ErrNonPositiveAmount)
}

func TestDepositRejectsCurrencyMismatch(t *testing.T) {
	a := newTestAccount(t, 100, TypeChecking)

	_, err := a.Deposit(mustMoney(t, 10, "USD"), "x")
	assert.ErrorIs(t, err, cerr.ErrCurrencyMismatch)
}

func TestDepositRejectsInactiveAccount(t *testing.T) {
	a := newTestAccount(t, 0, TypeChecking)
	require.NoError(t, a.CloseAccount())

	_, err := a.Deposit(mustMoney(t, 10, "NGN"), "x")
	assert.ErrorIs(t, err, cerr.ErrAccountInactive)
}

func TestWithdrawBoundaryBehavior(t *testing.T) {
	a := newTestAccount(t, 100, TypeChecking)

	_, err := a.Withdraw(mustMoney(t, 100, "NGN"), "x", 0)
	require.NoError(t, err, "withdrawing exactly the balance must succeed")
	assert.True(t, a.Balance.IsZero())
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	a := newTestAccount(t, 100, TypeChecking)

	_, err := a.Withdraw(mustMoney(t, 100.01, "NGN"), "x", 0)
	assert.ErrorIs(t, err, cerr.ErrInsufficientFunds)
	assert.True(t, a.Balance.Amount.Equal(decimal.NewFromInt(100)), "balance must not change on failure")
}

func TestWithdrawSavingsMonthlyCap(t *testing.T) {
	a := newTestAccount(t, 1000, TypeSavings)

	_, err := a.Withdraw(mustMoney(t, 1, "NGN"), "x", 6)
	assert.ErrorIs(t, err, cerr.ErrWithdrawalLimit, "the 7th withdrawal in a month must fail")

	_, err = a.Withdraw(mustMoney(t, 1, "NGN"), "x", 5)
	assert.NoError(t, err, "the 6th withdrawal in a month must succeed")
}

func TestWithdrawNonSavingsIgnoresCap(t *testing.T) {
	a := newTestAccount(t, 1000, TypeChecking)

	_, err := a.Withdraw(mustMoney(t, 1, "NGN"), "x", 20)
	assert.NoError(t, err)
}

func TestTransferHappyPath(t *testing.T) {
	src := newTestAccount(t, 1000, TypeChecking)
	dst := newTestAccount(t, 500, TypeChecking)

	result, err := src.Transfer(dst, mustMoney(t, 200, "NGN"), "R1", "x")
	require.NoError(t, err)

	assert.True(t, src.Balance.Amount.Equal(decimal.NewFromInt(800)))
	assert.True(t, dst.Balance.Amount.Equal(decimal.NewFromInt(1100)))
	assert.Equal(t, TxnTransferOut, result.SourceTxn.Type)
	assert.Equal(t, TxnTransferIn, result.DestinationTxn.Type)
	assert.Equal(t, "R1", result.SourceTxn.Reference)
	assert.Equal(t, "R1", result.DestinationTxn.Reference)

	events := src.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "MoneyTransferred", events[0].Type())
}

func TestTransferRejectsSameAccount(t *testing.T) {
	a := newTestAccount(t, 1000, TypeChecking)

	_, err := a.Transfer(a, mustMoney(t, 10, "NGN"), "", "x")
	assert.ErrorIs(t, err, cerr.ErrSameAccount)
}

func TestTransferRejectsCurrencyMismatch(t *testing.T) {
	src := newTestAccount(t, 1000, TypeChecking)
	dst, err := Create(uuid.New(), "9999999999", TypeChecking, mustMoney(t, 100, "USD"))
	require.NoError(t, err)

	_, err = src.Transfer(dst, mustMoney(t, 10, "NGN"), "", "x")
	assert.ErrorIs(t, err, cerr.ErrCurrencyMismatch)
	assert.True(t, src.Balance.Amount.Equal(decimal.NewFromInt(1000)), "no mutation on validation failure")
}

func TestTransferInsufficientFundsEmitsEventButNoMutation(t *testing.T) {
	src := newTestAccount(t, 100, TypeChecking)
	dst := newTestAccount(t, 500, TypeChecking)

	_, err := src.Transfer(dst, mustMoney(t, 200, "NGN"), "", "x")
	assert.ErrorIs(t, err, cerr.ErrInsufficientFunds)
	assert.True(t, src.Balance.Amount.Equal(decimal.NewFromInt(100)))
	assert.True(t, dst.Balance.Amount.Equal(decimal.NewFromInt(500)))

	events := src.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "InsufficientFunds", events[0].Type())
}

func TestCloseAccountRequiresZeroBalance(t *testing.T) {
	a := newTestAccount(t, 100, TypeChecking)

	err := a.CloseAccount()
	assert.ErrorIs(t, err, cerr.ErrAccountHasBalance)

	_, err = a.Withdraw(mustMoney(t, 100, "NGN"), "x", 0)
	require.NoError(t, err)

	require.NoError(t, a.CloseAccount())
	assert.Equal(t, StatusClosed, a.Status)
	assert.False(t, a.IsActive)
}

func TestUpdateStatusBasedOnRulesDormancy(t *testing.T) {
	a := newTestAccount(t, 0, TypeChecking)
	now := time.Now().UTC()

	a.LastActivity = now.Add(-400 * 24 * time.Hour)
	a.UpdateStatusBasedOnRules(now)
	assert.Equal(t, StatusInactive, a.Status)

	a.LastActivity = now.Add(-4 * 365 * 24 * time.Hour)
	a.UpdateStatusBasedOnRules(now)
	assert.Equal(t, StatusArchived, a.Status)
	assert.True(t, a.IsArchived)
}

func TestUpdateStatusBasedOnRulesStaysActiveWhenRecent(t *testing.T) {
	a := newTestAccount(t, 0, TypeChecking)
	a.LastActivity = time.Now().UTC()

	a.UpdateStatusBasedOnRules(time.Now().UTC())
	assert.Equal(t, StatusActive, a.Status)
}

func TestCreditInterest(t *testing.T) {
	a := newTestAccount(t, 1000, TypeSavings)

	txn, err := a.CreditInterest(mustMoney(t, 14.79, "NGN"), time.Now().UTC(), "monthly interest")
	require.NoError(t, err)

	assert.True(t, a.Balance.Amount.Equal(decimal.NewFromFloat(1014.79)))
	assert.Equal(t, TxnInterestCredit, txn.Type)
	assert.Regexp(t, `^INT-\d{8}-[0-9A-F]{8}$`, txn.Reference)
}

func TestSetInterestBearing(t *testing.T) {
	a := newTestAccount(t, 0, TypeSavings)
	assert.False(t, a.InterestBearing)

	a.SetInterestBearing(true)
	assert.True(t, a.InterestBearing)
}
