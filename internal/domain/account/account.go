// Package account holds the Account aggregate root: the only entity in the
// system that owns an invariant boundary and emits domain events (spec.md §3,
// §4.1). Grounded on the teacher's portfolio/account aggregate
// (_examples/LerianStudio-midaz/components/ledger/internal/domain/portfolio/account/account.go),
// adapted from a thin CRUD record to a behavior-bearing aggregate.
package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/corebank-platform/core/internal/domain/event"
	"github.com/corebank-platform/core/pkg/cerr"
	"github.com/corebank-platform/core/pkg/money"
)

// Type enumerates the supported account products.
type Type string

const (
	TypeChecking     Type = "CHECKING"
	TypeSavings      Type = "SAVINGS"
	TypeFixedDeposit Type = "FIXED_DEPOSIT"
)

// Status is the maintenance state machine driven by UpdateStatusBasedOnRules
// and the account-maintenance scheduled job.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusInactive  Status = "INACTIVE"
	StatusClosed    Status = "CLOSED"
	StatusSuspended Status = "SUSPENDED"
	StatusArchived  Status = "ARCHIVED"
)

// savingsMonthlyWithdrawalCap is the number of withdrawals a Savings account
// may make in a single calendar month before WithdrawalLimit kicks in.
const savingsMonthlyWithdrawalCap = 6

// inactiveAfter and archivedAfter are the age thresholds UpdateStatusBasedOnRules
// applies against LastActivity (spec.md §4.8(c)).
const (
	inactiveAfter = 365 * 24 * time.Hour
	archivedAfter = 3 * 365 * 24 * time.Hour
)

// Account is the aggregate root for customer funds. Every mutation either
// returns a typed failure or mutates in place and appends a pending domain
// event; it performs no I/O (spec.md §4.1 "Aggregate methods must be
// deterministic... no I/O and no logging").
type Account struct {
	ID             uuid.UUID
	AccountNumber  string
	CustomerID     uuid.UUID
	Type           Type
	Balance        money.Money
	DateOpened     time.Time
	IsActive       bool
	IsDeleted      bool
	DeletedAt      *time.Time
	DeletedBy      *string
	RowVersion     []byte
	LastActivity   time.Time
	Status         Status
	InterestBearing bool
	IsArchived     bool

	pendingEvents []event.Event
}

// Create builds a new Account and appends AccountCreated to its pending
// events. initialDeposit must be non-negative and carry a valid currency.
func Create(customerID uuid.UUID, accountNumber string, accountType Type, initialDeposit money.Money) (*Account, error) {
	if initialDeposit.IsNegative() {
		return nil, cerr.ErrNegativeInitialDeposit
	}

	if len(initialDeposit.Currency) != 3 {
		return nil, cerr.ErrCurrencyMismatch
	}

	now := time.Now().UTC()

	a := &Account{
		ID:            uuid.New(),
		AccountNumber: accountNumber,
		CustomerID:    customerID,
		Type:          accountType,
		Balance:       initialDeposit,
		DateOpened:    now,
		IsActive:      true,
		LastActivity:  now,
		Status:        StatusActive,
	}

	a.pendingEvents = append(a.pendingEvents, event.NewAccountCreated(a.ID, a.AccountNumber, a.CustomerID, string(a.Type), a.Balance))

	return a, nil
}

// PendingEvents returns the queued-but-not-yet-committed events, read-only.
// Callers must not mutate the returned slice; it is cleared only by ClearPendingEvents.
func (a *Account) PendingEvents() []event.Event {
	out := make([]event.Event, len(a.pendingEvents))
	copy(out, a.pendingEvents)

	return out
}

// ClearPendingEvents empties the queue. Called by the Unit of Work once the
// events have been snapshotted into outbox rows (spec.md §4.3 step 3).
func (a *Account) ClearPendingEvents() {
	a.pendingEvents = nil
}

// RestorePendingEvents re-installs a previously snapshotted queue. Used by
// the Unit of Work to undo ClearPendingEvents when a commit rolls back
// (spec.md §4.3 "aggregates' pending-event lists are restored").
func (a *Account) RestorePendingEvents(events []event.Event) {
	a.pendingEvents = events
}

func (a *Account) requireActive() error {
	if a.IsDeleted || !a.IsActive || a.Status != StatusActive {
		return cerr.ErrAccountInactive
	}

	return nil
}

// Deposit credits the account and returns the resulting Transaction. amount
// must be positive and share the balance's currency.
func (a *Account) Deposit(amount money.Money, description string) (*Transaction, error) {
	if err := a.requireActive(); err != nil {
		return nil, err
	}

	if amount.IsNegative() || amount.IsZero() {
		return nil, cerr.ErrNonPositiveAmount
	}

	if !a.Balance.SameCurrency(amount) {
		return nil, cerr.ErrCurrencyMismatch
	}

	newBalance, err := a.Balance.Add(amount)
	if err != nil {
		return nil, err
	}

	txn, err := newTransaction(a.ID, TxnDeposit, amount, description, "")
	if err != nil {
		return nil, err
	}

	a.Balance = newBalance
	a.LastActivity = time.Now().UTC()

	return txn, nil
}

// Withdraw debits the account, enforcing the balance floor and the Savings
// monthly cap. currentMonthWithdrawals is the count of withdrawals already
// posted in the calendar month containing now, supplied by the caller
// (repositories derive it from persisted transactions, never from memory —
// spec.md §5 "Shared-resource policy").
func (a *Account) Withdraw(amount money.Money, description string, currentMonthWithdrawals int) (*Transaction, error) {
	if err := a.requireActive(); err != nil {
		return nil, err
	}

	if amount.IsNegative() || amount.IsZero() {
		return nil, cerr.ErrNonPositiveAmount
	}

	if !a.Balance.SameCurrency(amount) {
		return nil, cerr.ErrCurrencyMismatch
	}

	if a.Type == TypeSavings && currentMonthWithdrawals+1 > savingsMonthlyWithdrawalCap {
		return nil, cerr.ErrWithdrawalLimit
	}

	ok, err := a.Balance.GreaterThanOrEqual(amount)
	if err != nil {
		return nil, err
	}

	if !ok {
		a.pendingEvents = append(a.pendingEvents, event.NewInsufficientFunds(a.AccountNumber, amount, a.Balance, "Withdraw"))
		return nil, cerr.ErrInsufficientFunds
	}

	newBalance, err := a.Balance.Sub(amount)
	if err != nil {
		return nil, err
	}

	txn, err := newTransaction(a.ID, TxnWithdrawal, amount, description, "")
	if err != nil {
		return nil, err
	}

	a.Balance = newBalance
	a.LastActivity = time.Now().UTC()

	return txn, nil
}

// TransferResult carries the pair of child transactions a successful
// Transfer produces on the source and destination accounts.
type TransferResult struct {
	SourceTxn      *Transaction
	DestinationTxn *Transaction
}

// Transfer debits a and credits dest by amount, appending matching
// TransferOut/TransferIn transactions and a MoneyTransferred event on
// success. On a currency mismatch or matching ids it returns a Validation
// reason without mutating either account. On insufficient funds it appends
// an InsufficientFunds event to a (but still returns a failure — the event
// records the attempt, spec.md §4.1) and returns the error without mutating
// balances.
func (a *Account) Transfer(dest *Account, amount money.Money, reference, description string) (*TransferResult, error) {
	if a.ID == dest.ID {
		return nil, cerr.ErrSameAccount
	}

	if err := a.requireActive(); err != nil {
		return nil, err
	}

	if err := dest.requireActive(); err != nil {
		return nil, err
	}

	if amount.IsNegative() || amount.IsZero() {
		return nil, cerr.ErrNonPositiveAmount
	}

	if !a.Balance.SameCurrency(amount) || !a.Balance.SameCurrency(dest.Balance) {
		return nil, cerr.ErrCurrencyMismatch
	}

	ok, err := a.Balance.GreaterThanOrEqual(amount)
	if err != nil {
		return nil, err
	}

	if !ok {
		a.pendingEvents = append(a.pendingEvents, event.NewInsufficientFunds(a.AccountNumber, amount, a.Balance, "Transfer"))
		return nil, cerr.ErrInsufficientFunds
	}

	transactionID := uuid.New()

	if reference == "" {
		reference = generateReference(transactionID)
	}

	srcBalance, err := a.Balance.Sub(amount)
	if err != nil {
		return nil, err
	}

	dstBalance, err := dest.Balance.Add(amount)
	if err != nil {
		return nil, err
	}

	srcTxn, err := newTransaction(a.ID, TxnTransferOut, amount, description, reference)
	if err != nil {
		return nil, err
	}

	dstTxn, err := newTransaction(dest.ID, TxnTransferIn, amount, description, reference)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	a.Balance = srcBalance
	a.LastActivity = now
	dest.Balance = dstBalance
	dest.LastActivity = now

	transferred := event.NewMoneyTransferred(transactionID, a.AccountNumber, dest.AccountNumber, amount, reference, now)
	a.pendingEvents = append(a.pendingEvents, transferred)

	return &TransferResult{SourceTxn: srcTxn, DestinationTxn: dstTxn}, nil
}

// CloseAccount transitions the account to Closed. Requires a zero balance.
func (a *Account) CloseAccount() error {
	if !a.Balance.IsZero() {
		return cerr.ErrAccountHasBalance
	}

	a.IsActive = false
	a.Status = StatusClosed

	return nil
}

// MarkArchived transitions the account to Archived, used by the account
// maintenance job for long-dormant zero-balance accounts.
func (a *Account) MarkArchived() {
	a.IsArchived = true
	a.Status = StatusArchived
	a.IsActive = false
}

// UpdateStatusBasedOnRules applies the dormancy rules from spec.md §4.8(c):
// Active accounts whose last activity is older than a year move to
// Inactive; Inactive accounts (including one just moved there by this
// call) with a zero balance and more than three years of dormancy are
// archived. asOf is the reference instant, so
// the rule is testable without wall-clock dependence.
func (a *Account) UpdateStatusBasedOnRules(asOf time.Time) {
	if a.Status == StatusActive && asOf.Sub(a.LastActivity) > inactiveAfter {
		a.Status = StatusInactive
	}

	if a.Status == StatusInactive && a.Balance.IsZero() && asOf.Sub(a.LastActivity) > archivedAfter {
		a.MarkArchived()
	}
}

// UpdateLastActivityDate stamps LastActivity with the current time.
func (a *Account) UpdateLastActivityDate() {
	a.LastActivity = time.Now().UTC()
}

// SetInterestBearing flips the interest-bearing flag.
func (a *Account) SetInterestBearing(bearing bool) {
	a.InterestBearing = bearing
}

// CreditInterest posts the InterestCredit transaction the monthly interest
// job computes, crediting the balance and stamping LastActivity the same
// way Deposit does (spec.md §4.8(b)). Unlike Deposit, it does not require
// the account to be active beyond not being deleted — an account can be
// moved to Inactive purely by dormancy while still accruing interest.
func (a *Account) CreditInterest(amount money.Money, when time.Time, description string) (*Transaction, error) {
	if a.IsDeleted {
		return nil, cerr.ErrAccountInactive
	}

	if amount.IsNegative() || amount.IsZero() {
		return nil, cerr.ErrNonPositiveAmount
	}

	if !a.Balance.SameCurrency(amount) {
		return nil, cerr.ErrCurrencyMismatch
	}

	newBalance, err := a.Balance.Add(amount)
	if err != nil {
		return nil, err
	}

	txn, err := CreateInterestCredit(a.ID, amount, when, description)
	if err != nil {
		return nil, err
	}

	a.Balance = newBalance
	a.LastActivity = when.UTC()

	return txn, nil
}
