package account

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/corebank-platform/core/pkg/cerr"
	"github.com/corebank-platform/core/pkg/money"
)

// TxnType enumerates the kinds of ledger movement a Transaction records.
type TxnType string

const (
	TxnDeposit        TxnType = "DEPOSIT"
	TxnWithdrawal     TxnType = "WITHDRAWAL"
	TxnTransfer       TxnType = "TRANSFER"
	TxnTransferIn     TxnType = "TRANSFER_IN"
	TxnTransferOut    TxnType = "TRANSFER_OUT"
	TxnInterestCredit TxnType = "INTEREST_CREDIT"
)

// Transaction is an append-only child of Account: every field is set at
// construction and never mutated afterward except for soft-delete (spec.md
// §3, §9 "all constructor inputs must be stored into the corresponding
// fields before returning").
type Transaction struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	Type        TxnType
	Amount      money.Money
	Description string
	Timestamp   time.Time
	Reference   string
	IsDeleted   bool
	DeletedAt   *time.Time
	DeletedBy   *string
}

// newTransaction is the single constructor every Account mutation routes
// through. reference, if empty, is auto-generated; a caller-supplied
// reference is always stored verbatim — the corrected behavior spec.md §9
// calls out against the source's "drop the input on the non-empty branch"
// bug.
func newTransaction(accountID uuid.UUID, txnType TxnType, amount money.Money, description, reference string) (*Transaction, error) {
	if amount.IsNegative() || amount.IsZero() {
		return nil, cerr.ErrNonPositiveAmount
	}

	id := uuid.New()

	if reference == "" {
		reference = generateReference(id)
	}

	return &Transaction{
		ID:          id,
		AccountID:   accountID,
		Type:        txnType,
		Amount:      amount,
		Description: description,
		Timestamp:   time.Now().UTC(),
		Reference:   reference,
	}, nil
}

// generateReference builds the default reference format
// `YYYYMMDDhhmmss-<first-8-of-id>` (spec.md §3).
func generateReference(id uuid.UUID) string {
	return fmt.Sprintf("%s-%s", time.Now().UTC().Format("20060102150405"), id.String()[:8])
}

// CreateInterestCredit produces an InterestCredit transaction with a
// reference in the `INT-YYYYMMDD-<8 uppercase hex>` format. The caller is
// responsible for also incrementing the owning account's balance (spec.md
// §4.1) — this constructor performs no mutation beyond building the record.
func CreateInterestCredit(accountID uuid.UUID, amount money.Money, when time.Time, description string) (*Transaction, error) {
	if amount.IsNegative() || amount.IsZero() {
		return nil, cerr.ErrNonPositiveAmount
	}

	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return nil, err
	}

	reference := fmt.Sprintf("INT-%s-%X", when.UTC().Format("20060102"), buf[:])

	return &Transaction{
		ID:          uuid.New(),
		AccountID:   accountID,
		Type:        TxnInterestCredit,
		Amount:      amount,
		Description: description,
		Timestamp:   when.UTC(),
		Reference:   reference,
	}, nil
}

// Sign reports the directional multiplier a transaction type applies to a
// running balance, used by the average-daily-balance walk (spec.md §4.2):
// Deposit/TransferIn/InterestCredit are positive, Withdrawal/TransferOut
// negative.
func (t TxnType) Sign() int {
	switch t {
	case TxnDeposit, TxnTransferIn, TxnInterestCredit:
		return 1
	case TxnWithdrawal, TxnTransferOut:
		return -1
	default:
		return 0
	}
}
