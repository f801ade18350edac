// Package customer holds the Customer aggregate: the identity of a person
// who owns zero or more Accounts (spec.md §3). Grounded on the teacher's
// onboarding domain shape (field names, soft-delete trio, active flag) as
// seen across _examples/LerianStudio-midaz/components/ledger's portfolio
// aggregates, adapted to the person-shaped fields this spec calls for.
package customer

import (
	"net/mail"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/corebank-platform/core/pkg/cerr"
)

const minimumAge = 18

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// Customer is the aggregate root for identity data. It owns no in-memory
// collection of Accounts; callers load those separately via the account
// repository (spec.md §3 "the collection is loaded only when needed").
type Customer struct {
	ID           uuid.UUID
	Names        string
	Email        string
	Phone        string
	Address      string
	DateOfBirth  time.Time
	BVN          string
	CreditScore  int
	EmailOptIn   bool
	DateCreated  time.Time
	IsActive     bool
	IsDeleted    bool
	DeletedAt    *time.Time
	DeletedBy    *string
}

// Create validates and builds a new Customer. emailExists reports whether
// the normalized email is already registered; callers supply it from a
// repository lookup since Customer performs no I/O (spec.md §4.1 policy,
// applied by analogy to this aggregate).
func Create(names, email, phone, address string, dateOfBirth time.Time, bvn string, creditScore int, emailExists bool) (*Customer, error) {
	if time.Since(dateOfBirth) < minimumAge*365*24*time.Hour {
		return nil, cerr.ErrUnderage
	}

	normalizedEmail, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	if emailExists {
		return nil, cerr.ErrDuplicateEmail
	}

	if !phonePattern.MatchString(phone) {
		return nil, cerr.ErrMalformedPhone
	}

	return &Customer{
		ID:          uuid.New(),
		Names:       names,
		Email:       normalizedEmail,
		Phone:       phone,
		Address:     address,
		DateOfBirth: dateOfBirth,
		BVN:         bvn,
		CreditScore: creditScore,
		DateCreated: time.Now().UTC(),
		IsActive:    true,
	}, nil
}

func normalizeEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return "", cerr.ErrMalformedEmail
	}

	return normalizeCase(addr.Address), nil
}

func normalizeCase(email string) string {
	out := make([]byte, len(email))

	for i := 0; i < len(email); i++ {
		c := email[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}

		out[i] = c
	}

	return string(out)
}

// Deactivate flips the active flag. hasNonZeroBalanceAccount must be
// supplied by the caller from the account repository: a customer cannot be
// deactivated while any owned account carries a non-zero balance (spec.md
// §3 invariant).
func (c *Customer) Deactivate(hasNonZeroBalanceAccount bool) error {
	if hasNonZeroBalanceAccount {
		return cerr.ErrCustomerHasBalance
	}

	c.IsActive = false

	return nil
}

// SoftDelete marks the customer deleted, subject to the same
// non-zero-balance guard as Deactivate.
func (c *Customer) SoftDelete(actor string, hasNonZeroBalanceAccount bool) error {
	if hasNonZeroBalanceAccount {
		return cerr.ErrCustomerHasBalance
	}

	now := time.Now().UTC()
	c.IsDeleted = true
	c.DeletedAt = &now
	c.DeletedBy = &actor

	return nil
}
