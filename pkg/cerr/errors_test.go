package cerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslateMapsKinds(t *testing.T) {
	cases := []struct {
		name string
		in   error
		kind Kind
	}{
		{"not found", ErrAccountNotFound, KindNotFound},
		{"duplicate email", ErrDuplicateEmail, KindValidation},
		{"underage", ErrUnderage, KindValidation},
		{"insufficient funds", ErrInsufficientFunds, KindInsufficientFunds},
		{"withdrawal limit", ErrWithdrawalLimit, KindWithdrawalLimit},
		{"concurrency", ErrConcurrencyConflict, KindConflict},
		{"inactive", ErrAccountInactive, KindInvalidOperation},
		{"unknown", errors.New("boom"), KindInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Translate(tc.in, "Account")
			assert.Equal(t, tc.kind, KindOf(err))
		})
	}
}

func TestTranslateNilIsNil(t *testing.T) {
	assert.Nil(t, Translate(nil, "Account"))
}

func TestTranslateIsIdempotent(t *testing.T) {
	once := Translate(ErrAccountNotFound, "Account")
	twice := Translate(once, "Account")
	assert.Same(t, once, twice)
}

func TestErrorIsUnwrapsToSentinel(t *testing.T) {
	err := Translate(ErrAccountNotFound, "Account")
	assert.True(t, errors.Is(err, ErrAccountNotFound))
	assert.False(t, errors.Is(err, ErrCustomerNotFound))
}

func TestValidationCarriesViolations(t *testing.T) {
	err := Validation("Customer", []string{"email required", "phone malformed"})
	var cerrErr *Error
	assert.True(t, errors.As(err, &cerrErr))
	assert.Equal(t, KindValidation, cerrErr.Kind)
	assert.Len(t, cerrErr.Violations, 2)
	assert.Contains(t, err.Error(), "email required")
}

func TestKindOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("untranslated")))
}
