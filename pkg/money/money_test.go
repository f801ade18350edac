package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidCurrency(t *testing.T) {
	_, err := New(decimal.NewFromInt(10), "NG")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestNewAcceptsNegativeAmount(t *testing.T) {
	m, err := New(decimal.NewFromInt(-5), "NGN")
	require.NoError(t, err)
	assert.True(t, m.IsNegative())
}

func TestAddRejectsCurrencyMismatch(t *testing.T) {
	a := Zero("NGN")
	b := Zero("USD")

	_, err := a.Add(b)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestAddSub(t *testing.T) {
	a, _ := New(decimal.NewFromInt(100), "NGN")
	b, _ := New(decimal.NewFromInt(30), "NGN")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount.Equal(decimal.NewFromInt(130)))

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.True(t, diff.Amount.Equal(decimal.NewFromInt(70)))
}

func TestGreaterThanOrEqual(t *testing.T) {
	a, _ := New(decimal.NewFromInt(100), "NGN")
	b, _ := New(decimal.NewFromInt(100), "NGN")
	c, _ := New(decimal.NewFromInt(101), "NGN")

	ok, err := a.GreaterThanOrEqual(b)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.GreaterThanOrEqual(c)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = a.GreaterThanOrEqual(Zero("USD"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestIsZero(t *testing.T) {
	assert.True(t, Zero("NGN").IsZero())

	nonZero, _ := New(decimal.NewFromInt(1), "NGN")
	assert.False(t, nonZero.IsZero())
}

func TestString(t *testing.T) {
	m, _ := New(decimal.NewFromFloat(123.456), "NGN")
	assert.Equal(t, "123.46 NGN", m.String())
}
