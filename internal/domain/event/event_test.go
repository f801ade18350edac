package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank-platform/core/pkg/money"
)

func TestAccountCreatedRoundTrip(t *testing.T) {
	deposit, _ := money.New(decimal.NewFromInt(100), "NGN")
	e := NewAccountCreated(uuid.New(), "1234567890", uuid.New(), "CHECKING", deposit)

	env, err := Encode(e)
	require.NoError(t, err)
	assert.Equal(t, TypeAccountCreated, env.Type)

	decoded, err := Decode(env)
	require.NoError(t, err)
	require.NotNil(t, decoded)

	got, ok := decoded.(AccountCreated)
	require.True(t, ok)
	assert.Equal(t, e.AccountID, got.AccountID)
	assert.Equal(t, e.AccountNumber, got.AccountNumber)
	assert.Equal(t, e.EventID(), got.EventID())
}

func TestMoneyTransferredRoundTrip(t *testing.T) {
	amount, _ := money.New(decimal.NewFromInt(200), "NGN")
	e := NewMoneyTransferred(uuid.New(), "1111111111", "2222222222", amount, "R1", time.Now().UTC())

	env, err := Encode(e)
	require.NoError(t, err)

	decoded, err := Decode(env)
	require.NoError(t, err)

	got, ok := decoded.(MoneyTransferred)
	require.True(t, ok)
	assert.Equal(t, e.TransactionID, got.TransactionID)
	assert.Equal(t, e.Reference, got.Reference)
}

func TestInsufficientFundsRoundTrip(t *testing.T) {
	requested, _ := money.New(decimal.NewFromInt(500), "NGN")
	current, _ := money.New(decimal.NewFromInt(100), "NGN")
	e := NewInsufficientFunds("1234567890", requested, current, "Withdraw")

	env, err := Encode(e)
	require.NoError(t, err)

	decoded, err := Decode(env)
	require.NoError(t, err)

	got, ok := decoded.(InsufficientFunds)
	require.True(t, ok)
	assert.Equal(t, e.Operation, got.Operation)
}

func TestDecodeUnknownTypeReturnsNilWithoutError(t *testing.T) {
	decoded, err := Decode(Envelope{Type: "SomeFutureEvent", Payload: []byte(`{}`)})
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestDecodeMalformedPayloadErrors(t *testing.T) {
	_, err := Decode(Envelope{Type: TypeAccountCreated, Payload: []byte(`not json`)})
	assert.Error(t, err)
}

func TestEveryEventCarriesIDAndTimestamp(t *testing.T) {
	deposit, _ := money.New(decimal.NewFromInt(1), "NGN")
	e := NewAccountCreated(uuid.New(), "1234567890", uuid.New(), "CHECKING", deposit)

	assert.NotEqual(t, uuid.Nil, e.EventID())
	assert.False(t, e.OccurredOn().IsZero())
}
