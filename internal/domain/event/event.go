// Package event defines the domain events emitted by the Account aggregate
// and the tagged-variant envelope the outbox persists them as (spec.md §3,
// §9 "Polymorphic events").
package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/corebank-platform/core/pkg/money"
)

// Event is implemented by every concrete domain event. Type returns the
// discriminator tag stored alongside the JSON payload in the outbox.
type Event interface {
	EventID() uuid.UUID
	OccurredOn() time.Time
	Type() string
}

// base carries the fields common to every event variant.
type base struct {
	ID         uuid.UUID `json:"eventId"`
	OccurredAt time.Time `json:"occurredOn"`
}

func (b base) EventID() uuid.UUID      { return b.ID }
func (b base) OccurredOn() time.Time   { return b.OccurredAt }

func newBase() base {
	return base{ID: uuid.New(), OccurredAt: time.Now().UTC()}
}

// Type tags. These are the discriminator values serialized into
// OutboxMessage.Type and resolved back to a concrete Go type by the relay.
const (
	TypeAccountCreated     = "AccountCreated"
	TypeMoneyTransferred   = "MoneyTransferred"
	TypeInsufficientFunds  = "InsufficientFunds"
)

// AccountCreated is emitted by Account.Create.
type AccountCreated struct {
	base
	AccountID      uuid.UUID   `json:"accountId"`
	AccountNumber  string      `json:"accountNumber"`
	CustomerID     uuid.UUID   `json:"customerId"`
	AccountType    string      `json:"accountType"`
	InitialDeposit money.Money `json:"initialDeposit"`
}

func (e AccountCreated) Type() string { return TypeAccountCreated }

// NewAccountCreated constructs an AccountCreated event with a fresh id and timestamp.
func NewAccountCreated(accountID uuid.UUID, accountNumber string, customerID uuid.UUID, accountType string, initialDeposit money.Money) AccountCreated {
	return AccountCreated{
		base:           newBase(),
		AccountID:      accountID,
		AccountNumber:  accountNumber,
		CustomerID:     customerID,
		AccountType:    accountType,
		InitialDeposit: initialDeposit,
	}
}

// MoneyTransferred is emitted by Account.Transfer on success.
type MoneyTransferred struct {
	base
	TransactionID           uuid.UUID   `json:"transactionId"`
	SourceAccountNumber     string      `json:"sourceAccountNumber"`
	DestinationAccountNumber string    `json:"destinationAccountNumber"`
	Amount                  money.Money `json:"amount"`
	Reference               string      `json:"reference"`
	TransferDate            time.Time   `json:"transferDate"`
}

func (e MoneyTransferred) Type() string { return TypeMoneyTransferred }

// NewMoneyTransferred constructs a MoneyTransferred event.
func NewMoneyTransferred(transactionID uuid.UUID, sourceAccountNumber, destinationAccountNumber string, amount money.Money, reference string, transferDate time.Time) MoneyTransferred {
	return MoneyTransferred{
		base:                     newBase(),
		TransactionID:            transactionID,
		SourceAccountNumber:      sourceAccountNumber,
		DestinationAccountNumber: destinationAccountNumber,
		Amount:                   amount,
		Reference:                reference,
		TransferDate:             transferDate,
	}
}

// InsufficientFunds is emitted by Account.Withdraw/Transfer on shortfall.
type InsufficientFunds struct {
	base
	AccountNumber    string      `json:"accountNumber"`
	RequestedAmount  money.Money `json:"requestedAmount"`
	CurrentBalance   money.Money `json:"currentBalance"`
	Operation        string      `json:"operation"`
}

func (e InsufficientFunds) Type() string { return TypeInsufficientFunds }

// NewInsufficientFunds constructs an InsufficientFunds event.
func NewInsufficientFunds(accountNumber string, requestedAmount, currentBalance money.Money, operation string) InsufficientFunds {
	return InsufficientFunds{
		base:            newBase(),
		AccountNumber:   accountNumber,
		RequestedAmount: requestedAmount,
		CurrentBalance:  currentBalance,
		Operation:       operation,
	}
}

// Envelope is the (type tag, JSON payload) pair the unit of work serializes
// into an outbox row and the relay/dispatcher deserialize back from one.
type Envelope struct {
	Type    string
	Payload []byte
}

// Encode serializes an Event into its outbox envelope.
func Encode(e Event) (Envelope, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode event %s: %w", e.Type(), err)
	}

	return Envelope{Type: e.Type(), Payload: payload}, nil
}

// Decode resolves env.Type to a concrete Event, unmarshaling the payload into
// it. A nil, nil return means the tag is unrecognized — the relay marks such
// rows processed with a warning instead of retrying forever (spec.md §4.6).
func Decode(env Envelope) (Event, error) {
	switch env.Type {
	case TypeAccountCreated:
		var e AccountCreated
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			return nil, err
		}

		return e, nil
	case TypeMoneyTransferred:
		var e MoneyTransferred
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			return nil, err
		}

		return e, nil
	case TypeInsufficientFunds:
		var e InsufficientFunds
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			return nil, err
		}

		return e, nil
	default:
		return nil, nil
	}
}
