package relay

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank-platform/core/internal/adapters/postgres/outbox"
	"github.com/corebank-platform/core/internal/domain/event"
	"github.com/corebank-platform/core/internal/events"
	"github.com/corebank-platform/core/platform/mlog"
	"github.com/corebank-platform/core/platform/mopentelemetry"
	"github.com/corebank-platform/core/pkg/money"
)

func newTestRelay(t *testing.T, dispatcher *events.Dispatcher, sink ExternalSink) *Relay {
	t.Helper()
	r := New(nil, dispatcher, sink, nil, 0, 0, 0, &mlog.GoLogger{}, &mopentelemetry.Telemetry{ServiceName: "test"})
	r.backoff = func(int) time.Duration { return 0 }
	return r
}

func pendingMessage(t *testing.T, e event.Event) *outbox.Message {
	t.Helper()

	env, err := event.Encode(e)
	require.NoError(t, err)

	return outbox.NewMessage(env.Type, env.Payload, e.OccurredOn())
}

func TestProcessMarksUnknownTypeProcessedWithoutDelivery(t *testing.T) {
	dispatcher := events.New(&mlog.GoLogger{})
	r := newTestRelay(t, dispatcher, nil)

	msg := outbox.NewMessage("SomeFutureEventType", json.RawMessage(`{}`), time.Now().UTC())

	r.process(context.Background(), msg)

	assert.NotNil(t, msg.ProcessedOn)
	assert.Equal(t, 0, msg.RetryCount)
}

func TestProcessPublishesAndMarksProcessed(t *testing.T) {
	dispatcher := events.New(&mlog.GoLogger{})

	delivered := 0
	dispatcher.Subscribe(event.TypeAccountCreated, func(ctx context.Context, e event.Event) error {
		delivered++
		return nil
	})

	r := newTestRelay(t, dispatcher, nil)

	deposit, err := money.New(decimal.NewFromInt(100), "NGN")
	require.NoError(t, err)

	e := event.NewAccountCreated(uuid.New(), "1234567890", uuid.New(), "CHECKING", deposit)
	msg := pendingMessage(t, e)

	r.process(context.Background(), msg)

	assert.Equal(t, 1, delivered)
	assert.NotNil(t, msg.ProcessedOn)
	assert.Equal(t, outbox.StatusPublished, msg.Status)
	assert.Nil(t, msg.LastError)
}

func TestProcessRetriesOnSubscriberFailureThenQuarantines(t *testing.T) {
	dispatcher := events.New(&mlog.GoLogger{})
	dispatcher.Subscribe(event.TypeAccountCreated, func(ctx context.Context, e event.Event) error {
		return errors.New("subscriber exploded")
	})

	r := newTestRelay(t, dispatcher, nil)
	r.maxRetries = 3

	deposit, err := money.New(decimal.NewFromInt(100), "NGN")
	require.NoError(t, err)

	e := event.NewAccountCreated(uuid.New(), "1234567890", uuid.New(), "CHECKING", deposit)
	msg := pendingMessage(t, e)
	msg.MaxRetries = 3

	for want := 1; want <= 3; want++ {
		msg.Status = outbox.StatusPending
		r.process(context.Background(), msg)
		assert.Equal(t, want, msg.RetryCount)
		assert.Nil(t, msg.ProcessedOn)
	}

	assert.Equal(t, outbox.StatusDLQ, msg.Status)
}

func TestProcessUsesExternalSinkWhenConfigured(t *testing.T) {
	dispatcher := events.New(&mlog.GoLogger{})

	sink := &recordingSink{}
	r := newTestRelay(t, dispatcher, sink)

	deposit, err := money.New(decimal.NewFromInt(100), "NGN")
	require.NoError(t, err)

	e := event.NewAccountCreated(uuid.New(), "1234567890", uuid.New(), "CHECKING", deposit)
	msg := pendingMessage(t, e)

	r.process(context.Background(), msg)

	require.Len(t, sink.calls, 1)
	assert.Equal(t, event.TypeAccountCreated, sink.calls[0])
}

func TestRetryBackoffStaysWithinJitterBounds(t *testing.T) {
	for retryCount := 1; retryCount <= 6; retryCount++ {
		d := retryBackoff(retryCount)

		assert.GreaterOrEqual(t, d, backoffBase/2)
		assert.LessOrEqual(t, d, backoffMax)
	}
}

type recordingSink struct {
	calls []string
}

func (s *recordingSink) Publish(ctx context.Context, eventTypeName string, payload json.RawMessage, occurredOn time.Time) error {
	s.calls = append(s.calls, eventTypeName)
	return nil
}
