package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank-platform/core/internal/domain/event"
	"github.com/corebank-platform/core/internal/events"
	"github.com/corebank-platform/core/platform/mlog"
)

type fakeEvent struct{ id uuid.UUID }

func (f fakeEvent) EventID() uuid.UUID    { return f.id }
func (f fakeEvent) OccurredOn() time.Time { return time.Now().UTC() }
func (f fakeEvent) Type() string          { return "FakeEvent" }

func TestDomainEventsPublishesOnlyOnSuccess(t *testing.T) {
	dispatcher := events.New(&mlog.GoLogger{})

	published := 0
	dispatcher.Subscribe("FakeEvent", func(ctx context.Context, e event.Event) error {
		published++
		return nil
	})

	succeed := func(ctx context.Context, cmd testCmd) (testResult, []event.Event, error) {
		return testResult{}, []event.Event{fakeEvent{id: uuid.New()}}, nil
	}

	h := Compose(succeed, DomainEvents[testCmd, testResult](dispatcher))
	_, _, err := h(context.Background(), testCmd{Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, 1, published)
}

func TestDomainEventsSkipsPublishOnFailure(t *testing.T) {
	dispatcher := events.New(&mlog.GoLogger{})

	published := 0
	dispatcher.Subscribe("FakeEvent", func(ctx context.Context, e event.Event) error {
		published++
		return nil
	})

	fail := func(ctx context.Context, cmd testCmd) (testResult, []event.Event, error) {
		return testResult{}, []event.Event{fakeEvent{id: uuid.New()}}, errors.New("handler failed")
	}

	h := Compose(fail, DomainEvents[testCmd, testResult](dispatcher))
	_, _, err := h(context.Background(), testCmd{Name: "x"})
	require.Error(t, err)
	assert.Equal(t, 0, published, "events must never publish when the handler failed")
}
