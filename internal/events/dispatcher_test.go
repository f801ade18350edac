package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank-platform/core/internal/domain/event"
	"github.com/corebank-platform/core/platform/mlog"
)

type stubEvent struct {
	id uuid.UUID
}

func (s stubEvent) EventID() uuid.UUID    { return s.id }
func (s stubEvent) OccurredOn() time.Time { return time.Now().UTC() }
func (s stubEvent) Type() string          { return "StubEvent" }

func TestPublishInvokesSubscribersInRegistrationOrder(t *testing.T) {
	d := New(&mlog.GoLogger{})

	var order []int

	d.Subscribe("StubEvent", func(ctx context.Context, e event.Event) error {
		order = append(order, 1)
		return nil
	})
	d.Subscribe("StubEvent", func(ctx context.Context, e event.Event) error {
		order = append(order, 2)
		return nil
	})

	d.Publish(context.Background(), stubEvent{id: uuid.New()})

	assert.Equal(t, []int{1, 2}, order)
}

func TestPublishSwallowsSubscriberErrors(t *testing.T) {
	d := New(&mlog.GoLogger{})

	called := false

	d.Subscribe("StubEvent", func(ctx context.Context, e event.Event) error {
		return errors.New("boom")
	})
	d.Subscribe("StubEvent", func(ctx context.Context, e event.Event) error {
		called = true
		return nil
	})

	assert.NotPanics(t, func() {
		d.Publish(context.Background(), stubEvent{id: uuid.New()})
	})
	assert.True(t, called, "a later subscriber must still run after an earlier one fails")
}

func TestPublishStrictReturnsFirstError(t *testing.T) {
	d := New(&mlog.GoLogger{})

	firstErr := errors.New("first")
	secondErr := errors.New("second")

	d.Subscribe("StubEvent", func(ctx context.Context, e event.Event) error {
		return firstErr
	})
	d.Subscribe("StubEvent", func(ctx context.Context, e event.Event) error {
		return secondErr
	})

	err := d.PublishStrict(context.Background(), stubEvent{id: uuid.New()})
	require.Error(t, err)
	assert.Equal(t, firstErr, err)
}

func TestPublishIgnoresUnregisteredTypes(t *testing.T) {
	d := New(&mlog.GoLogger{})

	assert.NotPanics(t, func() {
		d.Publish(context.Background(), stubEvent{id: uuid.New()})
	})
}
