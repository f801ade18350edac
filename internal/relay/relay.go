// Package relay is the outbox relay: a long-running task that republishes
// persisted-but-undelivered domain events (spec.md §4.6). Grounded on the
// teacher's consumer-side RabbitMQ producer for the external publish leg
// (_examples/LerianStudio-midaz/components/consumer/internal/adapters/rabbitmq/producer.rabbitmq.go)
// and on the outbox state machine it drives
// (internal/adapters/postgres/outbox).
package relay

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/corebank-platform/core/internal/adapters/postgres/outbox"
	"github.com/corebank-platform/core/internal/domain/event"
	"github.com/corebank-platform/core/internal/events"
	"github.com/corebank-platform/core/platform/mlog"
	"github.com/corebank-platform/core/platform/mopentelemetry"
)

// DefaultPollInterval and DefaultBatchSize are the figures spec.md §4.6
// names; the retry default is outbox.DefaultMaxRetries.
const (
	DefaultPollInterval = 30 * time.Second
	DefaultBatchSize    = 20
)

// leaseKey and leaseTTL bound the advisory lock a Relay holds for the
// duration of one pass. The TTL comfortably exceeds one poll interval so a
// slow pass doesn't lose the lease to a standby replica mid-batch.
const (
	leaseKey = "outbox-relay"
	leaseTTL = 5 * time.Minute
)

// backoffBase and backoffMax bound the jittered delay applied before
// re-attempting a message that has already failed at least once, so that
// many replicas retrying the same backlog after an outage don't all hammer
// the downstream subscribers on the same tick.
const (
	backoffBase = 500 * time.Millisecond
	backoffMax  = 10 * time.Second
)

// retryBackoff returns a jittered exponential delay for the nth retry
// (retryCount >= 1), using outbox.SecureRandomFloat64 for the jitter so the
// delay isn't derived from a predictable PRNG seed shared across replicas.
func retryBackoff(retryCount int) time.Duration {
	d := backoffBase << uint(retryCount-1)
	if d > backoffMax || d <= 0 {
		d = backoffMax
	}

	jittered := time.Duration(float64(d) * (0.5 + 0.5*outbox.SecureRandomFloat64()))

	return jittered
}

// ExternalSink is the optional outbound publisher spec.md §6 calls
// "OptionalExternalEventSink" — implemented by internal/adapters/rabbitmq.
type ExternalSink interface {
	Publish(ctx context.Context, eventTypeName string, payload json.RawMessage, occurredOn time.Time) error
}

// Leaser is the advisory lock spec.md §4.6/§9 names as the out-of-scope
// extension point for running more than one relay replica safely ("add a
// row-lease column"). Implemented by internal/adapters/redis.LeaseStore.
type Leaser interface {
	Acquire(ctx context.Context, jobID, owner string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, jobID string) error
}

// Relay polls the outbox table and republishes pending rows to the
// in-process dispatcher and, if configured, an external sink.
type Relay struct {
	outbox       *outbox.Repository
	dispatcher   *events.Dispatcher
	sink         ExternalSink
	leaser       Leaser
	owner        string
	logger       mlog.Logger
	telemetry    *mopentelemetry.Telemetry
	pollInterval time.Duration
	batchSize    int
	maxRetries   int
	backoff      func(retryCount int) time.Duration
}

// New returns a Relay. sink may be nil — delivery then relies solely on the
// in-process dispatcher, which is all spec.md §4.5/§4.6 actually require.
// leaser may also be nil, in which case the relay assumes it is the sole
// replica (the deployment-level contract spec.md §4.6 requires by default).
// pollInterval, batchSize and maxRetries are the Outbox.PollInterval,
// Outbox.BatchSize and Outbox.MaxRetries tunables spec.md §6 names; a
// zero value falls back to the spec's documented default.
func New(outboxRepo *outbox.Repository, dispatcher *events.Dispatcher, sink ExternalSink, leaser Leaser, pollInterval time.Duration, batchSize, maxRetries int, logger mlog.Logger, telemetry *mopentelemetry.Telemetry) *Relay {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	if maxRetries <= 0 {
		maxRetries = outbox.DefaultMaxRetries
	}

	return &Relay{
		outbox:       outboxRepo,
		dispatcher:   dispatcher,
		sink:         sink,
		leaser:       leaser,
		owner:        uuid.NewString(),
		logger:       logger,
		telemetry:    telemetry,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		maxRetries:   maxRetries,
		backoff:      retryBackoff,
	}
}

// Run loops until ctx is cancelled, sleeping pollInterval between passes
// (spec.md §4.6 step 1). The poll query itself is not lease-based; when a
// Leaser is configured, RunOnce acquires an advisory lock before polling so
// that at most one replica runs a pass at a time (spec.md §4.6, §9).
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.RunOnce(ctx); err != nil {
				r.logger.Errorf("outbox relay pass failed: %v", err)
			}
		}
	}
}

// RunOnce executes one poll-deserialize-publish-save pass (spec.md §4.6
// steps 2-4). Run calls it on every tick; it is exported so a caller can
// drive a single pass deterministically.
func (r *Relay) RunOnce(ctx context.Context) error {
	ctx, span := r.telemetry.Start(ctx, "relay.run_once")
	defer span.End()

	if r.leaser != nil {
		acquired, err := r.leaser.Acquire(ctx, leaseKey, r.owner, leaseTTL)
		if err != nil {
			mopentelemetry.HandleSpanError(&span, "failed to acquire relay lease", err)
			return err
		}

		if !acquired {
			r.logger.Debugf("outbox relay pass skipped: lease held by another replica")
			return nil
		}

		defer func() {
			if err := r.leaser.Release(ctx, leaseKey); err != nil {
				r.logger.Errorf("failed to release outbox relay lease: %v", err)
			}
		}()
	}

	messages, err := r.outbox.PollPending(ctx, r.batchSize, r.maxRetries)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to poll pending outbox messages", err)
		return err
	}

	if len(messages) == 0 {
		return nil
	}

	for _, m := range messages {
		r.process(ctx, m)
	}

	if err := r.outbox.SaveBatch(ctx, messages); err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to save outbox batch", err)
		return err
	}

	return nil
}

func (r *Relay) process(ctx context.Context, m *outbox.Message) {
	env := event.Envelope{Type: m.Type, Payload: m.Content}

	e, err := event.Decode(env)
	if err != nil {
		_ = m.MarkProcessing()
		m.MarkFailed(err)
		return
	}

	if e == nil {
		now := time.Now().UTC()
		m.ProcessedOn = &now
		r.logger.Warnf("outbox message %s carries unrecognized type %q; marking processed without delivery", m.ID, m.Type)

		return
	}

	if err := m.MarkProcessing(); err != nil {
		r.logger.Errorf("outbox message %s in unexpected state for processing: %v", m.ID, err)
		return
	}

	if m.RetryCount > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.backoff(m.RetryCount)):
		}
	}

	if err := r.publish(ctx, e); err != nil {
		m.MarkFailed(err)

		if m.Status == outbox.StatusDLQ {
			r.logger.Errorf("outbox message %s exhausted retries and moved to the dead-letter state: %v", m.ID, err)
		}

		return
	}

	m.MarkPublished(time.Now().UTC())
}

func (r *Relay) publish(ctx context.Context, e event.Event) error {
	if err := r.dispatcher.PublishStrict(ctx, e); err != nil {
		return err
	}

	if r.sink == nil {
		return nil
	}

	env, err := event.Encode(e)
	if err != nil {
		return err
	}

	return r.sink.Publish(ctx, env.Type, env.Payload, e.OccurredOn())
}
