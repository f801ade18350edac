// Package schedule holds the scheduled-job domain model: the Created →
// Enqueued → Processing → {Succeeded, Failed(retry-pending), Failed(dead)}
// state machine spec.md §4.7 describes, laid out the same way as the
// outbox's own state machine (internal/adapters/postgres/outbox).
package schedule

import (
	"time"

	"github.com/google/uuid"
)

// Status is the job's position in its lifecycle.
type Status string

const (
	StatusCreated     Status = "CREATED"
	StatusEnqueued    Status = "ENQUEUED"
	StatusProcessing  Status = "PROCESSING"
	StatusSucceeded   Status = "SUCCEEDED"
	StatusFailedRetry Status = "FAILED_RETRY"
	StatusFailedDead  Status = "FAILED_DEAD"
)

// IsTerminal reports whether s accepts no further attempts.
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailedDead
}

// Lane is one of the named worker queues spec.md §4.7 requires.
type Lane string

const (
	LaneDefault  Lane = "default"
	LaneCritical Lane = "critical"
	LaneLow      Lane = "low"
)

// DefaultMaxRetries is the per-job retry bound spec.md §4.7 mandates.
const DefaultMaxRetries = 3

// Job is one unit of scheduled work: either a one-off (RecurringID nil) or
// the live template row for a recurring job (RecurringID + CronExpr set,
// re-enqueued by the scheduler each time its cron fires).
type Job struct {
	ID          uuid.UUID
	RecurringID *string
	CronExpr    *string
	Lane        Lane
	HandlerName string
	Payload     []byte
	Status      Status
	RunAt       time.Time
	RetryCount  int
	MaxRetries  int
	LastError   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOneOff builds a Job that runs once at runAt.
func NewOneOff(handlerName string, payload []byte, lane Lane, runAt time.Time) *Job {
	now := time.Now().UTC()

	return &Job{
		ID:          uuid.New(),
		Lane:        lane,
		HandlerName: handlerName,
		Payload:     payload,
		Status:      StatusEnqueued,
		RunAt:       runAt,
		MaxRetries:  DefaultMaxRetries,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewRecurringTemplate builds the persistent template row for a recurring
// job, due to run next at runAt. Schedule (internal/scheduler) upserts this
// row by RecurringID so repeated boot-time registration is idempotent.
func NewRecurringTemplate(recurringID, handlerName string, payload []byte, lane Lane, cronExpr string, runAt time.Time) *Job {
	now := time.Now().UTC()
	rid := recurringID
	expr := cronExpr

	return &Job{
		ID:          uuid.New(),
		RecurringID: &rid,
		CronExpr:    &expr,
		Lane:        lane,
		HandlerName: handlerName,
		Payload:     payload,
		Status:      StatusEnqueued,
		RunAt:       runAt,
		MaxRetries:  DefaultMaxRetries,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// MarkProcessing transitions the job to Processing, touching UpdatedAt.
func (j *Job) MarkProcessing() {
	j.Status = StatusProcessing
	j.UpdatedAt = time.Now().UTC()
}

// MarkSucceeded transitions the job to its terminal success state.
func (j *Job) MarkSucceeded() {
	j.Status = StatusSucceeded
	j.LastError = nil
	j.UpdatedAt = time.Now().UTC()
}

// MarkFailed records cause and either schedules a retry at nextRunAt or, once
// RetryCount reaches MaxRetries, moves the job to its terminal dead state.
func (j *Job) MarkFailed(cause error, nextRunAt time.Time) {
	j.RetryCount++
	msg := cause.Error()
	j.LastError = &msg
	j.UpdatedAt = time.Now().UTC()

	if j.RetryCount >= j.MaxRetries {
		j.Status = StatusFailedDead
		return
	}

	j.Status = StatusFailedRetry
	j.RunAt = nextRunAt
}

// Requeue resets a retry-pending job back to Enqueued at runAt, the move a
// worker makes right before it retries.
func (j *Job) Requeue(runAt time.Time) {
	j.Status = StatusEnqueued
	j.RunAt = runAt
	j.UpdatedAt = time.Now().UTC()
}
