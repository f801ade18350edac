// Package scheduler is the persistent job runtime spec.md §4.7 describes:
// Enqueue/Schedule/Delete/Trigger, named lanes, a worker pool per lane, and
// an invisibility timeout implemented with a Redis lease so a crashed
// worker cannot cause duplicate execution. No teacher file implements a job
// runtime directly; grounded on the cron-parsing and worker-loop shape the
// wider retrieval pack uses around github.com/robfig/cron/v3, and on the
// outbox's own persisted-state-machine pattern for the job rows themselves.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/corebank-platform/core/internal/adapters/redis"
	domain "github.com/corebank-platform/core/internal/domain/schedule"
	"github.com/corebank-platform/core/platform/mlog"
	"github.com/corebank-platform/core/platform/mopentelemetry"
)

// JobFunc is a registered unit of work a scheduled job's handler-method name
// resolves to. payload is the msgpack encoding the job was enqueued with
// (a compact binary encoding keeps the scheduled_jobs table small compared
// to storing JSON text for what is an internal, schema-known argument set).
type JobFunc func(ctx context.Context, payload []byte) error

// WorkerCount is the default number of concurrent workers per lane, used
// when Scheduler.WorkerCount (spec.md §6) is unset (spec.md §6 "default 5").
const WorkerCount = 5

// invisibilityTimeout bounds how long a worker may hold a job's lease
// before another worker is allowed to reclaim it, guarding against a crash
// mid-execution leaving the row permanently stuck.
const invisibilityTimeout = 5 * time.Minute

// pollInterval is how often an idle worker re-checks its lane for due jobs.
const pollInterval = 2 * time.Second

// recurringTickInterval is how often the scheduler checks recurring-job
// templates for a due cron firing.
const recurringTickInterval = 30 * time.Second

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Scheduler is the composition root for the job runtime: job persistence,
// worker pool, recurring-job ticker and dashboard cache refresh.
type Scheduler struct {
	repo      domain.Repository
	lease     *redis.LeaseStore
	dashboard *redis.DashboardCache
	logger    mlog.Logger
	telemetry *mopentelemetry.Telemetry

	mu       sync.RWMutex
	handlers map[string]JobFunc

	workerCount   int
	retryAttempts int
}

// New returns a Scheduler. Register handlers with RegisterHandler before
// calling Run. workerCount and retryAttempts are the Scheduler.WorkerCount
// and Scheduler.RetryAttempts tunables spec.md §6 names; a value <= 0 falls
// back to the spec's documented default (5 workers, 3 attempts).
func New(repo domain.Repository, lease *redis.LeaseStore, dashboard *redis.DashboardCache, workerCount, retryAttempts int, logger mlog.Logger, telemetry *mopentelemetry.Telemetry) *Scheduler {
	if workerCount <= 0 {
		workerCount = WorkerCount
	}

	if retryAttempts <= 0 {
		retryAttempts = domain.DefaultMaxRetries
	}

	return &Scheduler{
		repo:          repo,
		lease:         lease,
		dashboard:     dashboard,
		logger:        logger,
		telemetry:     telemetry,
		handlers:      make(map[string]JobFunc),
		workerCount:   workerCount,
		retryAttempts: retryAttempts,
	}
}

// RegisterHandler binds handlerName to fn. Enqueue/Schedule reference
// handlers by this name rather than a function value so job rows remain
// meaningful across process restarts.
func (s *Scheduler) RegisterHandler(handlerName string, fn JobFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handlers[handlerName] = fn
}

func (s *Scheduler) handler(handlerName string) (JobFunc, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fn, ok := s.handlers[handlerName]

	return fn, ok
}

// Enqueue schedules a one-off execution of handlerName after delay, on lane.
func (s *Scheduler) Enqueue(ctx context.Context, handlerName string, payload any, delay time.Duration, lane domain.Lane) (string, error) {
	raw, err := msgpack.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal job payload: %w", err)
	}

	j := domain.NewOneOff(handlerName, raw, lane, time.Now().UTC().Add(delay))
	j.MaxRetries = s.retryAttempts

	if err := s.repo.Insert(ctx, j); err != nil {
		return "", err
	}

	return j.ID.String(), nil
}

// Schedule registers or replaces the recurring job identified by
// recurringID. Re-registration with the same id updates cron expression,
// handler and arguments in place rather than creating a duplicate row
// (spec.md §4.7 "idempotent").
func (s *Scheduler) Schedule(ctx context.Context, recurringID, handlerName string, payload any, cronExpr string, lane domain.Lane) error {
	schedule, err := cronParser.Parse(cronExpr)
	if err != nil {
		return fmt.Errorf("parse cron expression %q: %w", cronExpr, err)
	}

	raw, err := msgpack.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal job payload: %w", err)
	}

	next := schedule.Next(time.Now().UTC())

	existing, err := s.repo.ByRecurringID(ctx, recurringID)
	if err != nil {
		j := domain.NewRecurringTemplate(recurringID, handlerName, raw, lane, cronExpr, next)
		j.MaxRetries = s.retryAttempts

		return s.repo.Insert(ctx, j)
	}

	existing.CronExpr = &cronExpr
	existing.HandlerName = handlerName
	existing.Payload = raw
	existing.Lane = lane
	existing.RunAt = next
	existing.Status = domain.StatusEnqueued

	return s.repo.Update(ctx, existing)
}

// Delete removes a one-off job or a recurring job's template row.
func (s *Scheduler) Delete(ctx context.Context, jobOrRecurringID string) (bool, error) {
	if id, err := uuid.Parse(jobOrRecurringID); err == nil {
		return s.repo.Delete(ctx, id)
	}

	return s.repo.DeleteByRecurringID(ctx, jobOrRecurringID)
}

// Trigger fires one execution of recurringID immediately, independent of
// its cron schedule.
func (s *Scheduler) Trigger(ctx context.Context, recurringID string) error {
	template, err := s.repo.ByRecurringID(ctx, recurringID)
	if err != nil {
		return err
	}

	j := domain.NewOneOff(template.HandlerName, template.Payload, template.Lane, time.Now().UTC())
	j.MaxRetries = s.retryAttempts

	return s.repo.Insert(ctx, j)
}

// DashboardCounts reads the per-state job counts (spec.md §4.7's dashboard
// read surface), served from the Redis cache the Run loop keeps warm.
func (s *Scheduler) DashboardCounts(ctx context.Context) (map[string]int64, error) {
	return s.dashboard.Counts(ctx)
}

// Run starts the worker pool (WorkerCount workers per named lane), the
// recurring-job ticker, and the dashboard cache refresher. It blocks until
// ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup

	for _, lane := range []domain.Lane{domain.LaneCritical, domain.LaneDefault, domain.LaneLow} {
		for w := 0; w < s.workerCount; w++ {
			wg.Add(1)

			workerID := fmt.Sprintf("%s-%d", lane, w)

			go func(lane domain.Lane, workerID string) {
				defer wg.Done()
				s.runWorker(ctx, lane, workerID)
			}(lane, workerID)
		}
	}

	wg.Add(2)

	go func() {
		defer wg.Done()
		s.runRecurringTicker(ctx)
	}()

	go func() {
		defer wg.Done()
		s.runDashboardRefresh(ctx)
	}()

	wg.Wait()
}

func (s *Scheduler) runWorker(ctx context.Context, lane domain.Lane, workerID string) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pollLane(ctx, lane, workerID)
		}
	}
}

func (s *Scheduler) pollLane(ctx context.Context, lane domain.Lane, workerID string) {
	jobs, err := s.repo.DueJobs(ctx, lane, time.Now().UTC(), s.workerCount)
	if err != nil {
		s.logger.Errorf("failed to poll lane %s: %v", lane, err)
		return
	}

	for _, j := range jobs {
		s.tryRun(ctx, j, workerID)
	}
}

func (s *Scheduler) tryRun(ctx context.Context, j *domain.Job, workerID string) {
	acquired, err := s.lease.Acquire(ctx, j.ID.String(), workerID, invisibilityTimeout)
	if err != nil {
		s.logger.Errorf("failed to acquire lease for job %s: %v", j.ID, err)
		return
	}

	if !acquired {
		return
	}
	defer func() { _ = s.lease.Release(ctx, j.ID.String()) }()

	s.execute(ctx, j)
}

func (s *Scheduler) execute(ctx context.Context, j *domain.Job) {
	ctx, span := s.telemetry.Start(ctx, "scheduler.execute."+j.HandlerName)
	defer span.End()

	j.MarkProcessing()

	if err := s.repo.Update(ctx, j); err != nil {
		s.logger.Errorf("failed to mark job %s processing: %v", j.ID, err)
		return
	}

	fn, ok := s.handler(j.HandlerName)
	if !ok {
		j.MarkFailed(fmt.Errorf("no handler registered for %q", j.HandlerName), time.Now().UTC())

		if err := s.repo.Update(ctx, j); err != nil {
			s.logger.Errorf("failed to persist job %s: %v", j.ID, err)
		}

		return
	}

	if err := fn(ctx, j.Payload); err != nil {
		mopentelemetry.HandleSpanError(&span, "job execution failed", err)

		nextRun := time.Now().UTC().Add(backoff(j.RetryCount + 1))
		j.MarkFailed(err, nextRun)

		s.logger.Errorf("job %s (%s) failed: %v", j.ID, j.HandlerName, err)
	} else {
		j.MarkSucceeded()
	}

	if err := s.repo.Update(ctx, j); err != nil {
		s.logger.Errorf("failed to persist job %s outcome: %v", j.ID, err)
	}
}

func backoff(attempt int) time.Duration {
	return time.Duration(attempt) * 30 * time.Second
}

func (s *Scheduler) runRecurringTicker(ctx context.Context) {
	ticker := time.NewTicker(recurringTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fireDueRecurring(ctx)
		}
	}
}

func (s *Scheduler) fireDueRecurring(ctx context.Context) {
	templates, err := s.repo.RecurringTemplates(ctx)
	if err != nil {
		s.logger.Errorf("failed to list recurring templates: %v", err)
		return
	}

	now := time.Now().UTC()

	for _, t := range templates {
		if t.CronExpr == nil || t.RunAt.After(now) {
			continue
		}

		j := domain.NewOneOff(t.HandlerName, t.Payload, t.Lane, now)
		j.MaxRetries = s.retryAttempts

		if err := s.repo.Insert(ctx, j); err != nil {
			s.logger.Errorf("failed to enqueue firing for recurring job %s: %v", *t.RecurringID, err)
			continue
		}

		schedule, err := cronParser.Parse(*t.CronExpr)
		if err != nil {
			s.logger.Errorf("recurring job %s carries an unparsable cron expression %q: %v", *t.RecurringID, *t.CronExpr, err)
			continue
		}

		t.RunAt = schedule.Next(now)

		if err := s.repo.Update(ctx, t); err != nil {
			s.logger.Errorf("failed to reschedule recurring job %s: %v", *t.RecurringID, err)
		}
	}
}

func (s *Scheduler) runDashboardRefresh(ctx context.Context) {
	ticker := time.NewTicker(recurringTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refreshDashboard(ctx)
		}
	}
}

func (s *Scheduler) refreshDashboard(ctx context.Context) {
	counts, err := s.repo.CountsByStatus(ctx)
	if err != nil {
		s.logger.Errorf("failed to read job status counts: %v", err)
		return
	}

	converted := make(map[string]int64, len(counts))
	for status, count := range counts {
		converted[string(status)] = count
	}

	if err := s.dashboard.SetCounts(ctx, converted); err != nil {
		s.logger.Errorf("failed to refresh dashboard cache: %v", err)
	}
}
