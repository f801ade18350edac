// Package schedule is the Postgres-backed implementation of
// schedule.Repository, shaped like internal/adapters/postgres/outbox: a
// persisted state machine plus the poll/batch queries its workers need.
package schedule

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	domain "github.com/corebank-platform/core/internal/domain/schedule"
	"github.com/corebank-platform/core/pkg/cerr"
	"github.com/corebank-platform/core/platform/mopentelemetry"
	"github.com/corebank-platform/core/platform/mpostgres"
)

var errJobNotFound = errors.New("scheduled job not found")

// Repository is a Postgres-specific implementation of schedule.Repository.
type Repository struct {
	connection *mpostgres.Connection
	telemetry  *mopentelemetry.Telemetry
}

// New returns a Repository backed by conn.
func New(conn *mpostgres.Connection, telemetry *mopentelemetry.Telemetry) *Repository {
	return &Repository{connection: conn, telemetry: telemetry}
}

const jobColumns = `id, recurring_id, cron_expr, lane, handler_name, payload, status, run_at,
	retry_count, max_retries, last_error, created_at, updated_at`

func scanJob(row interface{ Scan(...any) error }) (*domain.Job, error) {
	var j domain.Job

	var recurringID, cronExpr, lastError sql.NullString

	var payload []byte

	if err := row.Scan(
		&j.ID, &recurringID, &cronExpr, &j.Lane, &j.HandlerName, &payload, &j.Status, &j.RunAt,
		&j.RetryCount, &j.MaxRetries, &lastError, &j.CreatedAt, &j.UpdatedAt,
	); err != nil {
		return nil, err
	}

	j.Payload = payload

	if recurringID.Valid {
		j.RecurringID = &recurringID.String
	}

	if cronExpr.Valid {
		j.CronExpr = &cronExpr.String
	}

	if lastError.Valid {
		j.LastError = &lastError.String
	}

	return &j, nil
}

// Insert persists a new job row.
func (r *Repository) Insert(ctx context.Context, j *domain.Job) error {
	ctx, span := r.telemetry.Start(ctx, "postgres.schedule.insert")
	defer span.End()

	db, err := r.connection.GetDB()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to get database connection", err)
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO scheduled_jobs (id, recurring_id, cron_expr, lane, handler_name, payload,
			status, run_at, retry_count, max_retries, last_error, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		j.ID, j.RecurringID, j.CronExpr, j.Lane, j.HandlerName, []byte(j.Payload),
		j.Status, j.RunAt, j.RetryCount, j.MaxRetries, j.LastError, j.CreatedAt, j.UpdatedAt,
	)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to insert scheduled job", err)
		return cerr.Translate(err, "ScheduledJob")
	}

	return nil
}

// Update persists j's mutable fields (status, run_at, retry bookkeeping).
func (r *Repository) Update(ctx context.Context, j *domain.Job) error {
	ctx, span := r.telemetry.Start(ctx, "postgres.schedule.update")
	defer span.End()

	db, err := r.connection.GetDB()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to get database connection", err)
		return err
	}

	result, err := db.ExecContext(ctx, `
		UPDATE scheduled_jobs SET status = $1, run_at = $2, retry_count = $3, last_error = $4,
			cron_expr = $5, updated_at = $6
		WHERE id = $7`,
		j.Status, j.RunAt, j.RetryCount, j.LastError, j.CronExpr, j.UpdatedAt, j.ID,
	)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to update scheduled job", err)
		return cerr.Translate(err, "ScheduledJob")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return cerr.Translate(errJobNotFound, "ScheduledJob")
	}

	return nil
}

// ByID loads a job by id.
func (r *Repository) ByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	ctx, span := r.telemetry.Start(ctx, "postgres.schedule.by_id")
	defer span.End()

	db, err := r.connection.GetDB()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to get database connection", err)
		return nil, err
	}

	row := db.QueryRowContext(ctx, "SELECT "+jobColumns+" FROM scheduled_jobs WHERE id = $1", id)

	j, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cerr.Translate(errJobNotFound, "ScheduledJob")
		}

		mopentelemetry.HandleSpanError(&span, "failed to scan scheduled job", err)

		return nil, err
	}

	return j, nil
}

// ByRecurringID loads the template row for recurringID.
func (r *Repository) ByRecurringID(ctx context.Context, recurringID string) (*domain.Job, error) {
	ctx, span := r.telemetry.Start(ctx, "postgres.schedule.by_recurring_id")
	defer span.End()

	db, err := r.connection.GetDB()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to get database connection", err)
		return nil, err
	}

	row := db.QueryRowContext(ctx, "SELECT "+jobColumns+" FROM scheduled_jobs WHERE recurring_id = $1", recurringID)

	j, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cerr.Translate(errJobNotFound, "ScheduledJob")
		}

		mopentelemetry.HandleSpanError(&span, "failed to scan scheduled job", err)

		return nil, err
	}

	return j, nil
}

// Delete removes a job by id, reporting whether a row was removed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	ctx, span := r.telemetry.Start(ctx, "postgres.schedule.delete")
	defer span.End()

	db, err := r.connection.GetDB()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to get database connection", err)
		return false, err
	}

	result, err := db.ExecContext(ctx, "DELETE FROM scheduled_jobs WHERE id = $1", id)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to delete scheduled job", err)
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

// DeleteByRecurringID removes the template row for recurringID. One-off
// firings already enqueued from the template carry no recurring_id and are
// not deleted.
func (r *Repository) DeleteByRecurringID(ctx context.Context, recurringID string) (bool, error) {
	ctx, span := r.telemetry.Start(ctx, "postgres.schedule.delete_by_recurring_id")
	defer span.End()

	db, err := r.connection.GetDB()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to get database connection", err)
		return false, err
	}

	result, err := db.ExecContext(ctx, "DELETE FROM scheduled_jobs WHERE recurring_id = $1", recurringID)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to delete scheduled job", err)
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

// DueJobs lists up to limit non-terminal jobs in lane whose run_at has
// passed, oldest first (spec.md §4.7 worker polling query).
func (r *Repository) DueJobs(ctx context.Context, lane domain.Lane, asOf time.Time, limit int) ([]*domain.Job, error) {
	ctx, span := r.telemetry.Start(ctx, "postgres.schedule.due_jobs")
	defer span.End()

	db, err := r.connection.GetDB()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to get database connection", err)
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT `+jobColumns+` FROM scheduled_jobs
		WHERE lane = $1 AND run_at <= $2 AND status IN ($3, $4)
		ORDER BY run_at ASC
		LIMIT $5`,
		lane, asOf, domain.StatusEnqueued, domain.StatusFailedRetry, limit,
	)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to execute query", err)
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Job

	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			mopentelemetry.HandleSpanError(&span, "failed to scan scheduled job", err)
			return nil, err
		}

		out = append(out, j)
	}

	return out, rows.Err()
}

// RecurringTemplates lists every recurring-job template row.
func (r *Repository) RecurringTemplates(ctx context.Context) ([]*domain.Job, error) {
	ctx, span := r.telemetry.Start(ctx, "postgres.schedule.recurring_templates")
	defer span.End()

	db, err := r.connection.GetDB()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to get database connection", err)
		return nil, err
	}

	rows, err := db.QueryContext(ctx, "SELECT "+jobColumns+" FROM scheduled_jobs WHERE recurring_id IS NOT NULL")
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to execute query", err)
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Job

	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			mopentelemetry.HandleSpanError(&span, "failed to scan scheduled job", err)
			return nil, err
		}

		out = append(out, j)
	}

	return out, rows.Err()
}

// CountsByStatus groups non-template rows by status, the raw counts the
// scheduler's dashboard cache refresh reads and republishes into Redis.
func (r *Repository) CountsByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	ctx, span := r.telemetry.Start(ctx, "postgres.schedule.counts_by_status")
	defer span.End()

	db, err := r.connection.GetDB()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to get database connection", err)
		return nil, err
	}

	rows, err := db.QueryContext(ctx, "SELECT status, COUNT(*) FROM scheduled_jobs WHERE recurring_id IS NULL GROUP BY status")
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to execute query", err)
		return nil, err
	}
	defer rows.Close()

	out := make(map[domain.Status]int64)

	for rows.Next() {
		var status domain.Status

		var count int64

		if err := rows.Scan(&status, &count); err != nil {
			mopentelemetry.HandleSpanError(&span, "failed to scan status count", err)
			return nil, err
		}

		out[status] = count
	}

	return out, rows.Err()
}
