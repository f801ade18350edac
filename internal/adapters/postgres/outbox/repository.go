package outbox

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/corebank-platform/core/platform/mopentelemetry"
	"github.com/corebank-platform/core/platform/mpostgres"
)

// Repository is the Postgres-backed store for outbox rows, used by both the
// Unit of Work (insert, inside the aggregate's own transaction) and the
// relay (poll + batch update, spec.md §4.3, §4.6).
type Repository struct {
	connection *mpostgres.Connection
	telemetry  *mopentelemetry.Telemetry
}

// New returns a Repository backed by conn.
func New(conn *mpostgres.Connection, telemetry *mopentelemetry.Telemetry) *Repository {
	return &Repository{connection: conn, telemetry: telemetry}
}

// InsertBatchTx inserts every message in msgs using the given transaction,
// so the caller (the Unit of Work) can commit them atomically with its
// aggregate mutations (spec.md §4.3 steps 4-6).
func (r *Repository) InsertBatchTx(ctx context.Context, tx *sql.Tx, msgs []*Message) error {
	ctx, span := r.telemetry.Start(ctx, "postgres.outbox.insert_batch")
	defer span.End()

	for _, m := range msgs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO outbox_messages (id, type, content, occurred_on, processed_on, retry_count, error)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			m.ID, m.Type, []byte(m.Content), m.OccurredOn, m.ProcessedOn, m.RetryCount, m.LastError,
		); err != nil {
			mopentelemetry.HandleSpanError(&span, "failed to insert outbox message", err)
			return err
		}
	}

	return nil
}

// PollPending reads up to limit rows where processed_on IS NULL AND
// retry_count < maxRetries, ordered by occurred_on ascending — exactly the
// relay's batch query (spec.md §4.6 step 2).
func (r *Repository) PollPending(ctx context.Context, limit, maxRetries int) ([]*Message, error) {
	ctx, span := r.telemetry.Start(ctx, "postgres.outbox.poll_pending")
	defer span.End()

	db, err := r.connection.GetDB()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to get database connection", err)
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, type, content, occurred_on, processed_on, retry_count, error
		FROM outbox_messages
		WHERE processed_on IS NULL AND retry_count < $1
		ORDER BY occurred_on ASC
		LIMIT $2`,
		maxRetries, limit,
	)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to execute query", err)
		return nil, err
	}
	defer rows.Close()

	var out []*Message

	for rows.Next() {
		m := &Message{MaxRetries: maxRetries, Status: StatusPending}

		var content []byte

		var lastError sql.NullString

		if err := rows.Scan(&m.ID, &m.Type, &content, &m.OccurredOn, &m.ProcessedOn, &m.RetryCount, &lastError); err != nil {
			mopentelemetry.HandleSpanError(&span, "failed to scan outbox row", err)
			return nil, err
		}

		m.Content = content

		if lastError.Valid {
			m.LastError = &lastError.String
		}

		if m.RetryCount > 0 {
			m.Status = StatusFailed
		}

		out = append(out, m)
	}

	return out, rows.Err()
}

// SaveBatch persists the outcome (processed_on, retry_count, error) of every
// message in msgs in one transaction (spec.md §4.6 step 4).
func (r *Repository) SaveBatch(ctx context.Context, msgs []*Message) error {
	ctx, span := r.telemetry.Start(ctx, "postgres.outbox.save_batch")
	defer span.End()

	db, err := r.connection.GetDB()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to get database connection", err)
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to begin transaction", err)
		return err
	}

	for _, m := range msgs {
		if _, err := tx.ExecContext(ctx, `
			UPDATE outbox_messages SET processed_on = $1, retry_count = $2, error = $3
			WHERE id = $4`,
			m.ProcessedOn, m.RetryCount, m.LastError, m.ID,
		); err != nil {
			_ = tx.Rollback()
			mopentelemetry.HandleSpanError(&span, "failed to update outbox row", err)

			return err
		}
	}

	if err := tx.Commit(); err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to commit outbox batch", err)
		return err
	}

	return nil
}

// ResetRetryCount is the operator intervention spec.md §4.6 describes for
// reviving a dead-lettered row: it resets retry-count to 0 so the poller's
// query picks it up again.
func (r *Repository) ResetRetryCount(ctx context.Context, id uuid.UUID) error {
	ctx, span := r.telemetry.Start(ctx, "postgres.outbox.reset_retry_count")
	defer span.End()

	db, err := r.connection.GetDB()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to get database connection", err)
		return err
	}

	_, err = db.ExecContext(ctx, "UPDATE outbox_messages SET retry_count = 0, error = NULL WHERE id = $1", id)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to reset outbox row", err)
		return err
	}

	return nil
}
