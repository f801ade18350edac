package account

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domain "github.com/corebank-platform/core/internal/domain/account"
	"github.com/corebank-platform/core/pkg/cerr"
	"github.com/corebank-platform/core/pkg/money"
	"github.com/corebank-platform/core/platform/mopentelemetry"
	"github.com/corebank-platform/core/platform/mpostgres"
)

const transactionColumns = `id, account_id, type, amount_amount, amount_currency, description,
	timestamp, reference, is_deleted, deleted_at, deleted_by`

// TransactionRepository is a Postgres-specific implementation of
// domain/account's TransactionRepository interface. Kept as a distinct type
// from Repository (rather than one type implementing both interfaces)
// because Repository.ByID/Add and TransactionRepository.ByID/Add share
// names but differ in signature — Go method sets cannot overload on
// that, and the teacher's codebase likewise keeps one repository type per
// aggregate/entity pair.
type TransactionRepository struct {
	connection *mpostgres.Connection
	telemetry  *mopentelemetry.Telemetry
}

// NewTransactionRepository returns a TransactionRepository backed by conn.
func NewTransactionRepository(conn *mpostgres.Connection, telemetry *mopentelemetry.Telemetry) *TransactionRepository {
	return &TransactionRepository{connection: conn, telemetry: telemetry}
}

func scanTransaction(row interface{ Scan(...any) error }) (*domain.Transaction, error) {
	var t domain.Transaction

	var amount decimal.Decimal

	var currency string

	var deletedAt sql.NullTime

	var deletedBy sql.NullString

	if err := row.Scan(
		&t.ID, &t.AccountID, &t.Type, &amount, &currency, &t.Description,
		&t.Timestamp, &t.Reference, &t.IsDeleted, &deletedAt, &deletedBy,
	); err != nil {
		return nil, err
	}

	t.Amount = money.Money{Amount: amount, Currency: currency}

	if deletedAt.Valid {
		t.DeletedAt = &deletedAt.Time
	}

	if deletedBy.Valid {
		t.DeletedBy = &deletedBy.String
	}

	return &t, nil
}

// Add inserts a single transaction row.
func (r *TransactionRepository) Add(ctx context.Context, t *domain.Transaction) error {
	db, err := r.connection.GetDB()
	if err != nil {
		return err
	}

	return r.AddTx(ctx, db, t)
}

// AddTx is Add run against an externally supplied querier (a *sql.Tx from
// the Unit of Work, or the pool itself).
func (r *TransactionRepository) AddTx(ctx context.Context, q querier, t *domain.Transaction) error {
	ctx, span := r.telemetry.Start(ctx, "postgres.transaction.add")
	defer span.End()

	_, err := q.ExecContext(ctx, `
		INSERT INTO transactions (id, account_id, type, amount_amount, amount_currency,
			description, timestamp, reference, is_deleted)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		t.ID, t.AccountID, t.Type, t.Amount.Amount, t.Amount.Currency,
		t.Description, t.Timestamp, t.Reference, t.IsDeleted,
	)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to insert transaction", err)
		return translatePGError(err, "Transaction")
	}

	return nil
}

// AddRange inserts every transaction in txns inside a single database
// transaction (spec.md §4.2 "add-range"). Used by the monthly interest job
// to flush its batch of InterestCredit transactions.
func (r *TransactionRepository) AddRange(ctx context.Context, txns []*domain.Transaction) error {
	ctx, span := r.telemetry.Start(ctx, "postgres.transaction.add_range")
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

	if err := r.AddRangeTx(ctx, tx, txns); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to commit transaction batch", err)
		return err
	}

	return nil
}

// AddRangeTx is AddRange's per-row insert logic, run against an externally
// supplied *sql.Tx so the Unit of Work can batch-insert a set of new
// transactions as part of its own larger commit.
func (r *TransactionRepository) AddRangeTx(ctx context.Context, tx *sql.Tx, txns []*domain.Transaction) error {
	for _, t := range txns {
		if err := r.AddTx(ctx, tx, t); err != nil {
			return err
		}
	}

	return nil
}

// SaveChanges is a no-op: every write above flushes immediately.
func (r *TransactionRepository) SaveChanges(ctx context.Context) error {
	return nil
}

// ByID loads a transaction by id.
func (r *TransactionRepository) ByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	ctx, span := r.telemetry.Start(ctx, "postgres.transaction.by_id")
	defer span.End()

	db, err := r.connection.GetDB()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to get database connection", err)
		return nil, err
	}

	row := db.QueryRowContext(ctx, "SELECT "+transactionColumns+" FROM transactions WHERE id = $1 AND is_deleted = false", id)

	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cerr.Translate(cerr.ErrTransactionNotFound, "Transaction")
		}

		mopentelemetry.HandleSpanError(&span, "failed to scan transaction", err)

		return nil, err
	}

	return t, nil
}

// ByAccount lists every non-deleted transaction for accountID, oldest first.
func (r *TransactionRepository) ByAccount(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error) {
	return r.queryTransactions(ctx, "postgres.transaction.by_account",
		"SELECT "+transactionColumns+" FROM transactions WHERE account_id = $1 AND is_deleted = false ORDER BY timestamp ASC", accountID)
}

// ByAccountAndDateRange lists transactions for accountID within [start,
// end], inclusive, ordered by timestamp ascending (spec.md §4.2).
func (r *TransactionRepository) ByAccountAndDateRange(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]*domain.Transaction, error) {
	return r.queryTransactions(ctx, "postgres.transaction.by_account_date_range",
		"SELECT "+transactionColumns+" FROM transactions WHERE account_id = $1 AND timestamp >= $2 AND timestamp <= $3 AND is_deleted = false ORDER BY timestamp ASC",
		accountID, start, end)
}

// OlderThan lists non-deleted transactions with a timestamp before cutoff.
func (r *TransactionRepository) OlderThan(ctx context.Context, cutoff time.Time) ([]*domain.Transaction, error) {
	return r.queryTransactions(ctx, "postgres.transaction.older_than",
		"SELECT "+transactionColumns+" FROM transactions WHERE timestamp < $1 AND is_deleted = false ORDER BY timestamp ASC", cutoff)
}

// RecentSince lists transactions for accountID posted at or after since.
func (r *TransactionRepository) RecentSince(ctx context.Context, accountID uuid.UUID, since time.Time) ([]*domain.Transaction, error) {
	return r.queryTransactions(ctx, "postgres.transaction.recent_since",
		"SELECT "+transactionColumns+" FROM transactions WHERE account_id = $1 AND timestamp >= $2 AND is_deleted = false ORDER BY timestamp ASC",
		accountID, since)
}

// ByDateRange lists all non-deleted transactions in [start, end], any account.
func (r *TransactionRepository) ByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Transaction, error) {
	return r.queryTransactions(ctx, "postgres.transaction.by_date_range",
		"SELECT "+transactionColumns+" FROM transactions WHERE timestamp >= $1 AND timestamp <= $2 AND is_deleted = false ORDER BY timestamp ASC",
		start, end)
}

// CountByTypeInRange counts non-deleted transactions of txnType for
// accountID within [start, end]. Used to derive the Savings monthly
// withdrawal count without any in-memory counter (spec.md §5).
func (r *TransactionRepository) CountByTypeInRange(ctx context.Context, accountID uuid.UUID, txnType domain.TxnType, start, end time.Time) (int, error) {
	ctx, span := r.telemetry.Start(ctx, "postgres.transaction.count_by_type_in_range")
	defer span.End()

	db, err := r.connection.GetDB()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to get database connection", err)
		return 0, err
	}

	var count int
	if err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM transactions
		WHERE account_id = $1 AND type = $2 AND timestamp >= $3 AND timestamp <= $4 AND is_deleted = false`,
		accountID, txnType, start, end,
	).Scan(&count); err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to count transactions", err)
		return 0, err
	}

	return count, nil
}

// AverageDailyBalance implements spec.md §4.2's corrected algorithm (per the
// Open Question resolution in spec.md §9): seed the running balance with the
// account's balance as of startDate minus one day, then walk each day in
// [startDate, endDate] applying that day's signed transaction deltas and
// accumulating the end-of-day balance; return the accumulator divided by the
// number of days walked. Dates must be truncated to midnight UTC by the
// caller.
func (r *TransactionRepository) AverageDailyBalance(ctx context.Context, accountID uuid.UUID, startDate, endDate time.Time) (float64, error) {
	ctx, span := r.telemetry.Start(ctx, "postgres.transaction.average_daily_balance")
	defer span.End()

	db, err := r.connection.GetDB()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to get database connection", err)
		return 0, err
	}

	rows, err := db.QueryContext(ctx, "SELECT "+transactionColumns+" FROM transactions WHERE account_id = $1 AND timestamp <= $2 AND is_deleted = false ORDER BY timestamp ASC",
		accountID, endDate)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to execute query", err)
		return 0, err
	}
	defer rows.Close()

	var all []*domain.Transaction

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			mopentelemetry.HandleSpanError(&span, "failed to scan transaction", err)
			return 0, err
		}

		all = append(all, t)
	}

	if err := rows.Err(); err != nil {
		return 0, err
	}

	seed := 0.0

	for _, t := range all {
		if t.Timestamp.Before(startDate) {
			seed += float64(t.Type.Sign()) * t.Amount.Amount.InexactFloat64()
		}
	}

	running := seed

	var accumulator float64

	var days int

	for day := startDate; !day.After(endDate); day = day.AddDate(0, 0, 1) {
		nextDay := day.AddDate(0, 0, 1)

		for _, t := range all {
			if !t.Timestamp.Before(day) && t.Timestamp.Before(nextDay) {
				running += float64(t.Type.Sign()) * t.Amount.Amount.InexactFloat64()
			}
		}

		accumulator += running
		days++
	}

	if days == 0 {
		return 0, nil
	}

	return accumulator / float64(days), nil
}

func (r *TransactionRepository) queryTransactions(ctx context.Context, spanName, query string, args ...any) ([]*domain.Transaction, error) {
	ctx, span := r.telemetry.Start(ctx, spanName)
	defer span.End()

	db, err := r.connection.GetDB()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to get database connection", err)
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to execute query", err)
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Transaction

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			mopentelemetry.HandleSpanError(&span, "failed to scan transaction", err)
			return nil, err
		}

		out = append(out, t)
	}

	return out, rows.Err()
}
