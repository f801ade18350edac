// Package account is the Postgres-backed implementation of
// account.Repository and account.TransactionRepository. Grounded on the
// teacher's AccountPostgreSQLRepository
// (_examples/LerianStudio-midaz/components/ledger/internal/adapters/postgres/account/account.postgresql.go):
// same tracer-span-per-call shape, same squirrel-for-dynamic/plain-SQL-for-
// fixed split, same pgconn.PgError → business-error translation — adapted
// to this spec's Account/Transaction schema and its optimistic-concurrency
// row_version column.
package account

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	domain "github.com/corebank-platform/core/internal/domain/account"
	"github.com/corebank-platform/core/pkg/cerr"
	"github.com/corebank-platform/core/pkg/money"
	"github.com/corebank-platform/core/platform/mopentelemetry"
	"github.com/corebank-platform/core/platform/mpostgres"
)

// Repository is a Postgres-specific implementation of domain/account's
// Repository and TransactionRepository interfaces.
type Repository struct {
	connection *mpostgres.Connection
	telemetry  *mopentelemetry.Telemetry
}

// New returns a Repository backed by the given connection.
func New(conn *mpostgres.Connection, telemetry *mopentelemetry.Telemetry) *Repository {
	return &Repository{connection: conn, telemetry: telemetry}
}

// querier is satisfied by both *sql.DB and *sql.Tx, letting Add/Update run
// either standalone (SaveChanges-style calls from jobs) or as part of the
// Unit of Work's single transaction (spec.md §4.3).
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func translatePGError(err error, entityType string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.ConstraintName {
		case "accounts_account_number_key":
			return cerr.Translate(cerr.ErrDuplicateAccountNo, entityType)
		default:
			return cerr.Translate(err, entityType)
		}
	}

	return cerr.Translate(err, entityType)
}

// Add inserts a new account row.
func (r *Repository) Add(ctx context.Context, a *domain.Account) error {
	db, err := r.connection.GetDB()
	if err != nil {
		return err
	}

	return r.AddTx(ctx, db, a)
}

// AddTx is Add run against an externally supplied querier (a *sql.Tx from
// the Unit of Work, or the pool itself).
func (r *Repository) AddTx(ctx context.Context, q querier, a *domain.Account) error {
	ctx, span := r.telemetry.Start(ctx, "postgres.account.add")
	defer span.End()

	rowVersion := nextRowVersion(nil)

	_, err := q.ExecContext(ctx, `
		INSERT INTO accounts (
			id, account_number, customer_id, type, balance_amount, balance_currency,
			date_opened, is_active, is_deleted, row_version, last_activity, status,
			is_interest_bearing, is_archived
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		a.ID, a.AccountNumber, a.CustomerID, a.Type, a.Balance.Amount, a.Balance.Currency,
		a.DateOpened, a.IsActive, a.IsDeleted, rowVersion, a.LastActivity, a.Status,
		a.InterestBearing, a.IsArchived,
	)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to insert account", err)
		return translatePGError(err, "Account")
	}

	a.RowVersion = rowVersion

	return nil
}

// Update persists a in place, enforcing optimistic concurrency against
// a.RowVersion: a mismatch maps to cerr.ErrConcurrencyConflict (spec.md §4.2).
func (r *Repository) Update(ctx context.Context, a *domain.Account) error {
	db, err := r.connection.GetDB()
	if err != nil {
		return err
	}

	return r.UpdateTx(ctx, db, a)
}

// UpdateTx is Update run against an externally supplied querier (a *sql.Tx
// from the Unit of Work, or the pool itself).
func (r *Repository) UpdateTx(ctx context.Context, q querier, a *domain.Account) error {
	ctx, span := r.telemetry.Start(ctx, "postgres.account.update")
	defer span.End()

	newVersion := nextRowVersion(a.RowVersion)

	result, err := q.ExecContext(ctx, `
		UPDATE accounts SET
			balance_amount = $1, balance_currency = $2, is_active = $3, is_deleted = $4,
			deleted_at = $5, deleted_by = $6, last_activity = $7, status = $8,
			is_interest_bearing = $9, is_archived = $10, row_version = $11
		WHERE id = $12 AND row_version = $13`,
		a.Balance.Amount, a.Balance.Currency, a.IsActive, a.IsDeleted,
		a.DeletedAt, a.DeletedBy, a.LastActivity, a.Status,
		a.InterestBearing, a.IsArchived, newVersion,
		a.ID, a.RowVersion,
	)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to update account", err)
		return translatePGError(err, "Account")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return cerr.Translate(cerr.ErrConcurrencyConflict, "Account")
	}

	a.RowVersion = newVersion

	return nil
}

// SaveChanges is a no-op for this driver: every write is flushed immediately
// via ExecContext. It exists to satisfy the teacher-style explicit-flush
// surface jobs call (spec.md §4.2).
func (r *Repository) SaveChanges(ctx context.Context) error {
	return nil
}

func nextRowVersion(previous []byte) []byte {
	v := make([]byte, 8)
	now := uint64(time.Now().UnixNano())

	if len(previous) == 8 {
		prevVal := uint64(0)
		for _, b := range previous {
			prevVal = prevVal<<8 | uint64(b)
		}

		if now <= prevVal {
			now = prevVal + 1
		}
	}

	for i := 7; i >= 0; i-- {
		v[i] = byte(now)
		now >>= 8
	}

	return v
}

func scanAccount(row interface{ Scan(...any) error }) (*domain.Account, error) {
	var a domain.Account

	var amount decimal.Decimal

	var currency string

	var deletedAt sql.NullTime

	var deletedBy sql.NullString

	if err := row.Scan(
		&a.ID, &a.AccountNumber, &a.CustomerID, &a.Type, &amount, &currency,
		&a.DateOpened, &a.IsActive, &a.IsDeleted, &deletedAt, &deletedBy,
		&a.RowVersion, &a.LastActivity, &a.Status, &a.InterestBearing, &a.IsArchived,
	); err != nil {
		return nil, err
	}

	a.Balance = money.Money{Amount: amount, Currency: currency}

	if deletedAt.Valid {
		a.DeletedAt = &deletedAt.Time
	}

	if deletedBy.Valid {
		a.DeletedBy = &deletedBy.String
	}

	return &a, nil
}

const accountColumns = `id, account_number, customer_id, type, balance_amount, balance_currency,
	date_opened, is_active, is_deleted, deleted_at, deleted_by, row_version, last_activity,
	status, is_interest_bearing, is_archived`

// ByID loads an account by id, excluding soft-deleted rows.
func (r *Repository) ByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	ctx, span := r.telemetry.Start(ctx, "postgres.account.by_id")
	defer span.End()

	db, err := r.connection.GetDB()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to get database connection", err)
		return nil, err
	}

	row := db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = $1 AND is_deleted = false", id)

	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cerr.Translate(cerr.ErrAccountNotFound, "Account")
		}

		mopentelemetry.HandleSpanError(&span, "failed to scan account", err)

		return nil, err
	}

	return a, nil
}

// ByAccountNumber loads an account by its number.
func (r *Repository) ByAccountNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	ctx, span := r.telemetry.Start(ctx, "postgres.account.by_account_number")
	defer span.End()

	db, err := r.connection.GetDB()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to get database connection", err)
		return nil, err
	}

	row := db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM accounts WHERE account_number = $1 AND is_deleted = false", accountNumber)

	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cerr.Translate(cerr.ErrAccountNotFound, "Account")
		}

		mopentelemetry.HandleSpanError(&span, "failed to scan account", err)

		return nil, err
	}

	return a, nil
}

// AccountNumberExists reports whether accountNumber is already taken,
// including by soft-deleted rows (numbers are never recycled).
func (r *Repository) AccountNumberExists(ctx context.Context, accountNumber string) (bool, error) {
	ctx, span := r.telemetry.Start(ctx, "postgres.account.number_exists")
	defer span.End()

	db, err := r.connection.GetDB()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to get database connection", err)
		return false, err
	}

	var exists bool
	if err := db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM accounts WHERE account_number = $1)", accountNumber).Scan(&exists); err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to check account number", err)
		return false, err
	}

	return exists, nil
}

// AllForCustomer lists every non-deleted account owned by customerID.
func (r *Repository) AllForCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Account, error) {
	return r.queryAll(ctx, "postgres.account.all_for_customer", squirrel.Select(accountColumns).
		From("accounts").
		Where(squirrel.Eq{"customer_id": customerID, "is_deleted": false}).
		OrderBy("date_opened ASC"))
}

// Active lists every active, non-deleted account.
func (r *Repository) Active(ctx context.Context) ([]*domain.Account, error) {
	return r.queryAll(ctx, "postgres.account.active", squirrel.Select(accountColumns).
		From("accounts").
		Where(squirrel.Eq{"status": domain.StatusActive, "is_deleted": false}))
}

// InterestBearing lists active accounts with the interest-bearing flag set.
func (r *Repository) InterestBearing(ctx context.Context) ([]*domain.Account, error) {
	return r.queryAll(ctx, "postgres.account.interest_bearing", squirrel.Select(accountColumns).
		From("accounts").
		Where(squirrel.Eq{"status": domain.StatusActive, "is_interest_bearing": true, "is_deleted": false}))
}

// InactiveSince lists active, zero-balance accounts last active before cutoff.
func (r *Repository) InactiveSince(ctx context.Context, cutoff time.Time) ([]*domain.Account, error) {
	return r.queryAll(ctx, "postgres.account.inactive_since", squirrel.Select(accountColumns).
		From("accounts").
		Where(squirrel.Eq{"status": domain.StatusActive, "balance_amount": 0, "is_deleted": false}).
		Where(squirrel.Lt{"last_activity": cutoff}))
}

// ByStatus lists non-deleted accounts in the given status.
func (r *Repository) ByStatus(ctx context.Context, status domain.Status) ([]*domain.Account, error) {
	return r.queryAll(ctx, "postgres.account.by_status", squirrel.Select(accountColumns).
		From("accounts").
		Where(squirrel.Eq{"status": status, "is_deleted": false}))
}

// LowBalance lists non-deleted accounts with a balance at or below threshold.
func (r *Repository) LowBalance(ctx context.Context, threshold float64) ([]*domain.Account, error) {
	return r.queryAll(ctx, "postgres.account.low_balance", squirrel.Select(accountColumns).
		From("accounts").
		Where(squirrel.LtOrEq{"balance_amount": threshold}).
		Where(squirrel.Eq{"is_deleted": false}))
}

func (r *Repository) queryAll(ctx context.Context, spanName string, builder squirrel.SelectBuilder) ([]*domain.Account, error) {
	ctx, span := r.telemetry.Start(ctx, spanName)
	defer span.End()

	db, err := r.connection.GetDB()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to get database connection", err)
		return nil, err
	}

	query, args, err := builder.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to build query", err)
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to execute query", err)
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Account

	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			mopentelemetry.HandleSpanError(&span, "failed to scan account", err)
			return nil, err
		}

		out = append(out, a)
	}

	return out, rows.Err()
}
