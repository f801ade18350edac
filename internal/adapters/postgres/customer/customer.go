// Package customer is the Postgres-backed implementation of
// customer.Repository, grounded on the same AccountPostgreSQLRepository
// shape as internal/adapters/postgres/account.
package customer

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	domain "github.com/corebank-platform/core/internal/domain/customer"
	"github.com/corebank-platform/core/pkg/cerr"
	"github.com/corebank-platform/core/platform/mopentelemetry"
	"github.com/corebank-platform/core/platform/mpostgres"
)

// Repository is a Postgres-specific implementation of domain/customer's
// Repository interface.
type Repository struct {
	connection *mpostgres.Connection
	telemetry  *mopentelemetry.Telemetry
}

// New returns a Repository backed by conn.
func New(conn *mpostgres.Connection, telemetry *mopentelemetry.Telemetry) *Repository {
	return &Repository{connection: conn, telemetry: telemetry}
}

// querier is satisfied by both *sql.DB and *sql.Tx, letting Add/Update run
// either standalone or as part of the Unit of Work's single transaction
// (spec.md §4.3).
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const customerColumns = `id, names, email, phone, address, dob, bvn, credit_score, email_opt_in,
	date_created, is_active, is_deleted, deleted_at, deleted_by`

func scanCustomer(row interface{ Scan(...any) error }) (*domain.Customer, error) {
	var c domain.Customer

	var deletedAt sql.NullTime

	var deletedBy sql.NullString

	if err := row.Scan(
		&c.ID, &c.Names, &c.Email, &c.Phone, &c.Address, &c.DateOfBirth, &c.BVN, &c.CreditScore,
		&c.EmailOptIn, &c.DateCreated, &c.IsActive, &c.IsDeleted, &deletedAt, &deletedBy,
	); err != nil {
		return nil, err
	}

	if deletedAt.Valid {
		c.DeletedAt = &deletedAt.Time
	}

	if deletedBy.Valid {
		c.DeletedBy = &deletedBy.String
	}

	return &c, nil
}

func translatePGError(err error, entityType string) error {
	return cerr.Translate(err, entityType)
}

// Add inserts a new customer row.
func (r *Repository) Add(ctx context.Context, c *domain.Customer) error {
	db, err := r.connection.GetDB()
	if err != nil {
		return err
	}

	return r.AddTx(ctx, db, c)
}

// AddTx is Add run against an externally supplied querier (a *sql.Tx from
// the Unit of Work, or the pool itself).
func (r *Repository) AddTx(ctx context.Context, q querier, c *domain.Customer) error {
	ctx, span := r.telemetry.Start(ctx, "postgres.customer.add")
	defer span.End()

	_, err := q.ExecContext(ctx, `
		INSERT INTO customers (id, names, email, phone, address, dob, bvn, credit_score,
			email_opt_in, date_created, is_active, is_deleted)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		c.ID, c.Names, c.Email, c.Phone, c.Address, c.DateOfBirth, c.BVN, c.CreditScore,
		c.EmailOptIn, c.DateCreated, c.IsActive, c.IsDeleted,
	)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to insert customer", err)
		return translatePGError(err, "Customer")
	}

	return nil
}

// Update persists c in place.
func (r *Repository) Update(ctx context.Context, c *domain.Customer) error {
	db, err := r.connection.GetDB()
	if err != nil {
		return err
	}

	return r.UpdateTx(ctx, db, c)
}

// UpdateTx is Update run against an externally supplied querier (a *sql.Tx
// from the Unit of Work, or the pool itself).
func (r *Repository) UpdateTx(ctx context.Context, q querier, c *domain.Customer) error {
	ctx, span := r.telemetry.Start(ctx, "postgres.customer.update")
	defer span.End()

	result, err := q.ExecContext(ctx, `
		UPDATE customers SET names = $1, phone = $2, address = $3, credit_score = $4,
			email_opt_in = $5, is_active = $6, is_deleted = $7, deleted_at = $8, deleted_by = $9
		WHERE id = $10`,
		c.Names, c.Phone, c.Address, c.CreditScore, c.EmailOptIn,
		c.IsActive, c.IsDeleted, c.DeletedAt, c.DeletedBy, c.ID,
	)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to update customer", err)
		return translatePGError(err, "Customer")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return cerr.Translate(cerr.ErrCustomerNotFound, "Customer")
	}

	return nil
}

// SaveChanges is a no-op: every write above flushes immediately.
func (r *Repository) SaveChanges(ctx context.Context) error {
	return nil
}

// ByID loads a customer by id.
func (r *Repository) ByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	ctx, span := r.telemetry.Start(ctx, "postgres.customer.by_id")
	defer span.End()

	db, err := r.connection.GetDB()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to get database connection", err)
		return nil, err
	}

	row := db.QueryRowContext(ctx, "SELECT "+customerColumns+" FROM customers WHERE id = $1 AND is_deleted = false", id)

	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cerr.Translate(cerr.ErrCustomerNotFound, "Customer")
		}

		mopentelemetry.HandleSpanError(&span, "failed to scan customer", err)

		return nil, err
	}

	return c, nil
}

// ExistsByID reports whether a non-deleted customer with id exists.
func (r *Repository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	ctx, span := r.telemetry.Start(ctx, "postgres.customer.exists_by_id")
	defer span.End()

	db, err := r.connection.GetDB()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to get database connection", err)
		return false, err
	}

	var exists bool
	if err := db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM customers WHERE id = $1 AND is_deleted = false)", id).Scan(&exists); err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to check customer", err)
		return false, err
	}

	return exists, nil
}

// ByEmail looks up a customer by case-insensitive email.
func (r *Repository) ByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	ctx, span := r.telemetry.Start(ctx, "postgres.customer.by_email")
	defer span.End()

	db, err := r.connection.GetDB()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to get database connection", err)
		return nil, err
	}

	row := db.QueryRowContext(ctx, "SELECT "+customerColumns+" FROM customers WHERE lower(email) = lower($1) AND is_deleted = false", email)

	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cerr.Translate(cerr.ErrCustomerNotFound, "Customer")
		}

		mopentelemetry.HandleSpanError(&span, "failed to scan customer", err)

		return nil, err
	}

	return c, nil
}

// All lists every non-deleted customer.
func (r *Repository) All(ctx context.Context) ([]*domain.Customer, error) {
	ctx, span := r.telemetry.Start(ctx, "postgres.customer.all")
	defer span.End()

	db, err := r.connection.GetDB()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to get database connection", err)
		return nil, err
	}

	rows, err := db.QueryContext(ctx, "SELECT "+customerColumns+" FROM customers WHERE is_deleted = false ORDER BY date_created ASC")
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to execute query", err)
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Customer

	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			mopentelemetry.HandleSpanError(&span, "failed to scan customer", err)
			return nil, err
		}

		out = append(out, c)
	}

	return out, rows.Err()
}
