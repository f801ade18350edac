// Package mpostgres is the connection hub for the primary datastore,
// mirroring the teacher's common/mpostgres package: a struct holding the
// connection string, a Connect that runs migrations and pings, and a GetDB
// that lazily connects.
package mpostgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/corebank-platform/core/platform/mlog"
)

// Connection is a hub which deals with postgres connections and migrations.
type Connection struct {
	ConnectionString string
	MigrationsPath   string
	DBName           string
	Logger           mlog.Logger

	db        *sql.DB
	Connected bool
}

// Connect opens the primary connection, applies pending migrations, and
// pings to confirm reachability.
func (c *Connection) Connect() error {
	c.Logger.Info("connecting to postgres...")

	db, err := sql.Open("pgx", c.ConnectionString)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}

	if c.MigrationsPath != "" {
		driver, err := postgres.WithInstance(db, &postgres.Config{DatabaseName: c.DBName, SchemaName: "public"})
		if err != nil {
			return fmt.Errorf("migration driver: %w", err)
		}

		m, err := migrate.NewWithDatabaseInstance("file://"+c.MigrationsPath, c.DBName, driver)
		if err != nil {
			return fmt.Errorf("load migrations: %w", err)
		}

		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}

	c.db = db
	c.Connected = true

	c.Logger.Info("connected to postgres")

	return nil
}

// GetDB returns the pool, connecting lazily if necessary.
func (c *Connection) GetDB() (*sql.DB, error) {
	if c.db == nil {
		if err := c.Connect(); err != nil {
			return nil, err
		}
	}

	return c.db, nil
}

// Close releases the connection pool.
func (c *Connection) Close() error {
	if c.db == nil {
		return nil
	}

	return c.db.Close()
}
