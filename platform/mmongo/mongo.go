// Package mmongo is the connection hub for MongoDB, mirroring the teacher's
// common/mmongo package. It backs the free-form Metadata side-store for
// Customer and Account (SPEC_FULL.md §C).
package mmongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/corebank-platform/core/platform/mlog"
)

// Connection is a hub which deals with mongodb connections.
type Connection struct {
	ConnectionString string
	Database         string
	Logger           mlog.Logger

	client    *mongo.Client
	Connected bool
}

// Connect dials mongo and pings to confirm reachability.
func (c *Connection) Connect(ctx context.Context) error {
	c.Logger.Info("connecting to mongodb...")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.ConnectionString))
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}

	c.client = client
	c.Connected = true

	c.Logger.Info("connected to mongodb")

	return nil
}

// GetDatabase returns the configured database handle, connecting lazily.
func (c *Connection) GetDatabase(ctx context.Context) (*mongo.Database, error) {
	if c.client == nil {
		if err := c.Connect(ctx); err != nil {
			return nil, err
		}
	}

	return c.client.Database(c.Database), nil
}
