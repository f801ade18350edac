// Package mredis is the connection hub for Redis, mirroring the teacher's
// common/mredis package. It backs the scheduled-job runtime's worker lease
// (invisibility timeout) store and the dashboard's live-count cache.
package mredis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/corebank-platform/core/platform/mlog"
)

// Connection is a hub which deals with redis connections.
type Connection struct {
	ConnectionString string
	Logger           mlog.Logger

	Client    *redis.Client
	Connected bool
}

// Connect parses the connection string and pings the server.
func (c *Connection) Connect(ctx context.Context) error {
	c.Logger.Info("connecting to redis...")

	opts, err := redis.ParseURL(c.ConnectionString)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}

	c.Client = client
	c.Connected = true

	c.Logger.Info("connected to redis")

	return nil
}

// GetClient returns the client, connecting lazily if necessary.
func (c *Connection) GetClient(ctx context.Context) (*redis.Client, error) {
	if c.Client == nil {
		if err := c.Connect(ctx); err != nil {
			return nil, err
		}
	}

	return c.Client, nil
}
