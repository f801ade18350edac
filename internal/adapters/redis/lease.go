// Package redis backs the scheduled-job runtime's invisibility-timeout
// worker lease and the dashboard's live-count cache (spec.md §4.7), using
// the connection hub modeled on the teacher's common/mredis package.
package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/corebank-platform/core/platform/mredis"
)

// LeaseStore implements a job's invisibility timeout via SET NX PX: a
// worker that successfully acquires the lease is the only one allowed to
// process that job id until the lease expires, preventing duplicate
// execution across worker crashes (spec.md §4.7).
type LeaseStore struct {
	connection *mredis.Connection
	prefix     string
}

// NewLeaseStore returns a LeaseStore backed by conn.
func NewLeaseStore(conn *mredis.Connection) *LeaseStore {
	return &LeaseStore{connection: conn, prefix: "scheduler:lease:"}
}

// Acquire attempts to take the lease for jobID, held by owner for ttl. It
// reports false without error when another worker already holds it.
func (s *LeaseStore) Acquire(ctx context.Context, jobID, owner string, ttl time.Duration) (bool, error) {
	client, err := s.connection.GetClient(ctx)
	if err != nil {
		return false, err
	}

	ok, err := client.SetNX(ctx, s.prefix+jobID, owner, ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// Release drops the lease for jobID, making it immediately eligible for
// re-acquisition (called after a job completes, success or failure).
func (s *LeaseStore) Release(ctx context.Context, jobID string) error {
	client, err := s.connection.GetClient(ctx)
	if err != nil {
		return err
	}

	return client.Del(ctx, s.prefix+jobID).Err()
}

// DashboardCache stores the per-state job counts the scheduler's dashboard
// read surface serves, refreshed by the scheduler loop and read by the
// Fiber handler without hitting Postgres on every request.
type DashboardCache struct {
	connection *mredis.Connection
	key        string
}

// NewDashboardCache returns a DashboardCache backed by conn.
func NewDashboardCache(conn *mredis.Connection) *DashboardCache {
	return &DashboardCache{connection: conn, key: "scheduler:dashboard:counts"}
}

// SetCounts stores the per-state counts, serialized as a Redis hash.
func (c *DashboardCache) SetCounts(ctx context.Context, counts map[string]int64) error {
	client, err := c.connection.GetClient(ctx)
	if err != nil {
		return err
	}

	values := make(map[string]interface{}, len(counts))
	for state, count := range counts {
		values[state] = count
	}

	return client.HSet(ctx, c.key, values).Err()
}

// Counts reads back the per-state counts.
func (c *DashboardCache) Counts(ctx context.Context) (map[string]int64, error) {
	client, err := c.connection.GetClient(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := client.HGetAll(ctx, c.key).Result()
	if err != nil {
		if err == redis.Nil {
			return map[string]int64{}, nil
		}

		return nil, err
	}

	out := make(map[string]int64, len(raw))

	for state, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}

		out[state] = n
	}

	return out, nil
}
