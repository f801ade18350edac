package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence port for Jobs, implemented by
// internal/adapters/postgres/schedule.
//
//go:generate mockgen --destination=mock/schedule_repository_mock.go --package=mock . Repository
type Repository interface {
	Insert(ctx context.Context, j *Job) error
	Update(ctx context.Context, j *Job) error
	ByID(ctx context.Context, id uuid.UUID) (*Job, error)
	ByRecurringID(ctx context.Context, recurringID string) (*Job, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteByRecurringID(ctx context.Context, recurringID string) (bool, error)

	// DueJobs returns up to limit non-terminal jobs in lane whose RunAt has
	// passed, oldest first — the worker pool's polling query.
	DueJobs(ctx context.Context, lane Lane, asOf time.Time, limit int) ([]*Job, error)

	// RecurringTemplates returns every recurring-job template row, used by
	// the scheduler's cron ticker to decide which are due to fire.
	RecurringTemplates(ctx context.Context) ([]*Job, error)

	// CountsByStatus powers the dashboard read surface (spec.md §4.7).
	CountsByStatus(ctx context.Context) (map[Status]int64, error)
}
