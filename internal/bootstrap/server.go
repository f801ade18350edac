package bootstrap

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/corebank-platform/core/internal/domain/account"
	"github.com/corebank-platform/core/internal/domain/customer"
	schedule "github.com/corebank-platform/core/internal/domain/schedule"
	"github.com/corebank-platform/core/internal/jobs"
	"github.com/corebank-platform/core/internal/scheduler"
	"github.com/corebank-platform/core/platform/mlog"
	"github.com/corebank-platform/core/platform/mopentelemetry"
	"github.com/corebank-platform/core/pkg/launch"
)

// httpApp adapts *fiber.App to launch.App, mirroring the teacher's Server
// wrapper (_examples/LerianStudio-midaz/components/audit/internal/bootstrap/server.go).
type httpApp struct {
	app     *fiber.App
	address string
	logger  mlog.Logger
}

func (s *httpApp) Run(_ *launch.Launcher) error {
	s.logger.Infof("http server listening on %s", s.address)
	return s.app.Listen(s.address)
}

// relayApp adapts the outbox relay to launch.App.
type relayApp struct {
	relay interface{ Run(ctx context.Context) }
}

func (r relayApp) Run(_ *launch.Launcher) error {
	r.relay.Run(context.Background())
	return nil
}

// schedulerApp adapts the scheduler runtime to launch.App.
type schedulerApp struct {
	scheduler interface{ Run(ctx context.Context) }
}

func (s schedulerApp) Run(_ *launch.Launcher) error {
	s.scheduler.Run(context.Background())
	return nil
}

// jobPayload is the payload the scheduler passes to each handler: the date
// the job should run as-of. All three jobs take a single time.Time
// argument, so they share one payload shape. Encoded with msgpack, matching
// how Scheduler.Enqueue/Schedule marshal every job's payload.
type jobPayload struct {
	AsOf time.Time
}

// registerJobs binds the three scheduled job implementations (spec.md §4.8)
// to the scheduler's handler registry and registers their recurring
// schedules from scheduledJobs (spec.md §6's Scheduler.ScheduledJobs map,
// keyed by the recurring ids spec.md §4.7's table names). Re-running this
// at boot is idempotent: Schedule upserts by recurring id.
func registerJobs(
	ctx context.Context,
	sched *scheduler.Scheduler,
	scheduledJobs map[string]string,
	accounts account.Repository,
	transactions account.TransactionRepository,
	customers customer.Repository,
	logger mlog.Logger,
	telemetry *mopentelemetry.Telemetry,
) {
	statements := jobs.NewDailyStatementGeneration(accounts, transactions, customers, &jobs.LoggingStatementRenderer{Logger: logger}, &jobs.LoggingEmailService{Logger: logger}, logger, telemetry)
	interest := jobs.NewMonthlyInterestCalculation(accounts, transactions, logger, telemetry)
	cleanup := jobs.NewAccountCleanup(accounts, transactions, logger, telemetry)

	const (
		dailyStatementHandler  = "daily_statement_generation"
		monthlyInterestHandler = "monthly_interest_calculation"
		accountCleanupHandler  = "account_cleanup"
	)

	sched.RegisterHandler(dailyStatementHandler, func(ctx context.Context, payload []byte) error {
		asOf, err := decodeAsOf(payload)
		if err != nil {
			return err
		}

		_, err = statements.Run(ctx, asOf)
		return err
	})

	sched.RegisterHandler(monthlyInterestHandler, func(ctx context.Context, payload []byte) error {
		asOf, err := decodeAsOf(payload)
		if err != nil {
			return err
		}

		_, err = interest.Run(ctx, asOf)
		return err
	})

	sched.RegisterHandler(accountCleanupHandler, func(ctx context.Context, payload []byte) error {
		asOf, err := decodeAsOf(payload)
		if err != nil {
			return err
		}

		_, err = cleanup.Run(ctx, asOf)
		return err
	})

	recurring := []struct {
		recurringID string
		handler     string
		lane        schedule.Lane
	}{
		{RecurringDailyStatementGeneration, dailyStatementHandler, schedule.LaneDefault},
		{RecurringMonthlyInterestCalculation, monthlyInterestHandler, schedule.LaneDefault},
		{RecurringAccountCleanup, accountCleanupHandler, schedule.LaneLow},
	}

	for _, r := range recurring {
		cronExpr, ok := scheduledJobs[r.recurringID]
		if !ok {
			logger.Errorf("no cron expression configured for recurring job %q; skipping registration", r.recurringID)
			continue
		}

		if err := sched.Schedule(ctx, r.recurringID, r.handler, jobPayload{}, cronExpr, r.lane); err != nil {
			logger.Errorf("failed to register recurring job %q: %v", r.recurringID, err)
		}
	}
}

func decodeAsOf(payload []byte) (time.Time, error) {
	if len(payload) == 0 {
		return time.Now().UTC(), nil
	}

	var p jobPayload
	if err := msgpack.Unmarshal(payload, &p); err != nil {
		return time.Time{}, err
	}

	if p.AsOf.IsZero() {
		return time.Now().UTC(), nil
	}

	return p.AsOf, nil
}
