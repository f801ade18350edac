package jobs

import (
	"context"
	"time"

	"github.com/corebank-platform/core/internal/domain/account"
	"github.com/corebank-platform/core/platform/mlog"
	"github.com/corebank-platform/core/platform/mopentelemetry"
)

// transactionArchiveCutoff is how old a transaction must be before the
// archival sweep counts it (spec.md §4.8(c) "enumerate and report; actual
// archival out of scope").
const transactionArchiveCutoff = 7 * 365 * 24 * time.Hour

// AccountCleanup runs the two account-maintenance sweeps spec.md §4.8(c)
// describes: dormancy-driven status transitions, and a read-only report of
// how many transactions are old enough to archive. Grounded on the
// dormancy thresholds already implemented on the Account aggregate
// (UpdateStatusBasedOnRules) and on the teacher's status-sweep batch shape.
type AccountCleanup struct {
	accounts     account.Repository
	transactions account.TransactionRepository
	logger       mlog.Logger
	telemetry    *mopentelemetry.Telemetry
}

// NewAccountCleanup wires the job's dependencies.
func NewAccountCleanup(accounts account.Repository, transactions account.TransactionRepository, logger mlog.Logger, telemetry *mopentelemetry.Telemetry) *AccountCleanup {
	return &AccountCleanup{
		accounts:     accounts,
		transactions: transactions,
		logger:       logger,
		telemetry:    telemetry,
	}
}

// CleanupReport summarizes both sweeps.
type CleanupReport struct {
	StatusTransitions int
	StaleTransactions int
	Duration          time.Duration
}

// Run executes the dormancy sweep followed by the transaction-age report,
// using asOf as the reference instant so the thresholds are testable
// without wall-clock dependence.
func (j *AccountCleanup) Run(ctx context.Context, asOf time.Time) (CleanupReport, error) {
	ctx, span := j.telemetry.Start(ctx, "jobs.account_cleanup")
	defer span.End()

	start := time.Now()

	transitions, err := j.sweepDormancy(ctx, asOf)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "dormancy sweep failed", err)
		return CleanupReport{}, err
	}

	stale, err := j.transactions.OlderThan(ctx, asOf.Add(-transactionArchiveCutoff))
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "stale transaction report failed", err)
		return CleanupReport{}, err
	}

	report := CleanupReport{
		StatusTransitions: transitions,
		StaleTransactions: len(stale),
		Duration:          time.Since(start),
	}

	j.logger.Infof("account cleanup as of %s: %d status transitions, %d transactions eligible for archival, took %s",
		asOf.Format("2006-01-02"), report.StatusTransitions, report.StaleTransactions, report.Duration)

	return report, nil
}

// sweepDormancy applies UpdateStatusBasedOnRules to every account that could
// plausibly transition: currently Active (candidates for Inactive) and
// currently Inactive (candidates for Archived). The rule itself gates on
// LastActivity age, so no further filtering by cutoff is needed here.
func (j *AccountCleanup) sweepDormancy(ctx context.Context, asOf time.Time) (int, error) {
	active, err := j.accounts.Active(ctx)
	if err != nil {
		return 0, err
	}

	inactive, err := j.accounts.ByStatus(ctx, account.StatusInactive)
	if err != nil {
		return 0, err
	}

	candidates := make([]*account.Account, 0, len(active)+len(inactive))
	candidates = append(candidates, active...)
	candidates = append(candidates, inactive...)

	transitions := 0

	for _, acc := range candidates {
		before := acc.Status
		acc.UpdateStatusBasedOnRules(asOf)

		if acc.Status == before {
			continue
		}

		if err := j.accounts.Update(ctx, acc); err != nil {
			j.logger.Errorf("failed to persist status transition for account %s: %v", acc.AccountNumber, err)
			continue
		}

		transitions++
	}

	return transitions, nil
}
