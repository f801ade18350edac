package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank-platform/core/internal/domain/account"
	"github.com/corebank-platform/core/internal/jobs"
	"github.com/corebank-platform/core/platform/mlog"
	"github.com/corebank-platform/core/platform/mopentelemetry"
	"github.com/corebank-platform/core/pkg/money"
)

func newZeroBalanceAccount(t *testing.T, customerID uuid.UUID) *account.Account {
	t.Helper()

	a, err := account.Create(customerID, "1234567890", account.TypeChecking, money.Zero("NGN"))
	require.NoError(t, err)
	a.ClearPendingEvents()

	return a
}

func TestAccountCleanupTransitionsDormantAccounts(t *testing.T) {
	now := time.Now().UTC()

	dormant := newZeroBalanceAccount(t, uuid.New())
	dormant.LastActivity = now.Add(-400 * 24 * time.Hour)

	fresh := newZeroBalanceAccount(t, uuid.New())
	fresh.LastActivity = now

	accounts := newFakeAccountRepo(dormant, fresh)
	txns := newFakeTransactionRepo()

	job := jobs.NewAccountCleanup(accounts, txns, &mlog.GoLogger{}, &mopentelemetry.Telemetry{ServiceName: "test"})

	report, err := job.Run(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 1, report.StatusTransitions)
	assert.Equal(t, account.StatusInactive, dormant.Status)
	assert.Equal(t, account.StatusActive, fresh.Status)
	assert.Equal(t, 1, accounts.updated[dormant.ID])
}

func TestAccountCleanupReportsStaleTransactions(t *testing.T) {
	accounts := newFakeAccountRepo()
	txns := newFakeTransactionRepo()
	txns.olderThan = []*account.Transaction{{}, {}, {}}

	job := jobs.NewAccountCleanup(accounts, txns, &mlog.GoLogger{}, &mopentelemetry.Telemetry{ServiceName: "test"})

	report, err := job.Run(context.Background(), time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 3, report.StaleTransactions)
}
