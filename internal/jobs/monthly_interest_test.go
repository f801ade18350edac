package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank-platform/core/internal/domain/account"
	"github.com/corebank-platform/core/internal/jobs"
	"github.com/corebank-platform/core/platform/mlog"
	"github.com/corebank-platform/core/platform/mopentelemetry"
	"github.com/corebank-platform/core/pkg/money"
)

func TestMonthlyInterestCalculationCreditsSavingsAccount(t *testing.T) {
	savings, err := account.Create(uuid.New(), "1234567890", account.TypeSavings, money.Zero("NGN"))
	require.NoError(t, err)
	savings.ClearPendingEvents()
	savings.Balance, _ = money.New(decimal.NewFromInt(12000), "NGN")
	savings.SetInterestBearing(true)

	accounts := newFakeAccountRepo(savings)
	txns := newFakeTransactionRepo()
	txns.avgDaily[savings.ID] = 12000

	job := jobs.NewMonthlyInterestCalculation(accounts, txns, &mlog.GoLogger{}, &mopentelemetry.Telemetry{ServiceName: "test"})

	calcDate := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC) // 31-day month
	result, err := job.Run(context.Background(), calcDate)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, result.Failed)
	require.Len(t, txns.added, 1)
	assert.Equal(t, account.TxnInterestCredit, txns.added[0].Type)

	// 12000 * 0.015 * 31 / 365 ~= 15.29
	assert.True(t, txns.added[0].Amount.Amount.GreaterThan(decimal.NewFromInt(15)))
	assert.True(t, txns.added[0].Amount.Amount.LessThan(decimal.NewFromInt(16)))
	assert.True(t, savings.Balance.Amount.GreaterThan(decimal.NewFromInt(12015)))
}

func TestMonthlyInterestCalculationSkipsNonInterestBearingAccounts(t *testing.T) {
	checking, err := account.Create(uuid.New(), "1234567890", account.TypeChecking, money.Zero("NGN"))
	require.NoError(t, err)
	checking.ClearPendingEvents()

	accounts := newFakeAccountRepo() // InterestBearing() filter excludes checking since flag unset
	txns := newFakeTransactionRepo()

	job := jobs.NewMonthlyInterestCalculation(accounts, txns, &mlog.GoLogger{}, &mopentelemetry.Telemetry{ServiceName: "test"})

	result, err := job.Run(context.Background(), time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
	assert.Empty(t, txns.added)
	_ = checking
}

func TestMonthlyInterestCalculationSkipsZeroPrincipal(t *testing.T) {
	savings, err := account.Create(uuid.New(), "1234567890", account.TypeSavings, money.Zero("NGN"))
	require.NoError(t, err)
	savings.ClearPendingEvents()
	savings.SetInterestBearing(true)

	accounts := newFakeAccountRepo(savings)
	txns := newFakeTransactionRepo() // AverageDailyBalance defaults to 0

	job := jobs.NewMonthlyInterestCalculation(accounts, txns, &mlog.GoLogger{}, &mopentelemetry.Telemetry{ServiceName: "test"})

	result, err := job.Run(context.Background(), time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Empty(t, txns.added)
}
