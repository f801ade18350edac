package jobs

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/corebank-platform/core/internal/domain/account"
	"github.com/corebank-platform/core/pkg/money"
	"github.com/corebank-platform/core/platform/mlog"
	"github.com/corebank-platform/core/platform/mopentelemetry"
)

// daysInYear is the divisor spec.md §4.8(b) names for the simple-interest
// formula: Interest = principal × rate × days_in_window ÷ 365.
const daysInYear = 365

// savingsHighBalanceThreshold is the balance at or above which a Savings
// account earns the higher of its two tiers.
const savingsHighBalanceThreshold = 10000

var (
	savingsLowRate  = decimal.NewFromFloat(0.01)
	savingsHighRate = decimal.NewFromFloat(0.015)
	checkingRate    = decimal.NewFromFloat(0.001)
	fixedRate       = decimal.NewFromFloat(0.035)
)

// MonthlyInterestCalculation accrues interest on every interest-bearing
// active account for the calendar month containing its calculation date
// (spec.md §4.8(b)). Grounded on the average-daily-balance walk already
// implemented in the Postgres transaction repository and on the teacher's
// batch-collect-then-flush-once shape for its own ledger-posting routines.
type MonthlyInterestCalculation struct {
	accounts     account.Repository
	transactions account.TransactionRepository
	logger       mlog.Logger
	telemetry    *mopentelemetry.Telemetry
}

// NewMonthlyInterestCalculation wires the job's dependencies.
func NewMonthlyInterestCalculation(
	accounts account.Repository,
	transactions account.TransactionRepository,
	logger mlog.Logger,
	telemetry *mopentelemetry.Telemetry,
) *MonthlyInterestCalculation {
	return &MonthlyInterestCalculation{
		accounts:     accounts,
		transactions: transactions,
		logger:       logger,
		telemetry:    telemetry,
	}
}

// Run computes and posts interest for every interest-bearing account for the
// calendar month containing calculationDate. Per-account failures are
// logged and isolated; the batch of resulting transactions is flushed in a
// single call to AddRange once every account has been computed.
func (j *MonthlyInterestCalculation) Run(ctx context.Context, calculationDate time.Time) (Result, error) {
	ctx, span := j.telemetry.Start(ctx, "jobs.monthly_interest_calculation")
	defer span.End()

	start := time.Now()

	windowStart, windowEnd := monthWindow(calculationDate)
	days := int(windowEnd.Sub(windowStart).Hours()/24) + 1

	accounts, err := j.accounts.InterestBearing(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to list interest-bearing accounts", err)
		return Result{}, err
	}

	var processed, failed int

	var credited []*account.Transaction

	var dirty []*account.Account

	for _, acc := range accounts {
		txn, err := j.computeOne(ctx, acc, windowStart, windowEnd, days)
		if err != nil {
			failed++
			j.logger.Errorf("monthly interest calculation failed for account %s: %v", acc.AccountNumber, err)
			continue
		}

		if txn == nil {
			processed++
			continue
		}

		credited = append(credited, txn)
		dirty = append(dirty, acc)
		processed++
	}

	if len(credited) > 0 {
		if err := j.transactions.AddRange(ctx, credited); err != nil {
			mopentelemetry.HandleSpanError(&span, "failed to flush interest credit batch", err)
			return Result{}, err
		}

		for _, acc := range dirty {
			if err := j.accounts.Update(ctx, acc); err != nil {
				j.logger.Errorf("failed to persist credited balance for account %s: %v", acc.AccountNumber, err)
			}
		}
	}

	result := Result{Processed: processed, Failed: failed, Duration: time.Since(start)}

	j.logger.Infof("monthly interest calculation for %s: %d processed, %d failed, took %s",
		calculationDate.Format("2006-01"), result.Processed, result.Failed, result.Duration)

	return result, nil
}

func (j *MonthlyInterestCalculation) computeOne(ctx context.Context, acc *account.Account, windowStart, windowEnd time.Time, days int) (*account.Transaction, error) {
	rate := interestRate(acc)
	if rate.IsZero() {
		return nil, nil
	}

	principal, err := j.transactions.AverageDailyBalance(ctx, acc.ID, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	if principal <= 0 {
		return nil, nil
	}

	interest := decimal.NewFromFloat(principal).
		Mul(rate).
		Mul(decimal.NewFromInt(int64(days))).
		Div(decimal.NewFromInt(daysInYear)).
		Round(2)

	if interest.IsZero() || interest.IsNegative() {
		return nil, nil
	}

	amount, err := money.New(interest, acc.Balance.Currency)
	if err != nil {
		return nil, err
	}

	return acc.CreditInterest(amount, windowEnd, "Monthly interest credit")
}

// interestRate applies the rate table spec.md §4.8(b) defines: Savings tiers
// at 1.5%/1.0% split by the $10,000 balance threshold, Checking at 0.1%,
// FixedDeposit at 3.5%, everything else accrues no interest.
func interestRate(acc *account.Account) decimal.Decimal {
	switch acc.Type {
	case account.TypeSavings:
		if acc.Balance.Amount.GreaterThanOrEqual(decimal.NewFromInt(savingsHighBalanceThreshold)) {
			return savingsHighRate
		}

		return savingsLowRate
	case account.TypeChecking:
		return checkingRate
	case account.TypeFixedDeposit:
		return fixedRate
	default:
		return decimal.Zero
	}
}

// monthWindow returns the first and last instants of the calendar month
// containing t, in UTC.
func monthWindow(t time.Time) (start, end time.Time) {
	t = t.UTC()
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, 0).Add(-time.Nanosecond)

	return start, end
}
