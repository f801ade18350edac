package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOneOffDefaults(t *testing.T) {
	runAt := time.Now().Add(time.Hour)
	j := NewOneOff("SendStatement", []byte(`{}`), LaneDefault, runAt)

	assert.Equal(t, StatusEnqueued, j.Status)
	assert.Equal(t, DefaultMaxRetries, j.MaxRetries)
	assert.Nil(t, j.RecurringID)
	assert.Equal(t, runAt, j.RunAt)
}

func TestNewRecurringTemplateIsIdempotentByRecurringID(t *testing.T) {
	runAt := time.Now()
	first := NewRecurringTemplate("DailyStatementGeneration", "GenerateStatements", nil, LaneDefault, "0 2 * * *", runAt)
	second := NewRecurringTemplate("DailyStatementGeneration", "GenerateStatements", nil, LaneDefault, "0 3 * * *", runAt)

	require.NotNil(t, first.RecurringID)
	require.NotNil(t, second.RecurringID)
	assert.Equal(t, *first.RecurringID, *second.RecurringID)
	assert.NotEqual(t, *first.CronExpr, *second.CronExpr, "each template keeps the cron it was built with")
}

func TestMarkFailedRetriesThenDies(t *testing.T) {
	j := NewOneOff("x", nil, LaneDefault, time.Now())
	j.MaxRetries = 3

	next := time.Now().Add(time.Minute)

	j.MarkFailed(errors.New("boom"), next)
	assert.Equal(t, 1, j.RetryCount)
	assert.Equal(t, StatusFailedRetry, j.Status)
	assert.False(t, j.IsTerminal())

	j.MarkFailed(errors.New("boom"), next)
	assert.Equal(t, 2, j.RetryCount)
	assert.Equal(t, StatusFailedRetry, j.Status)

	j.MarkFailed(errors.New("boom"), next)
	assert.Equal(t, 3, j.RetryCount)
	assert.Equal(t, StatusFailedDead, j.Status)
	assert.True(t, j.IsTerminal())
}

func TestMarkSucceededClearsError(t *testing.T) {
	j := NewOneOff("x", nil, LaneDefault, time.Now())
	j.MarkFailed(errors.New("transient"), time.Now())
	require.NotNil(t, j.LastError)

	j.MarkSucceeded()
	assert.Equal(t, StatusSucceeded, j.Status)
	assert.Nil(t, j.LastError)
	assert.True(t, j.IsTerminal())
}

func TestRequeueResetsToEnqueued(t *testing.T) {
	j := NewOneOff("x", nil, LaneDefault, time.Now())
	j.MarkFailed(errors.New("transient"), time.Now())

	runAt := time.Now().Add(2 * time.Minute)
	j.Requeue(runAt)

	assert.Equal(t, StatusEnqueued, j.Status)
	assert.Equal(t, runAt, j.RunAt)
}
