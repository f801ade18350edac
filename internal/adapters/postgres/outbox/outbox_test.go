package outbox

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessageDefaults(t *testing.T) {
	m := NewMessage("AccountCreated", json.RawMessage(`{}`), time.Now().UTC())

	assert.Equal(t, StatusPending, m.Status)
	assert.Equal(t, 0, m.RetryCount)
	assert.Equal(t, DefaultMaxRetries, m.MaxRetries)
	assert.Nil(t, m.ProcessedOn)
}

func TestMarkProcessingRequiresPendingOrFailed(t *testing.T) {
	m := NewMessage("T", nil, time.Now())

	require.NoError(t, m.MarkProcessing())
	assert.Equal(t, StatusProcessing, m.Status)

	assert.Error(t, m.MarkProcessing(), "PROCESSING cannot re-enter PROCESSING")
}

func TestMarkPublishedSetsTerminalState(t *testing.T) {
	m := NewMessage("T", nil, time.Now())
	require.NoError(t, m.MarkProcessing())

	before := time.Now().UTC()
	m.MarkPublished(before)

	assert.Equal(t, StatusPublished, m.Status)
	assert.Equal(t, &before, m.ProcessedOn)
	assert.Nil(t, m.LastError)
	assert.True(t, m.Status.IsTerminal())
}

func TestMarkFailedTransitionsToDLQAtMaxRetries(t *testing.T) {
	m := NewMessage("T", nil, time.Now())
	m.MaxRetries = 3

	require.NoError(t, m.MarkProcessing())
	m.MarkFailed(errors.New("transient 1"))
	assert.Equal(t, 1, m.RetryCount)
	assert.Equal(t, StatusFailed, m.Status)

	require.NoError(t, m.MarkProcessing())
	m.MarkFailed(errors.New("transient 2"))
	assert.Equal(t, 2, m.RetryCount)
	assert.Equal(t, StatusFailed, m.Status)

	require.NoError(t, m.MarkProcessing())
	m.MarkFailed(errors.New("transient 3"))
	assert.Equal(t, 3, m.RetryCount)
	assert.Equal(t, StatusDLQ, m.Status)
	assert.True(t, m.Status.IsTerminal())
}

func TestCanTransitionToRejectsIllegalMoves(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusProcessing))
	assert.False(t, StatusPending.CanTransitionTo(StatusPublished))
	assert.False(t, StatusPublished.CanTransitionTo(StatusProcessing))
	assert.False(t, StatusDLQ.CanTransitionTo(StatusProcessing))
}

func TestSanitizeErrorMessageRedactsPII(t *testing.T) {
	in := "delivery to jane.doe@example.com failed from 10.0.0.5, call 555-123-4567"
	out := SanitizeErrorMessage(in)

	assert.NotContains(t, out, "jane.doe@example.com")
	assert.NotContains(t, out, "10.0.0.5")
	assert.NotContains(t, out, "555-123-4567")
	assert.Contains(t, out, "[REDACTED]")
}

func TestSanitizeErrorMessageTruncatesLongMessages(t *testing.T) {
	in := strings.Repeat("x", maxSanitizedLength+100)
	out := SanitizeErrorMessage(in)

	assert.True(t, strings.HasSuffix(out, "...[truncated]"))
	assert.LessOrEqual(t, len(out), maxSanitizedLength+len("...[truncated]"))
}

func TestSecureRandomFloat64IsInUnitRange(t *testing.T) {
	for i := 0; i < 20; i++ {
		f := SecureRandomFloat64()
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)
	}
}
