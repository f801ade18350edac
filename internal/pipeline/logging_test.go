package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank-platform/core/internal/domain/event"
	"github.com/corebank-platform/core/platform/mlog"
)

func TestLoggingNeverAltersResult(t *testing.T) {
	base := func(ctx context.Context, cmd testCmd) (testResult, []event.Event, error) {
		return testResult{Echo: cmd.Name}, nil, nil
	}

	h := Compose(base, Logging[testCmd, testResult](&mlog.GoLogger{}))
	result, _, err := h(context.Background(), testCmd{Name: "ok"})

	require.NoError(t, err)
	assert.Equal(t, "ok", result.Echo)
}

func TestLoggingPropagatesFailure(t *testing.T) {
	wantErr := errors.New("boom")

	base := func(ctx context.Context, cmd testCmd) (testResult, []event.Event, error) {
		return testResult{}, nil, wantErr
	}

	h := Compose(base, Logging[testCmd, testResult](&mlog.GoLogger{}))
	_, _, err := h(context.Background(), testCmd{Name: "ok"})

	assert.ErrorIs(t, err, wantErr)
}

func TestCommandNameHandlesPointerAndNil(t *testing.T) {
	assert.Equal(t, "testCmd", commandName(testCmd{}))
	assert.Equal(t, "testCmd", commandName(&testCmd{}))
	assert.Equal(t, "<nil>", commandName(nil))
}
