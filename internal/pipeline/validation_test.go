package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank-platform/core/internal/domain/event"
	"github.com/corebank-platform/core/pkg/cerr"
)

func TestValidationShortCircuitsOnFailure(t *testing.T) {
	called := false

	base := func(ctx context.Context, cmd testCmd) (testResult, []event.Event, error) {
		called = true
		return testResult{}, nil, nil
	}

	h := Compose(base, Validation[testCmd, testResult]())

	_, _, err := h(context.Background(), testCmd{Name: ""})
	require.Error(t, err)
	assert.False(t, called, "the handler must not run when validation fails")
	assert.Equal(t, cerr.KindValidation, cerr.KindOf(err))
}

func TestValidationPassesThroughOnSuccess(t *testing.T) {
	base := func(ctx context.Context, cmd testCmd) (testResult, []event.Event, error) {
		return testResult{Echo: cmd.Name}, nil, nil
	}

	h := Compose(base, Validation[testCmd, testResult]())

	result, _, err := h(context.Background(), testCmd{Name: "ok"})
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Echo)
}
