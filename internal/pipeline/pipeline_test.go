package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank-platform/core/internal/domain/event"
)

type testCmd struct {
	Name string `validate:"required"`
}

type testResult struct {
	Echo string
}

func TestComposeRunsMiddlewareOutermostFirst(t *testing.T) {
	var order []string

	mw := func(tag string) Middleware[testCmd, testResult] {
		return func(next Handler[testCmd, testResult]) Handler[testCmd, testResult] {
			return func(ctx context.Context, cmd testCmd) (testResult, []event.Event, error) {
				order = append(order, tag+":before")
				res, evts, err := next(ctx, cmd)
				order = append(order, tag+":after")

				return res, evts, err
			}
		}
	}

	base := func(ctx context.Context, cmd testCmd) (testResult, []event.Event, error) {
		order = append(order, "handler")
		return testResult{Echo: cmd.Name}, nil, nil
	}

	h := Compose(base, mw("outer"), mw("inner"))
	result, _, err := h(context.Background(), testCmd{Name: "x"})

	require.NoError(t, err)
	assert.Equal(t, "x", result.Echo)
	assert.Equal(t, []string{"outer:before", "inner:before", "handler", "inner:after", "outer:after"}, order)
}

func TestExecuteDiscardsCommittedEvents(t *testing.T) {
	base := func(ctx context.Context, cmd testCmd) (testResult, []event.Event, error) {
		return testResult{Echo: cmd.Name}, []event.Event{}, nil
	}

	result, err := Execute(context.Background(), testCmd{Name: "ok"}, base)
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Echo)
}
