package pipeline

import (
	"context"
	"reflect"
	"time"

	"github.com/corebank-platform/core/internal/domain/event"
	"github.com/corebank-platform/core/platform/mlog"
)

// Logging records the request type and its outcome; it never alters the
// result or short-circuits the chain (spec.md §4.4 stage 1).
func Logging[TCmd any, TResult any](logger mlog.Logger) Middleware[TCmd, TResult] {
	return func(next Handler[TCmd, TResult]) Handler[TCmd, TResult] {
		return func(ctx context.Context, cmd TCmd) (TResult, []event.Event, error) {
			name := commandName(cmd)
			start := time.Now()

			logger.Infof("executing %s", name)

			result, evts, err := next(ctx, cmd)

			elapsed := time.Since(start)

			if err != nil {
				logger.Errorf("%s failed after %s: %v", name, elapsed, err)
			} else {
				logger.Infof("%s succeeded in %s", name, elapsed)
			}

			return result, evts, err
		}
	}
}

func commandName(cmd any) string {
	t := reflect.TypeOf(cmd)
	if t == nil {
		return "<nil>"
	}

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	return t.Name()
}
