// Package mzap adapts go.uber.org/zap to the platform/mlog.Logger interface,
// mirroring the teacher's common/mzap package.
package mzap

import (
	"github.com/corebank-platform/core/platform/mlog"
	"go.uber.org/zap"
)

// Logger wraps a zap.SugaredLogger as a platform/mlog.Logger.
type Logger struct {
	sugar *zap.SugaredLogger
}

// New builds a production zap logger wrapped as a mlog.Logger.
func New() (*Logger, error) {
	z, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	return &Logger{sugar: z.Sugar()}, nil
}

func (l *Logger) Info(args ...any)                  { l.sugar.Info(args...) }
func (l *Logger) Infof(format string, args ...any)  { l.sugar.Infof(format, args...) }
func (l *Logger) Error(args ...any)                 { l.sugar.Error(args...) }
func (l *Logger) Errorf(format string, args ...any) { l.sugar.Errorf(format, args...) }
func (l *Logger) Warn(args ...any)                  { l.sugar.Warn(args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.sugar.Warnf(format, args...) }
func (l *Logger) Debug(args ...any)                 { l.sugar.Debug(args...) }
func (l *Logger) Debugf(format string, args ...any) { l.sugar.Debugf(format, args...) }
func (l *Logger) Sync() error                       { return l.sugar.Sync() }

func (l *Logger) WithFields(fields ...any) mlog.Logger {
	return &Logger{sugar: l.sugar.With(fields...)}
}
