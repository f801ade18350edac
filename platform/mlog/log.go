// Package mlog defines the logging interface used across the command
// pipeline, the relay, and the scheduler, mirroring the teacher's
// common/mlog package: a small interface with a context-carried instance so
// call sites never need a logger threaded through every signature.
package mlog

import (
	"context"
	"log"
)

// Logger is the common interface for log implementations.
type Logger interface {
	Info(args ...any)
	Infof(format string, args ...any)

	Error(args ...any)
	Errorf(format string, args ...any)

	Warn(args ...any)
	Warnf(format string, args ...any)

	Debug(args ...any)
	Debugf(format string, args ...any)

	WithFields(fields ...any) Logger

	Sync() error
}

// GoLogger is the stdlib-backed Logger implementation, used by tests and by
// any process that does not wire platform/mzap.
type GoLogger struct {
	fields []any
}

func (l *GoLogger) Info(args ...any)                  { log.Print(args...) }
func (l *GoLogger) Infof(format string, args ...any)  { log.Printf(format, args...) }
func (l *GoLogger) Error(args ...any)                 { log.Print(args...) }
func (l *GoLogger) Errorf(format string, args ...any) { log.Printf(format, args...) }
func (l *GoLogger) Warn(args ...any)                  { log.Print(args...) }
func (l *GoLogger) Warnf(format string, args ...any)  { log.Printf(format, args...) }
func (l *GoLogger) Debug(args ...any)                 { log.Print(args...) }
func (l *GoLogger) Debugf(format string, args ...any) { log.Printf(format, args...) }
func (l *GoLogger) Sync() error                       { return nil }

func (l *GoLogger) WithFields(fields ...any) Logger {
	return &GoLogger{fields: append(append([]any{}, l.fields...), fields...)}
}

// NoneLogger discards everything. Used as the context default so a missing
// logger never panics a call site.
type NoneLogger struct{}

func (l *NoneLogger) Info(args ...any)                  {}
func (l *NoneLogger) Infof(format string, args ...any)  {}
func (l *NoneLogger) Error(args ...any)                 {}
func (l *NoneLogger) Errorf(format string, args ...any) {}
func (l *NoneLogger) Warn(args ...any)                  {}
func (l *NoneLogger) Warnf(format string, args ...any)  {}
func (l *NoneLogger) Debug(args ...any)                 {}
func (l *NoneLogger) Debugf(format string, args ...any) {}
func (l *NoneLogger) Sync() error                       { return nil }
func (l *NoneLogger) WithFields(fields ...any) Logger   { return l }

type loggerContextKey string

const key = loggerContextKey("logger")

// ContextWithLogger returns a context carrying logger.
func ContextWithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, key, logger)
}

// FromContext extracts the Logger stored by ContextWithLogger, or a
// NoneLogger if none was stored.
func FromContext(ctx context.Context) Logger {
	if logger, ok := ctx.Value(key).(Logger); ok {
		return logger
	}

	return &NoneLogger{}
}
