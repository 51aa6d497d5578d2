package logger

import (
	"context"

	"go.uber.org/zap"
)

var global = zap.Must(zap.NewProduction()).Sugar()

// Init replaces the global logger. Call once from main before anything logs.
func Init(l *zap.Logger) {
	global = l.Sugar()
}

func Sync() {
	_ = global.Sync()
}

// ctx is accepted everywhere so request-scoped fields can be attached later
// without touching call sites.

func Debugf(ctx context.Context, format string, args ...interface{}) {
	global.Debugf(format, args...)
}

func Infof(ctx context.Context, format string, args ...interface{}) {
	global.Infof(format, args...)
}

func Warnf(ctx context.Context, format string, args ...interface{}) {
	global.Warnf(format, args...)
}

func Errorf(ctx context.Context, format string, args ...interface{}) {
	global.Errorf(format, args...)
}

func Error(ctx context.Context, msg string) {
	global.Error(msg)
}

func Fatal(ctx context.Context, err error) {
	if err != nil {
		global.Fatal(err)
	}
}
