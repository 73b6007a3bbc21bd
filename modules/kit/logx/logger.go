package logx

import (
	"context"

	"go.uber.org/zap"
)

// Logger is the minimal logging surface services depend on: structured
// fields plus ctx propagation (trace/span ids). Deliberately small; the
// heavy lifting stays in zap.
type Logger interface {
	Info(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Debug(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	WithContext(ctx context.Context) Logger
}
