package observability

import (
	"context"

	"go.uber.org/zap"

	"github.com/luravie/storefront/internal/platform/requestctx"
)

// Reporter receives errors that are handled locally but should still be tracked.
type Reporter interface {
	Report(ctx context.Context, err error, fields ...zap.Field)
}

// LogReporter reports through the request logger, falling back to a base logger.
type LogReporter struct {
	base *zap.Logger
}

// NewLogReporter returns a Reporter backed by zap.
func NewLogReporter(base *zap.Logger) LogReporter {
	if base == nil {
		base = zap.NewNop()
	}
	return LogReporter{base: base}
}

// Report logs err at error level tagged as a report.
func (r LogReporter) Report(ctx context.Context, err error, fields ...zap.Field) {
	if err == nil {
		return
	}
	logger := requestctx.Logger(ctx)
	if logger == requestctx.NoopLogger() {
		logger = r.base
	}
	logger.Error("handled error reported", append([]zap.Field{zap.Bool("report", true), zap.Error(err)}, fields...)...)
}

// NopReporter drops every report.
type NopReporter struct{}

// Report implements Reporter.
func (NopReporter) Report(context.Context, error, ...zap.Field) {}
