// Package requestctx carries per-request values (logger, trace ids, locale,
// session id) between middleware and handlers.
package requestctx

import (
	"context"

	"go.uber.org/zap"
)

type key[T any] struct{ name string }

var (
	loggerKey  = key[*zap.Logger]{"logger"}
	traceKey   = key[TraceInfo]{"trace"}
	localeKey  = key[string]{"locale"}
	sessionKey = key[string]{"session"}
)

var noopLogger = zap.NewNop()

func with[T any](ctx context.Context, k key[T], v T) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, k, v)
}

func get[T any](ctx context.Context, k key[T]) (T, bool) {
	var zero T
	if ctx == nil {
		return zero, false
	}
	v, ok := ctx.Value(k).(T)
	return v, ok
}

// TraceInfo identifies the server span of a request.
type TraceInfo struct {
	TraceID string
	SpanID  string
	Sampled bool
}

// WithLogger stores logger on ctx. A nil logger stores the no-op logger.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if logger == nil {
		logger = noopLogger
	}
	return with(ctx, loggerKey, logger)
}

// Logger returns the request logger, or the no-op logger.
func Logger(ctx context.Context) *zap.Logger {
	if logger, ok := get(ctx, loggerKey); ok && logger != nil {
		return logger
	}
	return noopLogger
}

// NoopLogger is the logger Logger falls back to.
func NoopLogger() *zap.Logger { return noopLogger }

func WithTrace(ctx context.Context, info TraceInfo) context.Context {
	return with(ctx, traceKey, info)
}

func Trace(ctx context.Context) (TraceInfo, bool) {
	return get(ctx, traceKey)
}

// TraceID returns the trace id of the request, or "".
func TraceID(ctx context.Context) string {
	info, _ := Trace(ctx)
	return info.TraceID
}

// WithLocale records the negotiated locale for the request.
func WithLocale(ctx context.Context, lang string) context.Context {
	return with(ctx, localeKey, lang)
}

// Locale returns the negotiated locale, or "" before negotiation.
func Locale(ctx context.Context) string {
	lang, _ := get(ctx, localeKey)
	return lang
}

// WithSessionID records the browser session the request belongs to.
func WithSessionID(ctx context.Context, id string) context.Context {
	return with(ctx, sessionKey, id)
}

func SessionID(ctx context.Context) string {
	id, _ := get(ctx, sessionKey)
	return id
}
