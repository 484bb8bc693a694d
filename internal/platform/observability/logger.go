package observability

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/luravie/storefront/internal/platform/requestctx"
)

const serviceName = "luravie-storefront"

// LoggerOption adjusts NewLogger.
type LoggerOption func(*loggerSettings)

type loggerSettings struct {
	level   string
	console bool
	fields  []zap.Field
}

// WithLevel overrides LOG_LEVEL.
func WithLevel(level string) LoggerOption {
	return func(s *loggerSettings) { s.level = level }
}

// WithEnvironment tags every entry with the deployment environment. The
// local environment logs in console format.
func WithEnvironment(env string) LoggerOption {
	return func(s *loggerSettings) {
		env = strings.ToLower(strings.TrimSpace(env))
		if env == "" {
			return
		}
		s.fields = append(s.fields, zap.String("env", env))
		s.console = env == "local" && os.Getenv("LOG_FORMAT") != "json"
	}
}

// NewLogger builds the storefront logger. Entries are JSON with
// severity/message/timestamp keys and carry the service name.
func NewLogger(opts ...LoggerOption) (*zap.Logger, error) {
	settings := loggerSettings{level: os.Getenv("LOG_LEVEL")}
	for _, opt := range opts {
		opt(&settings)
	}

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if lvl := strings.TrimSpace(settings.level); lvl != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(lvl))); err != nil {
			level.SetLevel(zapcore.InfoLevel)
		}
	}

	encoding := "json"
	enc := zap.NewProductionEncoderConfig()
	enc.MessageKey = "message"
	enc.TimeKey = "timestamp"
	enc.LevelKey = "severity"
	enc.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	enc.EncodeDuration = zapcore.MillisDurationEncoder
	if settings.console {
		encoding = "console"
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	cfg := zap.Config{
		Level:             level,
		Encoding:          encoding,
		EncoderConfig:     enc,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: true,
		InitialFields:     map[string]any{"service": serviceName},
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(settings.fields...), nil
}

// WithLogger injects the logger into ctx.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return requestctx.WithLogger(ctx, logger)
}

// FromContext retrieves the request logger, defaulting to a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	return requestctx.Logger(ctx)
}
