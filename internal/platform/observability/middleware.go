package observability

import (
	"net"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/luravie/storefront/internal/platform/httpx"
	"github.com/luravie/storefront/internal/platform/requestctx"
)

// InjectLoggerMiddleware makes logger the request logger, tagged with the request id.
func InjectLoggerMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLogger := logger
			if id := middleware.GetReqID(r.Context()); id != "" {
				reqLogger = logger.With(zap.String("request_id", clean(id, 80)))
			}
			next.ServeHTTP(w, r.WithContext(requestctx.WithLogger(r.Context(), reqLogger)))
		})
	}
}

// RequestLoggerMiddleware writes one access log entry per request once the
// response is done. Static assets and health checks log at debug level.
func RequestLoggerMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			completed := false
			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				if !completed && status < http.StatusInternalServerError {
					status = http.StatusInternalServerError
				}
				logger := requestctx.Logger(r.Context())
				fields := []zap.Field{
					zap.String("method", clean(r.Method, 10)),
					zap.String("path", clean(r.URL.Path, 180)),
					zap.String("route", routePattern(r)),
					zap.Int("status", status),
					zap.Duration("latency", time.Since(start)),
					zap.Int("bytes", ww.BytesWritten()),
				}
				if ip := remoteHost(r); ip != "" {
					fields = append(fields, zap.String("remote_ip", ip))
				}
				if traceID := requestctx.TraceID(r.Context()); traceID != "" {
					fields = append(fields, zap.String("trace_id", traceID))
				}
				switch {
				case status >= http.StatusInternalServerError:
					logger.Error("request", fields...)
				case status >= http.StatusBadRequest:
					logger.Warn("request", fields...)
				case quietPath(r.URL.Path):
					logger.Debug("request", fields...)
				default:
					logger.Info("request", fields...)
				}
			}()

			next.ServeHTTP(ww, r)
			completed = true
		})
	}
}

// RecoveryMiddleware turns a handler panic into a logged error and a rendered
// fallback response. A nil render writes the JSON error envelope.
func RecoveryMiddleware(fallback *zap.Logger, render func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	if fallback == nil {
		fallback = requestctx.NoopLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger := requestctx.Logger(r.Context())
				if logger == requestctx.NoopLogger() {
					logger = fallback
				}
				logger.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("route", routePattern(r)),
					zap.StackSkip("stack", 1),
				)
				if render == nil {
					httpx.WriteError(r.Context(), w, httpx.NewError("internal_server_error", "something went wrong", http.StatusInternalServerError))
					return
				}
				render(w, r)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func quietPath(path string) bool {
	return path == "/healthz" || strings.HasPrefix(path, "/static/")
}

// routePattern is the matched chi pattern, so /products/{slug} groups every product page.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return clean(pattern, 180)
		}
	}
	return "unmatched"
}

func remoteHost(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	return clean(addr, 64)
}

// clean strips control characters and truncates to limit runes.
func clean(value string, limit int) string {
	out := make([]rune, 0, len(value))
	for _, r := range value {
		if unicode.IsControl(r) {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, r)
	}
	return string(out)
}
