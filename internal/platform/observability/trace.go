package observability

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/luravie/storefront/internal/platform/requestctx"
)

const traceHeader = "X-Trace-Id"

var tracer = otel.Tracer("github.com/luravie/storefront/internal/platform/observability")

// TraceMiddleware opens a server span per request. The span is renamed to the
// matched route once routing is done and closed with the response status.
// Sampled trace ids are echoed in the X-Trace-Id header.
func TraceMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracer.Start(r.Context(), "storefront "+r.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(requestAttributes(r)...),
			)
			defer span.End()

			sc := span.SpanContext()
			info := requestctx.TraceInfo{Sampled: sc.IsSampled()}
			if sc.HasTraceID() {
				info.TraceID = sc.TraceID().String()
				if info.Sampled {
					w.Header().Set(traceHeader, info.TraceID)
				}
			}
			if sc.HasSpanID() {
				info.SpanID = sc.SpanID().String()
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			r = r.WithContext(requestctx.WithTrace(ctx, info))
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			span.SetName(r.Method + " " + route)
			span.SetAttributes(
				attribute.String("http.route", route),
				attribute.Int("http.response.status_code", status),
			)
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
		})
	}
}

func requestAttributes(r *http.Request) []attribute.KeyValue {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", clean(r.Method, 10)),
		attribute.String("url.scheme", scheme),
		attribute.String("url.path", clean(r.URL.Path, 180)),
	}
	if ua := r.UserAgent(); ua != "" {
		attrs = append(attrs, attribute.String("user_agent.original", clean(ua, 200)))
	}
	if lang := r.Header.Get("Accept-Language"); lang != "" {
		attrs = append(attrs, attribute.String("http.request.header.accept_language", clean(lang, 64)))
	}
	return attrs
}
