package session

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/luravie/storefront/internal/platform/observability"
	"github.com/luravie/storefront/internal/platform/requestctx"
)

type contextKey string

const storeContextKey contextKey = "luravie.session"

// Middleware loads the store at request start and attaches it to the context.
// Handlers persist changes explicitly through Manager.Save.
func Middleware(m *Manager) func(http.Handler) http.Handler {
	if m == nil {
		panic("session manager is required")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store, err := m.Load(r)
			if err != nil {
				logger := observability.FromContext(r.Context())
				if errors.Is(err, ErrMalformed) {
					logger.Warn("discarding unreadable session cookie", zap.Error(err))
				} else {
					logger.Error("session load failed", zap.Error(err))
				}
			}
			ctx := context.WithValue(r.Context(), storeContextKey, store)
			ctx = requestctx.WithSessionID(ctx, store.ID())
			ctx = observability.WithLogger(ctx, observability.FromContext(ctx).With(zap.String("session_id", store.ID())))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext retrieves the store attached to this request.
func FromContext(ctx context.Context) (*Store, bool) {
	if ctx == nil {
		return nil, false
	}
	store, ok := ctx.Value(storeContextKey).(*Store)
	return store, ok && store != nil
}
