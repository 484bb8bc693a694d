package web

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/luravie/storefront/internal/platform/observability"
	"github.com/luravie/storefront/internal/platform/requestctx"
)

const localeCookieMaxAge = 365 * 24 * time.Hour

// locale negotiates the request language: ?hl= override (persisted in a
// cookie), then the cookie, then Accept-Language.
func (s *Server) locale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var lang string
		if q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("hl"))); s.bundle.IsSupported(q) {
			lang = q
			http.SetCookie(w, &http.Cookie{
				Name:     s.localeCookie,
				Value:    lang,
				Path:     "/",
				MaxAge:   int(localeCookieMaxAge.Seconds()),
				HttpOnly: true,
				Secure:   s.secureCookies,
				SameSite: http.SameSiteLaxMode,
			})
		} else if c, err := r.Cookie(s.localeCookie); err == nil && s.bundle.IsSupported(c.Value) {
			lang = c.Value
		} else {
			lang = s.bundle.Resolve(r.Header.Get("Accept-Language"))
		}

		w.Header().Add("Vary", "Accept-Language")
		w.Header().Set("Content-Language", lang)
		ctx := requestctx.WithLocale(r.Context(), lang)
		ctx = observability.WithLogger(ctx, observability.FromContext(ctx).With(zap.String("locale", lang)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) lang(r *http.Request) string {
	if lang := requestctx.Locale(r.Context()); lang != "" {
		return lang
	}
	return s.bundle.Fallback()
}
