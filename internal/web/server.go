package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/luravie/storefront/internal/catalog"
	"github.com/luravie/storefront/internal/checkout"
	"github.com/luravie/storefront/internal/content"
	"github.com/luravie/storefront/internal/i18n"
	"github.com/luravie/storefront/internal/platform/observability"
	"github.com/luravie/storefront/internal/session"
)

const (
	defaultLocaleCookie   = "luravie_hl"
	defaultRequestTimeout = 30 * time.Second
)

// Deps wires the storefront's collaborators.
type Deps struct {
	Logger         *zap.Logger
	Catalog        *catalog.Service
	Checkout       *checkout.Service
	Sessions       *session.Manager
	Bundle         *i18n.Bundle
	Pages          *content.Library
	LocaleCookie   string
	SecureCookies  bool
	RequestTimeout time.Duration
}

// Server holds the handlers of the storefront.
type Server struct {
	logger        *zap.Logger
	catalog       *catalog.Service
	checkout      *checkout.Service
	sessions      *session.Manager
	bundle        *i18n.Bundle
	pages         *content.Library
	views         *renderer
	assets        *staticAssets
	localeCookie  string
	secureCookies bool
}

// NewServer validates deps and parses the templates.
func NewServer(deps Deps) (*Server, error) {
	switch {
	case deps.Catalog == nil:
		return nil, errors.New("web: catalog service is required")
	case deps.Checkout == nil:
		return nil, errors.New("web: checkout service is required")
	case deps.Sessions == nil:
		return nil, errors.New("web: session manager is required")
	case deps.Bundle == nil:
		return nil, errors.New("web: i18n bundle is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	pages := deps.Pages
	if pages == nil {
		pages = content.NewLibrary(deps.Bundle.Fallback())
	}
	views, err := newRenderer(deps.Bundle)
	if err != nil {
		return nil, err
	}
	assets, err := newStaticAssets()
	if err != nil {
		return nil, err
	}
	cookie := strings.TrimSpace(deps.LocaleCookie)
	if cookie == "" {
		cookie = defaultLocaleCookie
	}
	return &Server{
		logger:        logger,
		catalog:       deps.Catalog,
		checkout:      deps.Checkout,
		sessions:      deps.Sessions,
		bundle:        deps.Bundle,
		pages:         pages,
		views:         views,
		assets:        assets,
		localeCookie:  cookie,
		secureCookies: deps.SecureCookies,
	}, nil
}

// NewRouter builds the HTTP handler for the storefront.
func NewRouter(deps Deps) (http.Handler, error) {
	s, err := NewServer(deps)
	if err != nil {
		return nil, err
	}
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return s.Routes(timeout), nil
}

// Routes mounts the middleware chain, the HTML site and the JSON API.
func (s *Server) Routes(timeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// RealIP trusts X-Forwarded-For; deploy behind a proxy that sets it.
	r.Use(chimw.RealIP)
	r.Use(observability.InjectLoggerMiddleware(s.logger))
	r.Use(observability.TraceMiddleware())
	r.Use(observability.RequestLoggerMiddleware())
	r.Use(s.recoverWith)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(timeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/static/*", http.StripPrefix("/static", s.assets))

	r.Group(func(r chi.Router) {
		r.Use(session.Middleware(s.sessions))
		r.Use(s.locale)

		r.Get("/", s.handleShop)
		r.Get("/shop", s.handleShop)
		r.Get("/products/{slug}", s.handleProduct)
		r.Get("/pages/{slug}", s.handlePage)

		r.Route("/api", func(r chi.Router) {
			r.Get("/products", s.handleAPIProducts)
			r.Get("/products/{slug}", s.handleAPIProduct)
			r.Get("/products/{id}/availability", s.handleAPIAvailability)
			r.Get("/cart", s.handleAPICart)
			r.Post("/cart/items", s.handleAPIAddItem)
			r.Patch("/cart/items/{lineID}", s.handleAPIUpdateItem)
			r.Delete("/cart/items/{lineID}", s.handleAPIRemoveItem)
			r.Post("/favorites/{productID}", s.handleAPIToggleFavorite)
			r.Post("/checkout", s.handleAPICheckout)
			r.NotFound(s.apiNotFound)
			r.MethodNotAllowed(s.apiMethodNotAllowed)
		})

		r.NotFound(s.handleNotFound)
	})
	return r
}

func (s *Server) recoverWith(next http.Handler) http.Handler {
	return observability.RecoveryMiddleware(s.logger, s.renderPanic)(next)
}

func isAPI(r *http.Request) bool {
	return r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/")
}
