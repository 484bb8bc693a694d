package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/luravie/storefront/internal/catalog"
	"github.com/luravie/storefront/internal/format"
	"github.com/luravie/storefront/internal/i18n"
	"github.com/luravie/storefront/internal/nav"
	"github.com/luravie/storefront/internal/platform/httpx"
	"github.com/luravie/storefront/internal/platform/observability"
	"github.com/luravie/storefront/internal/session"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var pageTemplates = []string{"shop", "product", "page", "error"}

// renderer holds one template set per page, each cloned from the layout.
type renderer struct {
	pages map[string]*template.Template
}

func newRenderer(bundle *i18n.Bundle) (*renderer, error) {
	funcs := template.FuncMap{
		"t":     bundle.T,
		"dir":   i18n.Dir,
		"price": format.Price,
		"money": func(amount decimal.Decimal, lang string) string {
			return format.Currency(amount, lang)
		},
		"name": func(p catalog.Product, lang string) string {
			return p.DisplayName(lang)
		},
		// Descriptions are sanitized when the catalog is normalized.
		"description": func(p catalog.Product, lang string) template.HTML {
			return template.HTML(p.DisplayDescription(lang))
		},
		"categoryKey": func(c catalog.Category) string {
			return "category." + string(c)
		},
		"sortKey": func(k catalog.SortKey) string {
			return "sort." + k.Param()
		},
	}

	base, err := template.New("layout").Funcs(funcs).ParseFS(templatesFS, "templates/layout.tmpl")
	if err != nil {
		return nil, fmt.Errorf("web: parse layout: %w", err)
	}
	r := &renderer{pages: make(map[string]*template.Template, len(pageTemplates))}
	for _, name := range pageTemplates {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("web: clone layout: %w", err)
		}
		if _, err := clone.ParseFS(templatesFS, "templates/"+name+".tmpl"); err != nil {
			return nil, fmt.Errorf("web: parse %s: %w", name, err)
		}
		r.pages[name] = clone
	}
	return r, nil
}

// pageData is the layout view model shared by every HTML page.
type pageData struct {
	Lang      string
	Dir       string
	Title     string
	Path      string
	Nav       []nav.RenderedItem
	Footer    []nav.RenderedItem
	Crumbs    []nav.Crumb
	CartCount int
	AltLang   string
	AltHref   string
	Body      any
}

func (s *Server) newPageData(r *http.Request, title, leaf string, body any) pageData {
	lang := s.lang(r)
	data := pageData{
		Lang:   lang,
		Dir:    i18n.Dir(lang),
		Title:  title,
		Path:   r.URL.Path,
		Nav:    nav.Build(nav.Main, r.URL.Path),
		Footer: nav.Build(nav.Footer, r.URL.Path),
		Crumbs: nav.Breadcrumbs(r.URL.Path, leaf),
		Body:   body,
	}
	if store, ok := session.FromContext(r.Context()); ok {
		data.CartCount = store.Cart().Count()
	}
	for _, l := range s.bundle.Supported() {
		if l != lang {
			data.AltLang = l
			break
		}
	}
	if data.AltLang != "" {
		q := r.URL.Query()
		q.Set("hl", data.AltLang)
		data.AltHref = (&url.URL{Path: r.URL.Path, RawQuery: q.Encode()}).String()
	}
	return data
}

// render executes page into a buffer so template failures never leave a half-written response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data pageData) {
	tmpl, ok := s.views.pages[page]
	if !ok {
		observability.FromContext(r.Context()).Error("unknown template", zap.String("template", page))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		observability.FromContext(r.Context()).Error("template exec failed", zap.String("template", page), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type errorView struct {
	Status    int
	Message   string
	RequestID string
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, messageKey string) {
	lang := s.lang(r)
	msg := s.bundle.T(lang, messageKey)
	view := errorView{Status: status, Message: msg, RequestID: middleware.GetReqID(r.Context())}
	s.render(w, r, status, "error", s.newPageData(r, msg, "", view))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusNotFound, "error.not_found")
}

// renderPanic is the recovery fallback: a JSON envelope for /api, the error page otherwise.
func (s *Server) renderPanic(w http.ResponseWriter, r *http.Request) {
	if isAPI(r) {
		httpx.WriteError(r.Context(), w, httpx.NewError("internal_server_error", s.bundle.T(s.lang(r), "error.generic"), http.StatusInternalServerError))
		return
	}
	s.renderError(w, r, http.StatusInternalServerError, "error.generic")
}
