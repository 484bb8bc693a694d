package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/luravie/storefront/internal/catalog"
	"github.com/luravie/storefront/internal/content"
	"github.com/luravie/storefront/internal/platform/observability"
	"github.com/luravie/storefront/internal/session"
)

// snapshotWithShipping fetches the catalog and the shipping cost concurrently.
// Neither lookup fails; both degrade to their fallbacks.
func (s *Server) snapshotWithShipping(ctx context.Context) (catalog.Snapshot, decimal.Decimal) {
	var (
		snap     catalog.Snapshot
		shipping decimal.Decimal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap = s.catalog.Snapshot(gctx)
		return nil
	})
	g.Go(func() error {
		shipping = s.checkout.ShippingCost(gctx)
		return nil
	})
	_ = g.Wait()
	return snap, shipping
}

func (s *Server) favorites(r *http.Request) catalog.IDSet {
	if store, ok := session.FromContext(r.Context()); ok {
		return store.Favorites()
	}
	return catalog.IDSet{}
}

func (s *Server) handleShop(w http.ResponseWriter, r *http.Request) {
	state := parseFilterState(r.URL.Query())
	snap, shipping := s.snapshotWithShipping(r.Context())
	observability.FromContext(r.Context()).Debug("catalog snapshot",
		zap.String("origin", string(snap.Origin)),
		zap.Int("products", len(snap.Products)),
	)

	view := buildShopView(snap, state, s.favorites(r), shipping)
	title := s.bundle.T(s.lang(r), "shop.title")
	s.render(w, r, http.StatusOK, "shop", s.newPageData(r, title, "", view))
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	var (
		product  catalog.Product
		found    bool
		shipping decimal.Decimal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		product, found = s.catalog.Product(gctx, slug)
		return nil
	})
	g.Go(func() error {
		shipping = s.checkout.ShippingCost(gctx)
		return nil
	})
	_ = g.Wait()
	if !found {
		s.handleNotFound(w, r)
		return
	}

	q := r.URL.Query()
	lang := s.lang(r)
	view := buildProductView(product, q.Get("size"), q.Get("color"), s.favorites(r).Has(product.ID), shipping)
	name := product.DisplayName(lang)
	s.render(w, r, http.StatusOK, "product", s.newPageData(r, name, name, view))
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page, err := s.pages.Page(chi.URLParam(r, "slug"), s.lang(r))
	if err != nil {
		if !errors.Is(err, content.ErrNotFound) {
			observability.FromContext(r.Context()).Error("content page failed", zap.Error(err))
			s.renderError(w, r, http.StatusInternalServerError, "error.generic")
			return
		}
		s.handleNotFound(w, r)
		return
	}
	s.render(w, r, http.StatusOK, "page", s.newPageData(r, page.Title, page.Title, page))
}
