package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/luravie/storefront/internal/cart"
	"github.com/luravie/storefront/internal/catalog"
	"github.com/luravie/storefront/internal/checkout"
	"github.com/luravie/storefront/internal/commerce"
	"github.com/luravie/storefront/internal/platform/httpx"
	"github.com/luravie/storefront/internal/platform/observability"
	"github.com/luravie/storefront/internal/session"
)

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, code, messageKey string) {
	httpx.WriteError(r.Context(), w, httpx.NewError(code, s.bundle.T(s.lang(r), messageKey), status))
}

func (s *Server) apiNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, http.StatusNotFound, "not_found", "error.not_found")
}

func (s *Server) apiMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httpx.WriteError(r.Context(), w, httpx.NewError("method_not_allowed", "method not allowed", http.StatusMethodNotAllowed))
}

// store returns the request's session store. The session middleware always attaches one.
func (s *Server) store(r *http.Request) *session.Store {
	if store, ok := session.FromContext(r.Context()); ok {
		return store
	}
	return s.sessions.New()
}

func (s *Server) save(w http.ResponseWriter, r *http.Request, store *session.Store) {
	if err := s.sessions.Save(w, store); err != nil {
		observability.FromContext(r.Context()).Error("session save failed", zap.Error(err))
	}
}

func (s *Server) handleAPIProducts(w http.ResponseWriter, r *http.Request) {
	lang := s.lang(r)
	state := parseFilterState(r.URL.Query())
	snap := s.catalog.Snapshot(r.Context())
	favorites := s.favorites(r)

	filtered := catalog.Filter(snap.Products, state, favorites)
	products := make([]productPayload, 0, len(filtered))
	for _, p := range filtered {
		products = append(products, newProductPayload(p, lang, favorites))
	}
	httpx.WriteJSON(w, http.StatusOK, productListPayload{
		Products: products,
		Count:    len(products),
		Total:    len(snap.Products),
		Origin:   snap.Origin,
		Filter: filterPayload{
			Category: string(state.ActiveCategory),
			Sizes:    state.SelectedSizes,
			Colors:   state.SelectedColors,
			Query:    state.SearchQuery,
			Sort:     state.SortBy.Param(),
		},
		Facets: facetsPayload{
			Sizes:  catalog.AvailableSizes(snap.Products),
			Colors: catalog.AvailableColors(snap.Products),
		},
	})
}

func (s *Server) handleAPIProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := s.catalog.Product(r.Context(), chi.URLParam(r, "slug"))
	if !ok {
		s.apiNotFound(w, r)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newProductPayload(p, s.lang(r), s.favorites(r)))
}

func (s *Server) handleAPIAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snap := s.catalog.Snapshot(ctx)
	p, ok := catalog.FindByID(snap.Products, chi.URLParam(r, "id"))
	if !ok {
		s.apiNotFound(w, r)
		return
	}
	variations := s.catalog.Variations(ctx, snap, p.ID)[p.ID]

	q := r.URL.Query()
	size := strings.TrimSpace(q.Get("size"))
	color := strings.TrimSpace(q.Get("color"))
	out := availabilityPayload{
		ProductID: p.ID,
		Size:      size,
		Color:     color,
		Price:     p.Price,
		Sizes:     make(map[string]bool, len(p.Sizes)),
		Colors:    make(map[string]bool, len(p.Colors)),
	}
	for _, sz := range p.Sizes {
		out.Sizes[sz] = catalog.IsSizeOutOfStock(variations, sz)
	}
	for _, c := range p.Colors {
		out.Colors[c.Name] = catalog.IsColorOutOfStock(variations, c.Name)
	}
	if size != "" {
		out.SizeOutOfStock = catalog.IsSizeOutOfStock(variations, size)
	}
	if color != "" {
		out.ColorOutOfStock = catalog.IsColorOutOfStock(variations, color)
	}
	out.CombinationOutOfStock = p.OutOfStock
	if size != "" || color != "" {
		out.CombinationOutOfStock = out.CombinationOutOfStock || catalog.IsCombinationOutOfStock(variations, size, color)
		if v, found := catalog.FindVariation(variations, size, color); found {
			out.VariationID = v.ID
			out.Price = catalog.ResolvePrice(p, &v)
		}
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// selectionOutOfStock consults the variations only once the shopper picked an option.
func (s *Server) selectionOutOfStock(ctx context.Context, snap catalog.Snapshot, p catalog.Product, size, color string) bool {
	if size == "" && color == "" {
		return false
	}
	variations := s.catalog.Variations(ctx, snap, p.ID)[p.ID]
	return catalog.IsCombinationOutOfStock(variations, size, color)
}

// priceCart resolves the cart against the catalog, the variations of the
// products it holds and the shipping cost.
func (s *Server) priceCart(ctx context.Context, c cart.Cart) cart.Totals {
	snap, shipping := s.snapshotWithShipping(ctx)
	var variations map[string][]catalog.ProductVariation
	if !c.Empty() {
		variations = s.catalog.Variations(ctx, snap, c.ProductIDs()...)
	}
	return cart.Price(c, snap.Products, variations, shipping)
}

func (s *Server) handleAPICart(w http.ResponseWriter, r *http.Request) {
	totals := s.priceCart(r.Context(), s.store(r).Cart())
	httpx.WriteJSON(w, http.StatusOK, newCartPayload(totals, s.lang(r)))
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"qty"`
}

type updateItemRequest struct {
	Quantity *int `json:"qty"`
}

func (s *Server) handleAPIAddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req addItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be a JSON cart item", http.StatusBadRequest))
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	req.Size = strings.TrimSpace(req.Size)
	req.Color = strings.TrimSpace(req.Color)

	snap := s.catalog.Snapshot(ctx)
	p, ok := catalog.FindByID(snap.Products, strings.TrimSpace(req.ProductID))
	if !ok {
		s.apiNotFound(w, r)
		return
	}
	if req.Size != "" && !p.HasSize(req.Size) {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_size", "size is not offered for this product", http.StatusUnprocessableEntity))
		return
	}
	if req.Color != "" && !p.HasColor(req.Color) {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_color", "color is not offered for this product", http.StatusUnprocessableEntity))
		return
	}
	if p.OutOfStock || s.selectionOutOfStock(ctx, snap, p, req.Size, req.Color) {
		s.writeError(w, r, http.StatusConflict, "out_of_stock", "product.out_of_stock")
		return
	}

	store := s.store(r)
	err := store.UpdateCart(func(c *cart.Cart) error {
		_, err := c.Add(p.ID, req.Size, req.Color, req.Quantity)
		return err
	})
	if err != nil {
		s.writeCartError(w, r, err)
		return
	}
	s.save(w, r, store)
	httpx.WriteJSON(w, http.StatusCreated, newCartPayload(s.priceCart(ctx, store.Cart()), s.lang(r)))
}

func (s *Server) handleAPIUpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req updateItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.Quantity == nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must carry qty", http.StatusBadRequest))
		return
	}
	lineID := chi.URLParam(r, "lineID")
	store := s.store(r)
	if err := store.UpdateCart(func(c *cart.Cart) error {
		return c.SetQuantity(lineID, *req.Quantity)
	}); err != nil {
		s.writeCartError(w, r, err)
		return
	}
	s.save(w, r, store)
	httpx.WriteJSON(w, http.StatusOK, newCartPayload(s.priceCart(ctx, store.Cart()), s.lang(r)))
}

func (s *Server) handleAPIRemoveItem(w http.ResponseWriter, r *http.Request) {
	lineID := chi.URLParam(r, "lineID")
	store := s.store(r)
	if err := store.UpdateCart(func(c *cart.Cart) error {
		return c.Remove(lineID)
	}); err != nil {
		s.writeCartError(w, r, err)
		return
	}
	s.save(w, r, store)
	httpx.WriteJSON(w, http.StatusOK, newCartPayload(s.priceCart(r.Context(), store.Cart()), s.lang(r)))
}

func (s *Server) writeCartError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, cart.ErrLineNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("line_not_found", "cart line not found", http.StatusNotFound))
	case errors.Is(err, cart.ErrInvalidQuantity):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_quantity", err.Error(), http.StatusUnprocessableEntity))
	case errors.Is(err, cart.ErrTooManyLines), errors.Is(err, cart.ErrMissingProduct):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_cart", err.Error(), http.StatusUnprocessableEntity))
	default:
		observability.FromContext(ctx).Error("cart update failed", zap.Error(err))
		s.writeError(w, r, http.StatusInternalServerError, "internal_server_error", "error.generic")
	}
}

type favoritePayload struct {
	ProductID string   `json:"productId"`
	Favorite  bool     `json:"favorite"`
	Favorites []string `json:"favorites"`
}

func (s *Server) handleAPIToggleFavorite(w http.ResponseWriter, r *http.Request) {
	snap := s.catalog.Snapshot(r.Context())
	p, ok := catalog.FindByID(snap.Products, chi.URLParam(r, "productID"))
	if !ok {
		s.apiNotFound(w, r)
		return
	}
	store := s.store(r)
	favorite := store.ToggleFavorite(p.ID)
	s.save(w, r, store)
	httpx.WriteJSON(w, http.StatusOK, favoritePayload{
		ProductID: p.ID,
		Favorite:  favorite,
		Favorites: store.FavoriteIDs(),
	})
}

type checkoutPayload struct {
	Order checkout.Receipt `json:"order"`
	Cart  cartPayload      `json:"cart"`
}

func (s *Server) handleAPICheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var form checkout.Form
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be a JSON checkout form", http.StatusBadRequest))
		return
	}

	lang := s.lang(r)
	store := s.store(r)
	totals := s.priceCart(ctx, store.Cart())
	receipt, err := s.checkout.Submit(ctx, form, totals, lang)
	if err != nil {
		s.writeCheckoutError(w, r, err)
		return
	}

	store.ClearCart()
	s.save(w, r, store)
	httpx.WriteJSON(w, http.StatusCreated, checkoutPayload{
		Order: receipt,
		Cart:  newCartPayload(cart.Totals{}, lang),
	})
}

func (s *Server) writeCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	msg := func(key string) string { return s.bundle.T(s.lang(r), key) }

	var (
		validation *checkout.ValidationError
		apiErr     *commerce.APIError
	)
	switch {
	case errors.As(err, &validation):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_order", msg("checkout.invalid"), http.StatusUnprocessableEntity).
			WithDetails(map[string]any{"fields": validation.Fields}))
	case errors.Is(err, checkout.ErrEmptyCart):
		httpx.WriteError(ctx, w, httpx.NewError("empty_cart", msg("checkout.empty_cart"), http.StatusUnprocessableEntity))
	case errors.Is(err, checkout.ErrOutOfStock):
		httpx.WriteError(ctx, w, httpx.NewError("out_of_stock", err.Error(), http.StatusConflict))
	case errors.Is(err, checkout.ErrInvalidOrder):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_order", err.Error(), http.StatusUnprocessableEntity))
	case errors.Is(err, commerce.ErrNotConfigured):
		httpx.WriteError(ctx, w, httpx.NewError("checkout_unavailable", msg("checkout.failed"), http.StatusServiceUnavailable))
	case errors.As(err, &apiErr):
		httpx.WriteError(ctx, w, httpx.NewError("upstream_rejected", apiErr.Message, http.StatusBadGateway).
			WithDetails(map[string]any{"upstream_status": apiErr.Status, "upstream_code": apiErr.Code}))
	default:
		observability.FromContext(ctx).Error("checkout failed", zap.Error(err))
		httpx.WriteError(ctx, w, httpx.NewError("upstream_unavailable", msg("checkout.failed"), http.StatusBadGateway))
	}
}
