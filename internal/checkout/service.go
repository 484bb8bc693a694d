package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/luravie/storefront/internal/cart"
	"github.com/luravie/storefront/internal/commerce"
	"github.com/luravie/storefront/internal/platform/cache"
	"github.com/luravie/storefront/internal/platform/observability"
)

const (
	shippingCacheKey  = "checkout:shipping:v1"
	shippingMethodID  = "flat_rate"
	shippingTitle     = "Flat rate"
	codTitle          = "Cash on delivery"
	countryEgypt      = "EG"
	referenceMetaKey  = "_luravie_ref"
	localeMetaKey     = "_luravie_locale"
	defaultFallbackEG = 60
)

var (
	// ErrEmptyCart is returned when there is nothing to order.
	ErrEmptyCart = errors.New("checkout: cart is empty")
	// ErrOutOfStock is returned when a cart line resolves to an out-of-stock selection.
	ErrOutOfStock = errors.New("checkout: item out of stock")
)

// OrderSubmitter creates upstream orders.
type OrderSubmitter interface {
	CreateOrder(ctx context.Context, req commerce.OrderRequest) (commerce.Order, error)
}

// ShippingSource looks up the upstream flat-rate cost.
type ShippingSource interface {
	Configured() bool
	FlatRateCost(ctx context.Context) (decimal.Decimal, bool, error)
}

// Receipt summarises a placed order.
type Receipt struct {
	OrderID   int64  `json:"orderId"`
	Number    string `json:"number"`
	Status    string `json:"status"`
	Total     string `json:"total"`
	Currency  string `json:"currency"`
	Reference string `json:"reference"`
}

// Service resolves the shipping cost and submits orders.
type Service struct {
	orders   OrderSubmitter
	shipping ShippingSource
	fallback decimal.Decimal
	reporter observability.Reporter
	cache    cache.Store
	ttl      time.Duration
	newRef   func() string
}

// Option customises a Service.
type Option func(*Service)

// WithFallbackShipping sets the cost used when the upstream has no flat rate.
func WithFallbackShipping(cost decimal.Decimal) Option {
	return func(s *Service) {
		if !cost.IsNegative() {
			s.fallback = cost
		}
	}
}

// WithReporter sets where shipping lookup failures are reported.
func WithReporter(r observability.Reporter) Option {
	return func(s *Service) {
		if r != nil {
			s.reporter = r
		}
	}
}

// WithCache caches the resolved shipping cost for ttl.
func WithCache(store cache.Store, ttl time.Duration) Option {
	return func(s *Service) {
		if store != nil && ttl > 0 {
			s.cache = store
			s.ttl = ttl
		}
	}
}

// WithReferenceGenerator overrides the order reference source.
func WithReferenceGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newRef = fn
		}
	}
}

// NewService builds a checkout service. Both collaborators may be nil; the
// shipping cost then resolves to the fallback and submission fails with
// commerce.ErrNotConfigured.
func NewService(orders OrderSubmitter, shipping ShippingSource, opts ...Option) *Service {
	s := &Service{
		orders:   orders,
		shipping: shipping,
		fallback: decimal.NewFromInt(defaultFallbackEG),
		reporter: observability.NopReporter{},
		cache:    cache.Nop{},
		newRef:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ShippingCost returns the first enabled upstream flat rate, or the fallback
// when the upstream is unconfigured, unreachable or has none. It never fails.
func (s *Service) ShippingCost(ctx context.Context) decimal.Decimal {
	if s.shipping == nil || !s.shipping.Configured() {
		return s.fallback
	}
	if raw, err := s.cache.Get(ctx, shippingCacheKey); err == nil {
		if cost, err := decimal.NewFromString(string(raw)); err == nil {
			return cost
		}
	}

	cost, found, err := s.shipping.FlatRateCost(ctx)
	if err != nil {
		s.reporter.Report(ctx, err, zap.String("operation", "checkout.ShippingCost"))
		return s.fallback
	}
	if !found {
		observability.FromContext(ctx).Debug("no enabled flat rate upstream, using fallback shipping cost")
		cost = s.fallback
	}
	if s.ttl > 0 {
		if err := s.cache.Set(ctx, shippingCacheKey, []byte(cost.String()), s.ttl); err != nil {
			observability.FromContext(ctx).Warn("shipping cache write failed", zap.Error(err))
		}
	}
	return cost
}

// Submit validates the form and places the priced cart upstream in a single
// attempt. Upstream rejections come back as *commerce.APIError.
func (s *Service) Submit(ctx context.Context, form Form, totals cart.Totals, lang string) (Receipt, error) {
	form = form.Normalize()
	if err := form.Validate(); err != nil {
		return Receipt{}, err
	}
	if len(totals.Lines) == 0 {
		return Receipt{}, ErrEmptyCart
	}
	req, ref, err := s.buildRequest(form, totals, lang)
	if err != nil {
		return Receipt{}, err
	}
	if s.orders == nil {
		return Receipt{}, commerce.ErrNotConfigured
	}

	logger := observability.FromContext(ctx)
	order, err := s.orders.CreateOrder(ctx, req)
	if err != nil {
		logger.Warn("order submission failed", zap.String("reference", ref), zap.Error(err))
		return Receipt{}, fmt.Errorf("checkout: create order: %w", err)
	}
	logger.Info("order placed",
		zap.Int64("orderID", order.ID),
		zap.String("reference", ref),
		zap.Int("items", totals.ItemCount),
	)
	return Receipt{
		OrderID:   order.ID,
		Number:    order.Number,
		Status:    order.Status,
		Total:     string(order.Total),
		Currency:  order.Currency,
		Reference: ref,
	}, nil
}

func (s *Service) buildRequest(form Form, totals cart.Totals, lang string) (commerce.OrderRequest, string, error) {
	items := make([]commerce.LineItem, 0, len(totals.Lines))
	for _, line := range totals.Lines {
		if line.OutOfStock {
			return commerce.OrderRequest{}, "", fmt.Errorf("%w: %s", ErrOutOfStock, line.Product.Name)
		}
		productID, err := strconv.ParseInt(line.ProductID, 10, 64)
		if err != nil || productID <= 0 {
			return commerce.OrderRequest{}, "", fmt.Errorf("%w: product %q has no upstream id", ErrInvalidOrder, line.ProductID)
		}
		item := commerce.LineItem{
			ProductID:   productID,
			VariationID: line.VariationID,
			Quantity:    line.Quantity,
		}
		if line.VariationID == 0 {
			item.MetaData = selectionMeta(line.Size, line.Color)
		}
		items = append(items, item)
	}

	ref := s.newRef()
	address := commerce.Address{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Address1:  form.Address,
		City:      form.City,
		State:     form.Governorate,
		Country:   countryEgypt,
		Phone:     form.Phone,
	}
	billing := address
	billing.Email = form.Email

	note := "Ref: " + ref
	if form.Notes != "" {
		note = form.Notes + "\n\n" + note
	}
	return commerce.OrderRequest{
		PaymentMethod:      PaymentCOD,
		PaymentMethodTitle: codTitle,
		Billing:            billing,
		Shipping:           address,
		LineItems:          items,
		ShippingLines: []commerce.ShippingLine{{
			MethodID:    shippingMethodID,
			MethodTitle: shippingTitle,
			Total:       totals.Shipping.StringFixed(2),
		}},
		CustomerNote: note,
		MetaData: []commerce.OrderMeta{
			{Key: referenceMetaKey, Value: ref},
			{Key: localeMetaKey, Value: strings.ToLower(lang)},
		},
	}, ref, nil
}

// selectionMeta records the chosen options for simple products.
func selectionMeta(size, color string) []commerce.OrderMeta {
	var meta []commerce.OrderMeta
	if size != "" {
		meta = append(meta, commerce.OrderMeta{Key: "Size", Value: size})
	}
	if color != "" {
		meta = append(meta, commerce.OrderMeta{Key: "Color", Value: color})
	}
	return meta
}
