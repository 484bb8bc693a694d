package checkout

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/luravie/storefront/internal/cart"
	"github.com/luravie/storefront/internal/catalog"
	"github.com/luravie/storefront/internal/commerce"
	"github.com/luravie/storefront/internal/platform/cache"
)

type stubOrders struct {
	calls []commerce.OrderRequest
	order commerce.Order
	err   error
}

func (s *stubOrders) CreateOrder(_ context.Context, req commerce.OrderRequest) (commerce.Order, error) {
	s.calls = append(s.calls, req)
	return s.order, s.err
}

type stubShipping struct {
	configured bool
	cost       decimal.Decimal
	found      bool
	err        error
	calls      int
}

func (s *stubShipping) Configured() bool { return s.configured }

func (s *stubShipping) FlatRateCost(context.Context) (decimal.Decimal, bool, error) {
	s.calls++
	return s.cost, s.found, s.err
}

type recordingReporter struct {
	errs []error
}

func (r *recordingReporter) Report(_ context.Context, err error, _ ...zap.Field) {
	r.errs = append(r.errs, err)
}

func validForm() Form {
	return Form{
		FirstName:   "Mona",
		LastName:    "Adel",
		Phone:       "+20 100 123 4567",
		Email:       "Mona@Example.com ",
		Address:     "12 Nile Street",
		City:        "Cairo",
		Governorate: "Cairo",
	}
}

func pricedTotals(t *testing.T, shipping decimal.Decimal) cart.Totals {
	t.Helper()
	var c cart.Cart
	_, err := c.Add("1", "M", "Nude", 2)
	require.NoError(t, err)
	_, err = c.Add("3", "S", "", 1)
	require.NoError(t, err)
	products := catalog.Seed()
	products[0].Variations[1].ID = 77
	return cart.Price(c, products, nil, shipping)
}

func TestValidateReportsFields(t *testing.T) {
	err := Form{Email: "nope", Phone: "12", PaymentMethod: "card"}.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidOrder)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "required", verr.Fields["firstName"])
	assert.Equal(t, "invalid email", verr.Fields["email"])
	assert.Equal(t, "invalid phone number", verr.Fields["phone"])
	assert.Contains(t, verr.Fields["paymentMethod"], "cod")
	assert.NotContains(t, verr.Fields, "notes")
}

func TestNormalizeDefaultsPayment(t *testing.T) {
	f := validForm().Normalize()
	assert.Equal(t, PaymentCOD, f.PaymentMethod)
	assert.Equal(t, "mona@example.com", f.Email)
	assert.NoError(t, f.Validate())
}

func TestShippingCostFallbacks(t *testing.T) {
	fallback := decimal.NewFromInt(75)

	svc := NewService(nil, nil, WithFallbackShipping(fallback))
	assert.True(t, svc.ShippingCost(context.Background()).Equal(fallback))

	notFound := &stubShipping{configured: true}
	svc = NewService(nil, notFound, WithFallbackShipping(fallback))
	assert.True(t, svc.ShippingCost(context.Background()).Equal(fallback))

	reporter := &recordingReporter{}
	failing := &stubShipping{configured: true, err: errors.New("dial tcp: refused")}
	svc = NewService(nil, failing, WithFallbackShipping(fallback), WithReporter(reporter))
	assert.True(t, svc.ShippingCost(context.Background()).Equal(fallback))
	assert.Len(t, reporter.errs, 1)

	assert.True(t, NewService(nil, nil).ShippingCost(context.Background()).Equal(decimal.NewFromInt(60)))
}

func TestShippingCostCachesUpstreamRate(t *testing.T) {
	source := &stubShipping{configured: true, found: true, cost: decimal.RequireFromString("45.5")}
	svc := NewService(nil, source, WithCache(cache.NewMemory(), time.Minute))

	first := svc.ShippingCost(context.Background())
	second := svc.ShippingCost(context.Background())
	assert.Equal(t, "45.5", first.String())
	assert.True(t, first.Equal(second))
	assert.Equal(t, 1, source.calls)
}

func TestSubmitBuildsOrder(t *testing.T) {
	orders := &stubOrders{order: commerce.Order{ID: 901, Number: "901", Status: "processing", Total: "1080.00", Currency: "EGP"}}
	svc := NewService(orders, nil, WithReferenceGenerator(func() string { return "ref-1" }))

	receipt, err := svc.Submit(context.Background(), validForm(), pricedTotals(t, decimal.NewFromInt(60)), "AR")
	require.NoError(t, err)
	assert.Equal(t, int64(901), receipt.OrderID)
	assert.Equal(t, "ref-1", receipt.Reference)
	assert.Equal(t, "1080.00", receipt.Total)

	require.Len(t, orders.calls, 1)
	req := orders.calls[0]
	assert.Equal(t, PaymentCOD, req.PaymentMethod)
	assert.False(t, req.SetPaid)
	assert.Equal(t, "EG", req.Shipping.Country)
	assert.Equal(t, "mona@example.com", req.Billing.Email)
	assert.Empty(t, req.Shipping.Email)
	assert.Equal(t, "Ref: ref-1", req.CustomerNote)
	assert.Equal(t, "60.00", req.ShippingLines[0].Total)
	assert.Contains(t, req.MetaData, commerce.OrderMeta{Key: "_luravie_locale", Value: "ar"})

	require.Len(t, req.LineItems, 2)
	assert.Equal(t, commerce.LineItem{ProductID: 1, VariationID: 77, Quantity: 2}, req.LineItems[0])
	assert.Equal(t, int64(3), req.LineItems[1].ProductID)
	assert.Zero(t, req.LineItems[1].VariationID)
	assert.Equal(t, []commerce.OrderMeta{{Key: "Size", Value: "S"}}, req.LineItems[1].MetaData)
}

func TestSubmitRejectsBeforeCallingUpstream(t *testing.T) {
	orders := &stubOrders{}
	svc := NewService(orders, nil)

	_, err := svc.Submit(context.Background(), Form{}, pricedTotals(t, decimal.Zero), "en")
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = svc.Submit(context.Background(), validForm(), cart.Totals{}, "en")
	assert.ErrorIs(t, err, ErrEmptyCart)

	var c cart.Cart
	_, err = c.Add("1", "M", "Black", 1)
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), validForm(), cart.Price(c, catalog.Seed(), nil, decimal.Zero), "en")
	assert.ErrorIs(t, err, ErrOutOfStock)

	assert.Empty(t, orders.calls)
}

func TestSubmitPropagatesUpstreamError(t *testing.T) {
	apiErr := &commerce.APIError{Status: http.StatusBadRequest, Code: "invalid", Message: "Product ID 1 is invalid."}
	orders := &stubOrders{err: apiErr}
	svc := NewService(orders, nil)

	_, err := svc.Submit(context.Background(), validForm(), pricedTotals(t, decimal.Zero), "en")
	var got *commerce.APIError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, "Product ID 1 is invalid.", got.Message)
	assert.Len(t, orders.calls, 1)
}

func TestSubmitWithoutUpstream(t *testing.T) {
	_, err := NewService(nil, nil).Submit(context.Background(), validForm(), pricedTotals(t, decimal.Zero), "en")
	assert.ErrorIs(t, err, commerce.ErrNotConfigured)
}
