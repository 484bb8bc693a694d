package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "ck_test", "cs_test", opts...)
}

func TestClientNotConfigured(t *testing.T) {
	client := NewClient("", "", "")
	require.False(t, client.Configured())

	_, err := client.ListProducts(context.Background())
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = client.CreateOrder(context.Background(), OrderRequest{})
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestListProductsPaginates(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "/wp-json/wc/v3/products", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "ck_test", user)
		require.Equal(t, "cs_test", pass)
		require.Equal(t, "2", r.URL.Query().Get("per_page"))

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		w.Header().Set("X-WP-TotalPages", "2")
		switch page {
		case 1:
			fmt.Fprint(w, `[{"id":1,"name":"A"},{"id":2,"name":"B"}]`)
		case 2:
			fmt.Fprint(w, `[{"id":3,"name":"C"}]`)
		default:
			t.Errorf("unexpected page %d", page)
		}
	}), WithPerPage(2))

	records, err := client.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.EqualValues(t, 2, calls.Load())

	p, err := DecodeProduct(records[2])
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.ID)
}

func TestListProductsStopsOnShortPageWithoutHeader(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `[{"id":1,"name":"A"}]`)
	}), WithPerPage(5))

	records, err := client.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.EqualValues(t, 1, calls.Load())
}

func TestListVariations(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/wp-json/wc/v3/products/42/variations", r.URL.Path)
		fmt.Fprint(w, `[
			{"id":7,"price":"500","stock_status":"outofstock","attributes":[{"name":"Size","option":"M"},{"name":"Color","option":"Black"}]},
			{"id":8,"price":510,"stock_status":"instock","attributes":[{"name":"Size","option":"L"}]}
		]`)
	}))

	variations, err := client.ListVariations(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, variations, 2)
	assert.Equal(t, Amount("500"), variations[0].Price)
	assert.Equal(t, Amount("510"), variations[1].Price, "numeric prices decode as amounts")
	assert.Equal(t, "M", variations[0].Attributes[0].Option)
}

func TestFlatRateCost(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/wp-json/wc/v3/shipping/zones", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":0,"name":"Rest of world"},{"id":1,"name":"Cairo"}]`)
	})
	mux.HandleFunc("/wp-json/wc/v3/shipping/zones/0/methods", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"instance_id":1,"method_id":"flat_rate","enabled":false,"settings":{"cost":{"value":"200"}}}]`)
	})
	mux.HandleFunc("/wp-json/wc/v3/shipping/zones/1/methods", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"instance_id":2,"method_id":"free_shipping","enabled":true,"settings":{}},
			{"instance_id":3,"method_id":"flat_rate","enabled":true,"settings":{"cost":{"id":"cost","value":" 45.50 "}}}
		]`)
	})
	client := newTestClient(t, mux)

	cost, found, err := client.FlatRateCost(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "45.5", cost.String())
}

func TestFlatRateCostNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/wp-json/wc/v3/shipping/zones", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":1,"name":"Cairo"}]`)
	})
	mux.HandleFunc("/wp-json/wc/v3/shipping/zones/1/methods", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"instance_id":2,"method_id":"local_pickup","enabled":true}]`)
	})
	client := newTestClient(t, mux)

	_, found, err := client.FlatRateCost(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCreateOrder(t *testing.T) {
	var received OrderRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/wp-json/wc/v3/orders", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":901,"number":"901","status":"processing","total":"510.00","currency":"EGP"}`)
	}))

	order, err := client.CreateOrder(context.Background(), OrderRequest{
		PaymentMethod: "cod",
		LineItems:     []LineItem{{ProductID: 42, VariationID: 7, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(901), order.ID)
	assert.Equal(t, Amount("510.00"), order.Total)
	require.Len(t, received.LineItems, 1)
	assert.Equal(t, int64(7), received.LineItems[0].VariationID)
}

func TestCreateOrderPropagatesUpstreamMessage(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"code":"woocommerce_rest_invalid_product_id","message":"Product ID 42 is invalid.","data":{"status":400}}`)
	}))

	_, err := client.CreateOrder(context.Background(), OrderRequest{})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "woocommerce_rest_invalid_product_id", apiErr.Code)
	assert.Equal(t, "Product ID 42 is invalid.", apiErr.Message)
	assert.EqualValues(t, 1, calls.Load(), "orders are submitted at most once")
}

func TestPlainTextUpstreamErrorIsTruncatedOnRunes(t *testing.T) {
	body := strings.Repeat("ملابس ", 100)
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, body)
	}))

	_, err := client.CreateOrder(context.Background(), OrderRequest{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, utf8.ValidString(apiErr.Message))
	assert.Equal(t, 256, utf8.RuneCountInString(apiErr.Message))
	assert.True(t, strings.HasPrefix(body, apiErr.Message))
}

func TestDrainErrorDropsSplitRune(t *testing.T) {
	raw := []byte("الطلب مرفوض")
	assert.Equal(t, "الطلب مرفو", drainError(raw[:len(raw)-1]))
	assert.Equal(t, "upstream error", drainError([]byte("  ")))
}

func TestNotFoundMatchesSentinel(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))

	_, err := client.ListVariations(context.Background(), 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMetaDataString(t *testing.T) {
	p, err := DecodeProduct([]byte(`{"id":1,"meta_data":[
		{"key":"title_ar","value":"حمالة"},
		{"key":"_complex","value":{"a":1}},
		{"key":"count","value":3}
	]}`))
	require.NoError(t, err)
	assert.Equal(t, "حمالة", p.Meta("title_ar"))
	assert.Equal(t, "", p.Meta("_complex"))
	assert.Equal(t, "3", p.Meta("count"))
	assert.Equal(t, "", p.Meta("missing"))
}
