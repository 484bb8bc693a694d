package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultPerPage   = 50
	maxPages         = 20
	maxErrorRunes    = 256
	apiPrefix        = "wp-json/wc/v3"
	totalPagesHeader = "X-WP-TotalPages"
)

var (
	// ErrNotConfigured is returned when the client has no base URL or credentials.
	ErrNotConfigured = errors.New("commerce: upstream not configured")
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("commerce: not found")
)

var tracer = otel.Tracer("github.com/luravie/storefront/internal/commerce")

// APIError carries the upstream failure payload.
type APIError struct {
	Status  int
	Code    string
	Message string
}

// Error implements error.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("commerce: status %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("commerce: status %d: %s", e.Status, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Client talks to the upstream commerce REST API.
type Client struct {
	baseURL string
	key     string
	secret  string
	perPage int
	http    *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithPerPage sets the page size used when listing products.
func WithPerPage(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.perPage = n
		}
	}
}

// NewClient constructs a client for the store at baseURL authenticated with
// the consumer key and secret.
func NewClient(baseURL, key, secret string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		key:     strings.TrimSpace(key),
		secret:  strings.TrimSpace(secret),
		perPage: defaultPerPage,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether the client can reach the upstream.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != "" && c.key != "" && c.secret != ""
}

// ListProducts returns every published product record, undecoded, walking all pages.
func (c *Client) ListProducts(ctx context.Context) ([]json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "commerce.ListProducts", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	var records []json.RawMessage
	for page := 1; page <= maxPages; page++ {
		query := url.Values{}
		query.Set("per_page", strconv.Itoa(c.perPage))
		query.Set("page", strconv.Itoa(page))
		query.Set("status", "publish")

		var batch []json.RawMessage
		header, err := c.do(ctx, http.MethodGet, []string{"products"}, query, nil, &batch)
		if err != nil {
			recordError(span, err)
			return nil, err
		}
		records = append(records, batch...)

		totalPages, _ := strconv.Atoi(header.Get(totalPagesHeader))
		if totalPages > 0 && page >= totalPages {
			break
		}
		if totalPages == 0 && len(batch) < c.perPage {
			break
		}
	}
	span.SetAttributes(attribute.Int("commerce.records", len(records)))
	return records, nil
}

// ListVariations returns the variations of a variable product.
func (c *Client) ListVariations(ctx context.Context, productID int64) ([]Variation, error) {
	ctx, span := tracer.Start(ctx, "commerce.ListVariations", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.Int64("commerce.product_id", productID))

	query := url.Values{}
	query.Set("per_page", "100")

	var variations []Variation
	if _, err := c.do(ctx, http.MethodGet, []string{"products", strconv.FormatInt(productID, 10), "variations"}, query, nil, &variations); err != nil {
		recordError(span, err)
		return nil, err
	}
	return variations, nil
}

// CreateOrder submits an order exactly once. Failures come back as *APIError
// carrying the upstream message when the store answered.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (Order, error) {
	ctx, span := tracer.Start(ctx, "commerce.CreateOrder", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.Int("commerce.line_items", len(req.LineItems)))

	var order Order
	if _, err := c.do(ctx, http.MethodPost, []string{"orders"}, nil, req, &order); err != nil {
		recordError(span, err)
		return Order{}, err
	}
	span.SetAttributes(attribute.Int64("commerce.order_id", order.ID))
	return order, nil
}

func (c *Client) do(ctx context.Context, method string, path []string, query url.Values, body, out any) (http.Header, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	endpoint, err := url.JoinPath(c.baseURL, append([]string{apiPrefix}, path...)...)
	if err != nil {
		return nil, fmt.Errorf("commerce: build url: %w", err)
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("commerce: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.key, c.secret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", req.URL.Path),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("commerce: %s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode >= 400 {
		return nil, decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.Header, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, fmt.Errorf("commerce: decode %s: %w", req.URL.Path, err)
	}
	return resp.Header, nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	apiErr := &APIError{Status: resp.StatusCode}

	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Message != "" {
		apiErr.Code = payload.Code
		apiErr.Message = payload.Message
		return apiErr
	}
	apiErr.Message = drainError(raw)
	return apiErr
}

// drainError turns a non-JSON error body into a message of at most
// maxErrorRunes runes. Bytes split by the read limit are dropped.
func drainError(raw []byte) string {
	msg := strings.TrimSpace(strings.ToValidUTF8(string(raw), ""))
	if utf8.RuneCountInString(msg) > maxErrorRunes {
		msg = string([]rune(msg)[:maxErrorRunes])
	}
	if msg == "" {
		return "upstream error"
	}
	return msg
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
