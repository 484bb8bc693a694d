package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/luravie/storefront/internal/commerce"
	"github.com/luravie/storefront/internal/platform/cache"
	"github.com/luravie/storefront/internal/platform/observability"
)

const (
	productsCacheKey      = "catalog:products:v1"
	variationsCachePrefix = "catalog:variations:v1:"
	variationFetchLimit   = 4
)

// Source is the upstream the catalog is read from.
type Source interface {
	Configured() bool
	ListProducts(ctx context.Context) ([]json.RawMessage, error)
	ListVariations(ctx context.Context, productID int64) ([]commerce.Variation, error)
}

// Origin tells where a snapshot came from.
type Origin string

const (
	OriginUpstream Origin = "upstream"
	OriginCache    Origin = "cache"
	OriginSeed     Origin = "seed"
)

// Snapshot is one request's private view of the catalog.
type Snapshot struct {
	Products []Product
	Origin   Origin
}

// Service loads the catalog, falling back to the seed list when the upstream
// is unconfigured, failing, or has nothing usable.
type Service struct {
	source   Source
	reporter observability.Reporter
	cache    cache.Store
	ttl      time.Duration
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithReporter sets where handled upstream failures are reported.
func WithReporter(r observability.Reporter) ServiceOption {
	return func(s *Service) {
		if r != nil {
			s.reporter = r
		}
	}
}

// WithCache enables snapshot caching for ttl.
func WithCache(store cache.Store, ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if store != nil && ttl > 0 {
			s.cache = store
			s.ttl = ttl
		}
	}
}

// NewService constructs a catalog service over source. A nil source always serves the seed.
func NewService(source Source, opts ...ServiceOption) *Service {
	s := &Service{
		source:   source,
		reporter: observability.NopReporter{},
		cache:    cache.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the catalog for one request. It never fails; every
// upstream problem resolves to the seed list.
func (s *Service) Snapshot(ctx context.Context) Snapshot {
	logger := observability.FromContext(ctx)

	if s.source == nil || !s.source.Configured() {
		logger.Debug("commerce upstream not configured, serving seed catalog")
		return Snapshot{Products: Seed(), Origin: OriginSeed}
	}

	if products, ok := s.cachedProducts(ctx); ok {
		return Snapshot{Products: products, Origin: OriginCache}
	}

	records, err := s.source.ListProducts(ctx)
	if err != nil {
		s.reporter.Report(ctx, err, zap.String("operation", "catalog.ListProducts"))
		return Snapshot{Products: Seed(), Origin: OriginSeed}
	}

	products := NormalizeAll(ctx, records, s.reporter)
	if len(products) == 0 {
		logger.Warn("upstream catalog empty after normalization, serving seed catalog", zap.Int("records", len(records)))
		return Snapshot{Products: Seed(), Origin: OriginSeed}
	}

	s.storeProducts(ctx, products)
	return Snapshot{Products: products, Origin: OriginUpstream}
}

// Product finds a product by slug or id and attaches its variations.
func (s *Service) Product(ctx context.Context, slug string) (Product, bool) {
	snap := s.Snapshot(ctx)
	p, ok := FindBySlug(snap.Products, slug)
	if !ok {
		return Product{}, false
	}
	if snap.Origin != OriginSeed {
		p.Variations = s.variations(ctx, p.ID)
	}
	return p, true
}

// Variations fetches the variations of several products concurrently, keyed by product id.
// Products with no upstream variations, or whose fetch failed, map to nil.
func (s *Service) Variations(ctx context.Context, snap Snapshot, ids ...string) map[string][]ProductVariation {
	out := make(map[string][]ProductVariation, len(ids))
	if snap.Origin == OriginSeed {
		for _, id := range ids {
			if p, ok := FindByID(snap.Products, id); ok {
				out[id] = p.Variations
			}
		}
		return out
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(variationFetchLimit)
	for _, id := range dedupe(ids) {
		id := id
		g.Go(func() error {
			variations := s.variations(gctx, id)
			mu.Lock()
			out[id] = variations
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (s *Service) variations(ctx context.Context, id string) []ProductVariation {
	if cached, ok := s.cachedVariations(ctx, id); ok {
		return cached
	}
	productID, err := strconv.ParseInt(id, 10, 64)
	if err != nil || s.source == nil || !s.source.Configured() {
		return nil
	}
	raw, err := s.source.ListVariations(ctx, productID)
	if err != nil {
		if !errors.Is(err, commerce.ErrNotFound) {
			s.reporter.Report(ctx, err, zap.String("operation", "catalog.ListVariations"), zap.String("productID", id))
		}
		return nil
	}
	variations := make([]ProductVariation, 0, len(raw))
	for _, v := range raw {
		variations = append(variations, NormalizeVariation(v))
	}
	s.store(ctx, variationsCachePrefix+id, variations)
	return variations
}

func (s *Service) cachedProducts(ctx context.Context) ([]Product, bool) {
	var products []Product
	if !s.load(ctx, productsCacheKey, &products) || len(products) == 0 {
		return nil, false
	}
	return products, true
}

func (s *Service) storeProducts(ctx context.Context, products []Product) {
	s.store(ctx, productsCacheKey, products)
}

func (s *Service) cachedVariations(ctx context.Context, id string) ([]ProductVariation, bool) {
	var variations []ProductVariation
	if !s.load(ctx, variationsCachePrefix+id, &variations) {
		return nil, false
	}
	return variations, true
}

// load decodes a cached value into dst. Decoding yields a fresh copy per call.
func (s *Service) load(ctx context.Context, key string, dst any) bool {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			observability.FromContext(ctx).Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		observability.FromContext(ctx).Warn("catalog cache entry corrupt", zap.String("key", key), zap.Error(err))
		_ = s.cache.Delete(ctx, key)
		return false
	}
	return true
}

func (s *Service) store(ctx context.Context, key string, value any) {
	if s.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		observability.FromContext(ctx).Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}
