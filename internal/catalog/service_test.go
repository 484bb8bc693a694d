package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luravie/storefront/internal/commerce"
	"github.com/luravie/storefront/internal/platform/cache"
)

type stubSource struct {
	configured bool
	records    []json.RawMessage
	err        error
	variations map[int64][]commerce.Variation
	varErr     error

	mu        sync.Mutex
	listCalls int
	varCalls  []int64
}

func (s *stubSource) Configured() bool { return s.configured }

func (s *stubSource) ListProducts(context.Context) ([]json.RawMessage, error) {
	s.mu.Lock()
	s.listCalls++
	s.mu.Unlock()
	return s.records, s.err
}

func (s *stubSource) ListVariations(_ context.Context, id int64) ([]commerce.Variation, error) {
	s.mu.Lock()
	s.varCalls = append(s.varCalls, id)
	s.mu.Unlock()
	if s.varErr != nil {
		return nil, s.varErr
	}
	return s.variations[id], nil
}

func seedIDs() []string {
	return ids(Seed())
}

func TestSnapshotFallsBackToSeedWhenUpstreamEmpty(t *testing.T) {
	svc := NewService(&stubSource{configured: true, records: []json.RawMessage{}})

	snap := svc.Snapshot(context.Background())
	assert.Equal(t, OriginSeed, snap.Origin)
	assert.Equal(t, seedIDs(), ids(snap.Products))
}

func TestSnapshotFallsBackWhenUnconfigured(t *testing.T) {
	source := &stubSource{configured: false}
	snap := NewService(source).Snapshot(context.Background())
	assert.Equal(t, OriginSeed, snap.Origin)
	assert.Len(t, snap.Products, 6)
	assert.Zero(t, source.listCalls, "unconfigured upstream is never called")

	snap = NewService(nil).Snapshot(context.Background())
	assert.Len(t, snap.Products, 6)
}

func TestSnapshotFallsBackAndReportsOnError(t *testing.T) {
	reporter := &recordingReporter{}
	upstreamErr := errors.New("connection refused")
	svc := NewService(&stubSource{configured: true, err: upstreamErr}, WithReporter(reporter))

	snap := svc.Snapshot(context.Background())
	assert.Equal(t, OriginSeed, snap.Origin)
	assert.Len(t, snap.Products, 6)
	require.Len(t, reporter.errs, 1)
	assert.ErrorIs(t, reporter.errs[0], upstreamErr)
}

func TestSnapshotFallsBackWhenNothingNormalizes(t *testing.T) {
	reporter := &recordingReporter{}
	svc := NewService(&stubSource{configured: true, records: []json.RawMessage{
		json.RawMessage(`{"id":0}`),
		json.RawMessage(`"garbage"`),
	}}, WithReporter(reporter))

	snap := svc.Snapshot(context.Background())
	assert.Equal(t, OriginSeed, snap.Origin)
	assert.Len(t, snap.Products, 6)
	assert.Len(t, reporter.errs, 2)
}

func TestSnapshotUsesUpstreamAndCache(t *testing.T) {
	source := &stubSource{configured: true, records: []json.RawMessage{
		json.RawMessage(`{"id":10,"slug":"ten","name":"Ten","price":"100"}`),
		json.RawMessage(`{"id":11,"slug":"eleven","name":"Eleven","price":"200"}`),
	}}
	svc := NewService(source, WithCache(cache.NewMemory(), time.Minute))

	first := svc.Snapshot(context.Background())
	assert.Equal(t, OriginUpstream, first.Origin)
	assert.Equal(t, []string{"10", "11"}, ids(first.Products))

	first.Products[0].Name = "mutated"

	second := svc.Snapshot(context.Background())
	assert.Equal(t, OriginCache, second.Origin)
	assert.Equal(t, "Ten", second.Products[0].Name, "each snapshot is a private copy")
	assert.Equal(t, 1, source.listCalls)
}

func TestProductAttachesVariations(t *testing.T) {
	source := &stubSource{
		configured: true,
		records:    []json.RawMessage{json.RawMessage(`{"id":10,"slug":"ten","name":"Ten","price":"100"}`)},
		variations: map[int64][]commerce.Variation{
			10: {{ID: 1, StockStatus: "outofstock", Attributes: []commerce.VariationAttribute{{Name: "Size", Option: "M"}}}},
		},
	}
	svc := NewService(source)

	p, ok := svc.Product(context.Background(), "ten")
	require.True(t, ok)
	require.Len(t, p.Variations, 1)
	assert.True(t, IsSizeOutOfStock(p.Variations, "M"))

	_, ok = svc.Product(context.Background(), "missing")
	assert.False(t, ok)
}

func TestProductVariationFailureIsOptimistic(t *testing.T) {
	reporter := &recordingReporter{}
	source := &stubSource{
		configured: true,
		records:    []json.RawMessage{json.RawMessage(`{"id":10,"slug":"ten","name":"Ten"}`)},
		varErr:     errors.New("timeout"),
	}
	p, ok := NewService(source, WithReporter(reporter)).Product(context.Background(), "ten")
	require.True(t, ok)
	assert.Empty(t, p.Variations)
	assert.False(t, IsSizeOutOfStock(p.Variations, "M"))
	assert.Len(t, reporter.errs, 1)
}

func TestVariationsFetchesEachProductOnce(t *testing.T) {
	source := &stubSource{
		configured: true,
		variations: map[int64][]commerce.Variation{
			1: {{ID: 100}},
			2: {{ID: 200}, {ID: 201}},
		},
	}
	svc := NewService(source)

	out := svc.Variations(context.Background(), Snapshot{Origin: OriginUpstream}, "1", "2", "1")
	assert.Len(t, out["1"], 1)
	assert.Len(t, out["2"], 2)
	assert.Len(t, source.varCalls, 2)
}

func TestVariationsFromSeed(t *testing.T) {
	svc := NewService(nil)
	snap := svc.Snapshot(context.Background())

	out := svc.Variations(context.Background(), snap, "1", "2")
	assert.Len(t, out["1"], 3)
	assert.Empty(t, out["2"])
}
