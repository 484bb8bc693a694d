package catalog

import (
	"sort"
	"strings"
)

// SortKey selects the listing order.
type SortKey string

const (
	SortNewest    SortKey = "Newest"
	SortPriceAsc  SortKey = "Price: Low to High"
	SortPriceDesc SortKey = "Price: High to Low"
)

var sortAliases = map[string]SortKey{
	"newest":     SortNewest,
	"price-asc":  SortPriceAsc,
	"price-desc": SortPriceDesc,
}

// ParseSortKey accepts either the display label or its short query alias.
// Unknown values fall back to SortNewest.
func ParseSortKey(value string) SortKey {
	value = strings.TrimSpace(value)
	if key, ok := sortAliases[strings.ToLower(value)]; ok {
		return key
	}
	switch SortKey(value) {
	case SortPriceAsc, SortPriceDesc:
		return SortKey(value)
	}
	return SortNewest
}

// Param returns the query alias of the key.
func (k SortKey) Param() string {
	for alias, key := range sortAliases {
		if key == k {
			return alias
		}
	}
	return "newest"
}

// FilterState is the shopper's current listing selection.
type FilterState struct {
	ActiveCategory Category
	SelectedSizes  []string
	SelectedColors []string
	SearchQuery    string
	SortBy         SortKey
}

// IDSet is a set of product ids.
type IDSet map[string]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids ...string) IDSet {
	set := make(IDSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has reports membership.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Filter applies category, size, color, search and sort in that order and
// returns a new slice. products is left untouched.
func Filter(products []Product, state FilterState, favorites IDSet) []Product {
	out := make([]Product, 0, len(products))
	query := strings.ToLower(strings.TrimSpace(state.SearchQuery))
	for _, p := range products {
		if !matchesCategory(p, state.ActiveCategory, favorites) {
			continue
		}
		if len(state.SelectedSizes) > 0 && !anySize(p, state.SelectedSizes) {
			continue
		}
		if len(state.SelectedColors) > 0 && !anyColor(p, state.SelectedColors) {
			continue
		}
		if query != "" && !matchesQuery(p, query) {
			continue
		}
		out = append(out, p)
	}

	switch state.SortBy {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	}
	return out
}

func matchesCategory(p Product, category Category, favorites IDSet) bool {
	switch category {
	case "", CategoryAll:
		return true
	case CategoryFavorites:
		return favorites.Has(p.ID)
	default:
		return p.Category == category
	}
}

func anySize(p Product, sizes []string) bool {
	for _, s := range sizes {
		if p.HasSize(s) {
			return true
		}
	}
	return false
}

func anyColor(p Product, colors []string) bool {
	for _, c := range colors {
		if p.HasColor(c) {
			return true
		}
	}
	return false
}

func matchesQuery(p Product, query string) bool {
	return strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(string(p.Category)), query)
}

// AvailableSizes lists every size offered across products in first-seen order.
func AvailableSizes(products []Product) []string {
	sizes := []string{}
	seen := map[string]struct{}{}
	for _, p := range products {
		for _, s := range p.Sizes {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			sizes = append(sizes, s)
		}
	}
	return sizes
}

// AvailableColors lists every distinct color by name; the first hex seen for a name wins.
func AvailableColors(products []Product) []Color {
	colors := []Color{}
	seen := map[string]struct{}{}
	for _, p := range products {
		for _, c := range p.Colors {
			if _, ok := seen[c.Name]; ok {
				continue
			}
			seen[c.Name] = struct{}{}
			colors = append(colors, c)
		}
	}
	return colors
}
