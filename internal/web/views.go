package web

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/luravie/storefront/internal/catalog"
)

type categoryLink struct {
	Category catalog.Category
	Href     string
	Active   bool
}

type facetOption struct {
	Value    string
	Hex      string
	Selected bool
}

type sortOption struct {
	Key      catalog.SortKey
	Param    string
	Selected bool
}

type shopView struct {
	State      catalog.FilterState
	Products   []catalog.Product
	Total      int
	Categories []categoryLink
	Sizes      []facetOption
	Colors     []facetOption
	Sorts      []sortOption
	Favorites  catalog.IDSet
	Shipping   decimal.Decimal
	ClearHref  string
}

type optionView struct {
	Value      string
	Hex        string
	Selected   bool
	OutOfStock bool
}

type productView struct {
	Product       catalog.Product
	Sizes         []optionView
	Colors        []optionView
	Price         float64
	OutOfStock    bool
	Favorite      bool
	Shipping      decimal.Decimal
	SelectedSize  string
	SelectedColor string
}

// parseFilterState reads the listing selection from the query string.
// Repeated and comma separated facet values are both accepted.
func parseFilterState(q url.Values) catalog.FilterState {
	category, ok := catalog.ParseCategory(q.Get("category"))
	if !ok {
		category = catalog.CategoryAll
	}
	return catalog.FilterState{
		ActiveCategory: category,
		SelectedSizes:  multiValue(q["size"]),
		SelectedColors: multiValue(q["color"]),
		SearchQuery:    strings.TrimSpace(q.Get("q")),
		SortBy:         catalog.ParseSortKey(q.Get("sort")),
	}
}

func multiValue(values []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" || seen[part] {
				continue
			}
			seen[part] = true
			out = append(out, part)
		}
	}
	return out
}

// shopQuery encodes state back into a query string.
func shopQuery(state catalog.FilterState) url.Values {
	q := url.Values{}
	if state.ActiveCategory != "" && state.ActiveCategory != catalog.CategoryAll {
		q.Set("category", string(state.ActiveCategory))
	}
	for _, size := range state.SelectedSizes {
		q.Add("size", size)
	}
	for _, color := range state.SelectedColors {
		q.Add("color", color)
	}
	if state.SearchQuery != "" {
		q.Set("q", state.SearchQuery)
	}
	if state.SortBy != "" && state.SortBy != catalog.SortNewest {
		q.Set("sort", state.SortBy.Param())
	}
	return q
}

func shopHref(state catalog.FilterState) string {
	if q := shopQuery(state).Encode(); q != "" {
		return "/shop?" + q
	}
	return "/shop"
}

func buildShopView(snap catalog.Snapshot, state catalog.FilterState, favorites catalog.IDSet, shipping decimal.Decimal) shopView {
	view := shopView{
		State:     state,
		Products:  catalog.Filter(snap.Products, state, favorites),
		Total:     len(snap.Products),
		Favorites: favorites,
		Shipping:  shipping,
		ClearHref: "/shop",
	}

	tabs := append([]catalog.Category{catalog.CategoryAll}, catalog.Categories()...)
	tabs = append(tabs, catalog.CategoryFavorites)
	for _, c := range tabs {
		next := state
		next.ActiveCategory = c
		view.Categories = append(view.Categories, categoryLink{
			Category: c,
			Href:     shopHref(next),
			Active:   state.ActiveCategory == c,
		})
	}

	selectedSizes := catalog.NewIDSet(state.SelectedSizes...)
	for _, size := range catalog.AvailableSizes(snap.Products) {
		view.Sizes = append(view.Sizes, facetOption{Value: size, Selected: selectedSizes.Has(size)})
	}
	selectedColors := catalog.NewIDSet(state.SelectedColors...)
	for _, color := range catalog.AvailableColors(snap.Products) {
		view.Colors = append(view.Colors, facetOption{Value: color.Name, Hex: color.Hex, Selected: selectedColors.Has(color.Name)})
	}
	for _, key := range []catalog.SortKey{catalog.SortNewest, catalog.SortPriceAsc, catalog.SortPriceDesc} {
		view.Sorts = append(view.Sorts, sortOption{Key: key, Param: key.Param(), Selected: state.SortBy == key})
	}
	return view
}

func buildProductView(p catalog.Product, size, color string, favorite bool, shipping decimal.Decimal) productView {
	view := productView{
		Product:       p,
		Price:         p.Price,
		OutOfStock:    p.OutOfStock,
		Favorite:      favorite,
		Shipping:      shipping,
		SelectedSize:  size,
		SelectedColor: color,
	}
	for _, s := range p.Sizes {
		view.Sizes = append(view.Sizes, optionView{
			Value:      s,
			Selected:   s == size,
			OutOfStock: catalog.IsSizeOutOfStock(p.Variations, s),
		})
	}
	for _, c := range p.Colors {
		view.Colors = append(view.Colors, optionView{
			Value:      c.Name,
			Hex:        c.Hex,
			Selected:   c.Name == color,
			OutOfStock: catalog.IsColorOutOfStock(p.Variations, c.Name),
		})
	}
	if size != "" || color != "" {
		if v, ok := catalog.FindVariation(p.Variations, size, color); ok {
			view.Price = catalog.ResolvePrice(p, &v)
			view.OutOfStock = view.OutOfStock || v.OutOfStock()
		}
	}
	return view
}
