package catalog

import (
	"strings"

	"github.com/luravie/storefront/internal/commerce"
)

// Facet is an independently filterable product dimension.
type Facet string

const (
	FacetSize  Facet = "size"
	FacetColor Facet = "color"
)

// synonyms lists, per facet, the attribute names accepted from upstream.
// Entries are stored lower-cased.
var synonyms = map[Facet][]string{
	FacetSize: {
		"size", "sizes", "المقاس", "مقاس", "المقاسات", "الحجم", "sizing", "length",
	},
	FacetColor: {
		"color", "colors", "colour", "colours", "اللون", "لون", "الألوان", "shade", "finish",
	},
}

// globalAttributePrefix is prepended by the platform to slugs of shared attributes.
const globalAttributePrefix = "pa_"

// Synonyms returns a copy of the accepted attribute names for facet.
func Synonyms(facet Facet) []string {
	return append([]string(nil), synonyms[facet]...)
}

// MatchesFacet reports whether an attribute name or slug belongs to facet.
func MatchesFacet(name, slug string, facet Facet) bool {
	candidates := []string{
		strings.ToLower(strings.TrimSpace(name)),
		strings.TrimPrefix(strings.ToLower(strings.TrimSpace(slug)), globalAttributePrefix),
	}
	for _, token := range synonyms[facet] {
		for _, c := range candidates {
			if c != "" && c == token {
				return true
			}
		}
	}
	return false
}

// ResolveAttribute returns the first attribute group matching facet. A
// missing group is reported through the boolean, not as an error.
func ResolveAttribute(attrs []commerce.Attribute, facet Facet) (commerce.Attribute, bool) {
	for _, attr := range attrs {
		if MatchesFacet(attr.Name, attr.Slug, facet) {
			return attr, true
		}
	}
	return commerce.Attribute{}, false
}
