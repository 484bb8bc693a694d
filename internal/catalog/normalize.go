package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/luravie/storefront/internal/commerce"
	"github.com/luravie/storefront/internal/platform/observability"
)

// PlaceholderImage is used for products that come without images.
const PlaceholderImage = "/static/img/placeholder-product.svg"

// ErrInvalidProduct marks an upstream record that cannot be turned into a Product.
var ErrInvalidProduct = errors.New("catalog: invalid product")

const (
	metaTitleAR       = "title_ar"
	metaDescriptionAR = "description_ar"
	metaFeatures      = "features"
	metaMaterials     = "materials"
)

// sizeWhitelist is matched against tag tokens when a product has no size attribute.
var sizeWhitelist = []string{"S", "M", "L", "XL", "XXL", "38", "40", "42", "44"}

type categoryRule struct {
	needles  []string
	category Category
}

// categoryRules are checked in order; the first rule with a matching needle wins.
var categoryRules = []categoryRule{
	{needles: []string{"bra"}, category: CategoryBra},
	{needles: []string{"pants", "briefs"}, category: CategoryPants},
	{needles: []string{"lingerie"}, category: CategoryLingerie},
	{needles: []string{"socks"}, category: CategorySocks},
}

var descriptionPolicy = bluemonday.UGCPolicy()

// CategoryFromName maps an upstream category name to a storefront category.
// Names matching no rule land in Bra.
func CategoryFromName(name string) Category {
	lower := strings.ToLower(name)
	for _, rule := range categoryRules {
		for _, needle := range rule.needles {
			if strings.Contains(lower, needle) {
				return rule.category
			}
		}
	}
	return CategoryBra
}

// Normalize maps one raw upstream product onto the catalog model.
func Normalize(raw commerce.Product) (Product, error) {
	if raw.ID <= 0 {
		return Product{}, fmt.Errorf("%w: missing id", ErrInvalidProduct)
	}
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		name = nameFromSlug(raw.Slug, raw.ID)
	}

	p := Product{
		ID:                   commerce.ProductID(raw.ID),
		Slug:                 strings.TrimSpace(raw.Slug),
		Name:                 name,
		NameLocalized:        strings.TrimSpace(raw.Meta(metaTitleAR)),
		Price:                parsePrice(raw.Price, raw.RegularPrice),
		Category:             CategoryBra,
		Description:          sanitizeDescription(firstNonBlank(raw.ShortDescription, raw.Description)),
		DescriptionLocalized: sanitizeDescription(raw.Meta(metaDescriptionAR)),
		Features:             splitList(raw.Meta(metaFeatures)),
		Materials:            strings.TrimSpace(raw.Meta(metaMaterials)),
		OutOfStock:           StockStatus(raw.StockStatus) == StockOutOfStock,
	}
	if len(raw.Categories) > 0 {
		p.Category = CategoryFromName(raw.Categories[0].Name)
	}
	if raw.StockQuantity != nil {
		qty := *raw.StockQuantity
		p.StockQuantity = &qty
	}

	for _, img := range raw.Images {
		if src := strings.TrimSpace(img.Src); src != "" {
			p.Images = append(p.Images, src)
		}
	}
	if len(p.Images) > 0 {
		p.Image = p.Images[0]
	} else {
		p.Image = PlaceholderImage
		p.Images = []string{PlaceholderImage}
	}

	if attr, ok := ResolveAttribute(raw.Attributes, FacetSize); ok {
		p.Sizes = dedupe(attr.Options)
	} else {
		p.Sizes = sizesFromTags(raw.Tags)
	}
	if attr, ok := ResolveAttribute(raw.Attributes, FacetColor); ok {
		p.Colors = colorsFromOptions(attr.Options)
	} else {
		p.Colors = colorsFromTags(raw.Tags)
	}
	if p.Sizes == nil {
		p.Sizes = []string{}
	}
	if p.Colors == nil {
		p.Colors = []Color{}
	}
	if p.Features == nil {
		p.Features = []string{}
	}
	return p, nil
}

// NormalizeVariation maps a raw variation record, resolving attribute names through the synonym table.
func NormalizeVariation(raw commerce.Variation) ProductVariation {
	v := ProductVariation{
		ID:          raw.ID,
		StockStatus: StockInStock,
		Price:       parsePrice(raw.Price, raw.RegularPrice),
	}
	if StockStatus(raw.StockStatus) == StockOutOfStock {
		v.StockStatus = StockOutOfStock
	}
	for _, attr := range raw.Attributes {
		option := strings.TrimSpace(attr.Option)
		if option == "" {
			continue
		}
		switch {
		case MatchesFacet(attr.Name, attr.Slug, FacetSize):
			v.Attributes.Size = option
		case MatchesFacet(attr.Name, attr.Slug, FacetColor):
			v.Attributes.Color = DecodeColor(option).Name
		}
	}
	return v
}

// NormalizeAll decodes and normalizes a batch of raw records. Records that
// fail are reported and skipped.
func NormalizeAll(ctx context.Context, records []json.RawMessage, reporter observability.Reporter) []Product {
	if reporter == nil {
		reporter = observability.NopReporter{}
	}
	products := make([]Product, 0, len(records))
	for i, record := range records {
		raw, err := commerce.DecodeProduct(record)
		if err != nil {
			reporter.Report(ctx, err, zap.Int("record", i))
			continue
		}
		p, err := Normalize(raw)
		if err != nil {
			reporter.Report(ctx, err, zap.Int("record", i), zap.Int64("productID", raw.ID))
			continue
		}
		products = append(products, p)
	}
	return products
}

// parsePrice reads the first non-blank amount. An unparseable one is 0; later
// amounts are only consulted when the earlier ones are blank.
func parsePrice(values ...commerce.Amount) float64 {
	for _, v := range values {
		s := strings.TrimSpace(string(v))
		if s == "" {
			continue
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0
		}
		f, _ := d.Float64()
		return f
	}
	return 0
}

// nameFromSlug names a product upstream left unnamed: "soft-cup-bra" reads
// "Soft Cup Bra", and without a slug it is "Product <id>".
func nameFromSlug(slug string, id int64) string {
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	if len(words) == 0 {
		return fmt.Sprintf("Product %d", id)
	}
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func sanitizeDescription(html string) string {
	return strings.TrimSpace(descriptionPolicy.Sanitize(html))
}

func sizesFromTags(tags []commerce.Term) []string {
	var sizes []string
	seen := map[string]struct{}{}
	for _, tag := range tags {
		for _, token := range tokenize(tag.Name) {
			size, ok := whitelistedSize(token)
			if !ok {
				continue
			}
			if _, dup := seen[size]; dup {
				continue
			}
			seen[size] = struct{}{}
			sizes = append(sizes, size)
		}
	}
	return sizes
}

func whitelistedSize(token string) (string, bool) {
	for _, size := range sizeWhitelist {
		if strings.EqualFold(size, token) {
			return size, true
		}
	}
	return "", false
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func colorsFromOptions(options []string) []Color {
	var colors []Color
	seen := map[string]struct{}{}
	for _, option := range options {
		if strings.TrimSpace(option) == "" {
			continue
		}
		c := DecodeColor(option)
		if _, dup := seen[c.Name]; dup {
			continue
		}
		seen[c.Name] = struct{}{}
		colors = append(colors, c)
	}
	return colors
}

func colorsFromTags(tags []commerce.Term) []Color {
	var colors []Color
	seen := map[string]struct{}{}
	for _, tag := range tags {
		c, ok := colorFromTag(tag.Name)
		if !ok {
			continue
		}
		if _, dup := seen[c.Name]; dup {
			continue
		}
		seen[c.Name] = struct{}{}
		colors = append(colors, c)
	}
	return colors
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func splitList(value string) []string {
	parts := strings.FieldsFunc(value, func(r rune) bool { return r == '\n' || r == '|' })
	return dedupe(parts)
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
