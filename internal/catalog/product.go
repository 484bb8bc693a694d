package catalog

import "strings"

// Category is the closed set of storefront categories.
type Category string

const (
	CategoryBra      Category = "Bra"
	CategoryPants    Category = "Pants"
	CategoryLingerie Category = "Lingerie"
	CategorySocks    Category = "Socks"

	// CategoryAll and CategoryFavorites are filter sentinels, never assigned to a product.
	CategoryAll       Category = "All"
	CategoryFavorites Category = "Favorites"
)

var categories = []Category{CategoryBra, CategoryPants, CategoryLingerie, CategorySocks}

// Categories returns the product categories in display order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// ParseCategory matches a category or filter sentinel case-insensitively.
// An empty value resolves to CategoryAll.
func ParseCategory(value string) (Category, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return CategoryAll, true
	}
	for _, c := range append(Categories(), CategoryAll, CategoryFavorites) {
		if strings.EqualFold(string(c), value) {
			return c, true
		}
	}
	return "", false
}

// Color is a named swatch.
type Color struct {
	Name string `json:"name" yaml:"name"`
	Hex  string `json:"hex" yaml:"hex"`
}

// StockStatus mirrors the upstream stock flag.
type StockStatus string

const (
	StockInStock    StockStatus = "instock"
	StockOutOfStock StockStatus = "outofstock"
)

// VariationAttributes is a partial selector; an empty field matches any value of that facet.
type VariationAttributes struct {
	Size  string `json:"size,omitempty" yaml:"size,omitempty"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// ProductVariation is a size/color stock record.
type ProductVariation struct {
	ID          int64               `json:"id,omitempty" yaml:"id,omitempty"`
	Attributes  VariationAttributes `json:"attributes" yaml:"attributes"`
	StockStatus StockStatus         `json:"stockStatus" yaml:"stockStatus"`
	// Price overrides the product price for this combination when non-zero.
	Price float64 `json:"price,omitempty" yaml:"price,omitempty"`
}

// OutOfStock reports whether the variation is flagged out of stock.
func (v ProductVariation) OutOfStock() bool {
	return v.StockStatus == StockOutOfStock
}

// Product is the canonical catalog entry rendered by the storefront.
type Product struct {
	ID                   string             `json:"id" yaml:"id"`
	Slug                 string             `json:"slug,omitempty" yaml:"slug,omitempty"`
	Name                 string             `json:"name" yaml:"name"`
	NameLocalized        string             `json:"nameLocalized,omitempty" yaml:"nameLocalized,omitempty"`
	Price                float64            `json:"price" yaml:"price"`
	Category             Category           `json:"category" yaml:"category"`
	Image                string             `json:"image" yaml:"image"`
	Images               []string           `json:"images" yaml:"images"`
	Description          string             `json:"description" yaml:"description"`
	DescriptionLocalized string             `json:"descriptionLocalized,omitempty" yaml:"descriptionLocalized,omitempty"`
	Features             []string           `json:"features" yaml:"features"`
	Materials            string             `json:"materials" yaml:"materials"`
	Sizes                []string           `json:"sizes" yaml:"sizes"`
	Colors               []Color            `json:"colors" yaml:"colors"`
	OutOfStock           bool               `json:"outOfStock" yaml:"outOfStock"`
	StockQuantity        *int               `json:"stockQuantity,omitempty" yaml:"stockQuantity,omitempty"`
	Variations           []ProductVariation `json:"variations,omitempty" yaml:"variations,omitempty"`
}

// DisplayName returns the localized title for lang, falling back to Name.
func (p Product) DisplayName(lang string) string {
	if lang == "ar" && strings.TrimSpace(p.NameLocalized) != "" {
		return p.NameLocalized
	}
	return p.Name
}

// DisplayDescription returns the localized description for lang, falling back to Description.
func (p Product) DisplayDescription(lang string) string {
	if lang == "ar" && strings.TrimSpace(p.DescriptionLocalized) != "" {
		return p.DescriptionLocalized
	}
	return p.Description
}

// HasSize reports whether size is declared on the product.
func (p Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// HasColor reports whether a color with the given name is declared on the product.
func (p Product) HasColor(name string) bool {
	for _, c := range p.Colors {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Clone deep-copies the product so callers can hand out independent snapshots.
func (p Product) Clone() Product {
	cp := p
	cp.Images = cloneStrings(p.Images)
	cp.Features = cloneStrings(p.Features)
	cp.Sizes = cloneStrings(p.Sizes)
	if p.Colors != nil {
		cp.Colors = append([]Color(nil), p.Colors...)
	}
	if p.StockQuantity != nil {
		qty := *p.StockQuantity
		cp.StockQuantity = &qty
	}
	if p.Variations != nil {
		cp.Variations = append([]ProductVariation(nil), p.Variations...)
	}
	return cp
}

// CloneProducts deep-copies a product list.
func CloneProducts(src []Product) []Product {
	if src == nil {
		return nil
	}
	out := make([]Product, len(src))
	for i, p := range src {
		out[i] = p.Clone()
	}
	return out
}

// FindByID returns the product with the given id.
func FindByID(products []Product, id string) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// FindBySlug returns the product whose slug (or id, for slug-less seed entries) matches.
func FindBySlug(products []Product, slug string) (Product, bool) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return Product{}, false
	}
	for _, p := range products {
		if p.Slug == slug {
			return p, true
		}
	}
	return FindByID(products, slug)
}

func cloneStrings(src []string) []string {
	if src == nil {
		return nil
	}
	return append([]string(nil), src...)
}
