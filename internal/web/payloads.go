package web

import (
	"github.com/shopspring/decimal"

	"github.com/luravie/storefront/internal/cart"
	"github.com/luravie/storefront/internal/catalog"
	"github.com/luravie/storefront/internal/content"
	"github.com/luravie/storefront/internal/format"
)

type productPayload struct {
	catalog.Product
	DisplayName     string `json:"displayName"`
	DescriptionText string `json:"descriptionText"`
	PriceLabel      string `json:"priceLabel"`
	Favorite        bool   `json:"favorite"`
}

func newProductPayload(p catalog.Product, lang string, favorites catalog.IDSet) productPayload {
	return productPayload{
		Product:         p,
		DisplayName:     p.DisplayName(lang),
		DescriptionText: content.PlainText(p.DisplayDescription(lang)),
		PriceLabel:      format.Price(p.Price, lang),
		Favorite:        favorites.Has(p.ID),
	}
}

type facetsPayload struct {
	Sizes  []string        `json:"sizes"`
	Colors []catalog.Color `json:"colors"`
}

type filterPayload struct {
	Category string   `json:"category"`
	Sizes    []string `json:"sizes"`
	Colors   []string `json:"colors"`
	Query    string   `json:"q"`
	Sort     string   `json:"sort"`
}

type productListPayload struct {
	Products []productPayload `json:"products"`
	Count    int              `json:"count"`
	Total    int              `json:"total"`
	Origin   catalog.Origin   `json:"origin"`
	Filter   filterPayload    `json:"filter"`
	Facets   facetsPayload    `json:"facets"`
}

type availabilityPayload struct {
	ProductID             string          `json:"productId"`
	Size                  string          `json:"size,omitempty"`
	Color                 string          `json:"color,omitempty"`
	SizeOutOfStock        bool            `json:"sizeOutOfStock"`
	ColorOutOfStock       bool            `json:"colorOutOfStock"`
	CombinationOutOfStock bool            `json:"combinationOutOfStock"`
	VariationID           int64           `json:"variationId,omitempty"`
	Price                 float64         `json:"price"`
	Sizes                 map[string]bool `json:"sizes"`
	Colors                map[string]bool `json:"colors"`
}

type cartLinePayload struct {
	ID          string `json:"id"`
	ProductID   string `json:"productId"`
	Slug        string `json:"slug,omitempty"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	Size        string `json:"size,omitempty"`
	Color       string `json:"color,omitempty"`
	Quantity    int    `json:"qty"`
	VariationID int64  `json:"variationId,omitempty"`
	UnitPrice   string `json:"unitPrice"`
	Total       string `json:"total"`
	TotalLabel  string `json:"totalLabel"`
	OutOfStock  bool   `json:"outOfStock"`
}

type cartPayload struct {
	Lines         []cartLinePayload `json:"lines"`
	Missing       []string          `json:"missing"`
	ItemCount     int               `json:"itemCount"`
	Subtotal      string            `json:"subtotal"`
	Shipping      string            `json:"shipping"`
	Total         string            `json:"total"`
	SubtotalLabel string            `json:"subtotalLabel"`
	ShippingLabel string            `json:"shippingLabel"`
	TotalLabel    string            `json:"totalLabel"`
}

func newCartPayload(totals cart.Totals, lang string) cartPayload {
	out := cartPayload{
		Lines:         make([]cartLinePayload, 0, len(totals.Lines)),
		Missing:       make([]string, 0, len(totals.Missing)),
		ItemCount:     totals.ItemCount,
		Subtotal:      money(totals.Subtotal),
		Shipping:      money(totals.Shipping),
		Total:         money(totals.Total),
		SubtotalLabel: format.Currency(totals.Subtotal, lang),
		ShippingLabel: format.Currency(totals.Shipping, lang),
		TotalLabel:    format.Currency(totals.Total, lang),
	}
	for _, line := range totals.Lines {
		out.Lines = append(out.Lines, cartLinePayload{
			ID:          line.ID,
			ProductID:   line.ProductID,
			Slug:        line.Product.Slug,
			Name:        line.Product.DisplayName(lang),
			Image:       line.Product.Image,
			Size:        line.Size,
			Color:       line.Color,
			Quantity:    line.Quantity,
			VariationID: line.VariationID,
			UnitPrice:   money(line.UnitPrice),
			Total:       money(line.Total),
			TotalLabel:  format.Currency(line.Total, lang),
			OutOfStock:  line.OutOfStock,
		})
	}
	for _, line := range totals.Missing {
		out.Missing = append(out.Missing, line.ID)
	}
	return out
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
