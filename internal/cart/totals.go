package cart

import (
	"github.com/shopspring/decimal"

	"github.com/luravie/storefront/internal/catalog"
)

// PricedLine is a cart line resolved against the catalog.
type PricedLine struct {
	Line
	Product     catalog.Product
	VariationID int64
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
	OutOfStock  bool
}

// Totals is the priced cart.
type Totals struct {
	Lines     []PricedLine
	Missing   []Line
	ItemCount int
	Subtotal  decimal.Decimal
	Shipping  decimal.Decimal
	Total     decimal.Decimal
}

// Price resolves every line against products and their variations. Lines
// whose product left the catalog are returned in Missing and not charged.
// Shipping is only added to a non-empty cart.
func Price(c Cart, products []catalog.Product, variations map[string][]catalog.ProductVariation, shipping decimal.Decimal) Totals {
	totals := Totals{Subtotal: decimal.Zero, Shipping: decimal.Zero, Total: decimal.Zero}
	for _, line := range c.Lines {
		p, ok := catalog.FindByID(products, line.ProductID)
		if !ok {
			totals.Missing = append(totals.Missing, line)
			continue
		}

		vars := variations[p.ID]
		if vars == nil {
			vars = p.Variations
		}
		priced := PricedLine{Line: line, Product: p, OutOfStock: p.OutOfStock}
		unit := p.Price
		// A line without options is the product itself, never one of its variations.
		if line.Size != "" || line.Color != "" {
			if v, found := catalog.FindVariation(vars, line.Size, line.Color); found {
				priced.VariationID = v.ID
				unit = catalog.ResolvePrice(p, &v)
				priced.OutOfStock = v.OutOfStock()
			}
		}
		priced.UnitPrice = decimal.NewFromFloat(unit)
		priced.Total = priced.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))

		totals.Lines = append(totals.Lines, priced)
		totals.ItemCount += line.Quantity
		totals.Subtotal = totals.Subtotal.Add(priced.Total)
	}
	if len(totals.Lines) > 0 {
		totals.Shipping = shipping
	}
	totals.Total = totals.Subtotal.Add(totals.Shipping)
	return totals
}
