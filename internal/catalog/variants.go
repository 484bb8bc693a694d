package catalog

// IsSizeOutOfStock reports whether every variation carrying size is out of
// stock. With no matching variations the size is assumed to be available.
func IsSizeOutOfStock(variations []ProductVariation, size string) bool {
	matched := false
	for _, v := range variations {
		if v.Attributes.Size != size {
			continue
		}
		matched = true
		if !v.OutOfStock() {
			return false
		}
	}
	return matched
}

// IsColorOutOfStock is IsSizeOutOfStock keyed on color name.
func IsColorOutOfStock(variations []ProductVariation, color string) bool {
	matched := false
	for _, v := range variations {
		if v.Attributes.Color != color {
			continue
		}
		matched = true
		if !v.OutOfStock() {
			return false
		}
	}
	return matched
}

// IsCombinationOutOfStock reports the stock flag of the variation FindVariation selects.
func IsCombinationOutOfStock(variations []ProductVariation, size, color string) bool {
	v, ok := FindVariation(variations, size, color)
	if !ok {
		return false
	}
	return v.OutOfStock()
}

// FindVariation returns the first variation compatible with the supplied
// size and color. Empty arguments are not constrained, and an empty
// attribute on a variation matches any value.
//
// When several variations match, input order decides. Overlapping upstream
// records therefore resolve to whichever comes first.
func FindVariation(variations []ProductVariation, size, color string) (ProductVariation, bool) {
	for _, v := range variations {
		if size != "" && v.Attributes.Size != "" && v.Attributes.Size != size {
			continue
		}
		if color != "" && v.Attributes.Color != "" && v.Attributes.Color != color {
			continue
		}
		return v, true
	}
	return ProductVariation{}, false
}

// ResolvePrice returns the variation override when set, the product price otherwise.
func ResolvePrice(p Product, v *ProductVariation) float64 {
	if v != nil && v.Price > 0 {
		return v.Price
	}
	return p.Price
}
