package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

const arabicPoundSuffix = "ج.م"

// Currency formats an EGP amount for lang. Whole amounts drop the fraction.
// Example: Currency(decimal.NewFromInt(1250), "en") => "EGP 1,250"
func Currency(amount decimal.Decimal, lang string) string {
	neg := amount.IsNegative()
	amount = amount.Abs()

	var digits string
	if amount.Equal(amount.Truncate(0)) {
		digits = thousandSep(amount.StringFixed(0))
	} else {
		fixed := amount.StringFixed(2)
		whole, frac, _ := strings.Cut(fixed, ".")
		digits = thousandSep(whole) + "." + frac
	}
	if neg {
		digits = "-" + digits
	}

	if strings.EqualFold(lang, "ar") {
		return digits + " " + arabicPoundSuffix
	}
	return "EGP " + digits
}

// Price formats a float catalog price.
func Price(amount float64, lang string) string {
	return Currency(decimal.NewFromFloat(amount), lang)
}

func thousandSep(s string) string {
	var b strings.Builder
	for i, c := range s {
		if i != 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}
