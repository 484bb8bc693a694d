package format

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	cases := []struct {
		amount decimal.Decimal
		lang   string
		want   string
	}{
		{decimal.NewFromInt(450), "en", "EGP 450"},
		{decimal.NewFromInt(1250), "en", "EGP 1,250"},
		{decimal.RequireFromString("1234567.5"), "en", "EGP 1,234,567.50"},
		{decimal.NewFromInt(60), "ar", "60 ج.م"},
		{decimal.NewFromInt(-1500), "en", "EGP -1,500"},
		{decimal.Zero, "en", "EGP 0"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Currency(tc.amount, tc.lang))
	}
}

func TestPrice(t *testing.T) {
	assert.Equal(t, "EGP 199.50", Price(199.5, "en"))
}
