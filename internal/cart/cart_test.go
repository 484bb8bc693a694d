package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luravie/storefront/internal/catalog"
)

func TestAddMergesIdenticalSelections(t *testing.T) {
	var c Cart
	first, err := c.Add("1", "M", "Black", 2)
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := c.Add("1", " M ", "Black", 3)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)

	capped, err := c.Add("1", "M", "Black", 9)
	require.NoError(t, err)
	assert.Equal(t, MaxQuantity, capped.Quantity)

	other, err := c.Add("1", "L", "Black", 1)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
	assert.Len(t, c.Lines, 2)
	assert.Equal(t, 11, c.Count())
}

func TestAddValidation(t *testing.T) {
	var c Cart
	_, err := c.Add("", "M", "", 1)
	assert.ErrorIs(t, err, ErrMissingProduct)
	_, err = c.Add("1", "M", "", 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = c.Add("1", "M", "", MaxQuantity+1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.True(t, c.Empty())
}

func TestSetQuantityAndRemove(t *testing.T) {
	var c Cart
	line, err := c.Add("1", "S", "", 1)
	require.NoError(t, err)

	require.NoError(t, c.SetQuantity(line.ID, 4))
	assert.Equal(t, 4, c.Lines[0].Quantity)

	assert.ErrorIs(t, c.SetQuantity(line.ID, 11), ErrInvalidQuantity)
	assert.ErrorIs(t, c.SetQuantity("missing", 1), ErrLineNotFound)

	require.NoError(t, c.SetQuantity(line.ID, 0))
	assert.True(t, c.Empty())
	assert.ErrorIs(t, c.Remove(line.ID), ErrLineNotFound)
}

func TestProductIDs(t *testing.T) {
	var c Cart
	_, _ = c.Add("2", "S", "", 1)
	_, _ = c.Add("1", "S", "", 1)
	_, _ = c.Add("2", "M", "", 1)
	assert.Equal(t, []string{"2", "1"}, c.ProductIDs())
}

func TestPrice(t *testing.T) {
	products := []catalog.Product{
		{ID: "1", Price: 450},
		{ID: "2", Price: 120, OutOfStock: true},
	}
	variations := map[string][]catalog.ProductVariation{
		"1": {
			{ID: 11, Attributes: catalog.VariationAttributes{Size: "M", Color: "Black"}, StockStatus: catalog.StockOutOfStock},
			{ID: 12, Attributes: catalog.VariationAttributes{Size: "L"}, StockStatus: catalog.StockInStock, Price: 480},
		},
	}

	c := Cart{Lines: []Line{
		{ID: "a", ProductID: "1", Size: "M", Color: "Black", Quantity: 1},
		{ID: "b", ProductID: "1", Size: "L", Color: "Nude", Quantity: 2},
		{ID: "c", ProductID: "2", Quantity: 3},
		{ID: "d", ProductID: "gone", Quantity: 1},
	}}

	totals := Price(c, products, variations, decimal.NewFromInt(60))
	require.Len(t, totals.Lines, 3)
	require.Len(t, totals.Missing, 1)

	assert.Equal(t, int64(11), totals.Lines[0].VariationID)
	assert.True(t, totals.Lines[0].OutOfStock)
	assert.Equal(t, "450", totals.Lines[0].UnitPrice.String())

	assert.Equal(t, int64(12), totals.Lines[1].VariationID)
	assert.Equal(t, "960", totals.Lines[1].Total.String())

	assert.True(t, totals.Lines[2].OutOfStock)
	assert.Equal(t, "360", totals.Lines[2].Total.String())

	assert.Equal(t, 6, totals.ItemCount)
	assert.Equal(t, "1770", totals.Subtotal.String())
	assert.Equal(t, "60", totals.Shipping.String())
	assert.Equal(t, "1830", totals.Total.String())
}

func TestPriceEmptyCartHasNoShipping(t *testing.T) {
	totals := Price(Cart{}, nil, nil, decimal.NewFromInt(60))
	assert.True(t, totals.Shipping.IsZero())
	assert.True(t, totals.Total.IsZero())
}

func TestPriceLineWithoutOptionsIgnoresVariations(t *testing.T) {
	products := []catalog.Product{{ID: "7", Price: 300}}
	variations := map[string][]catalog.ProductVariation{
		"7": {
			{ID: 71, Attributes: catalog.VariationAttributes{Size: "S", Color: "Black"}, StockStatus: catalog.StockOutOfStock, Price: 999},
			{ID: 72, Attributes: catalog.VariationAttributes{Size: "M", Color: "Black"}, StockStatus: catalog.StockInStock},
		},
	}

	totals := Price(Cart{Lines: []Line{{ID: "a", ProductID: "7", Quantity: 2}}}, products, variations, decimal.Zero)
	require.Len(t, totals.Lines, 1)
	line := totals.Lines[0]
	assert.Zero(t, line.VariationID)
	assert.False(t, line.OutOfStock)
	assert.Equal(t, "300", line.UnitPrice.String())
	assert.Equal(t, "600", line.Total.String())
}
