package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCatalogShape(t *testing.T) {
	products := Seed()
	require.Len(t, products, 6)

	seen := map[string]bool{}
	for _, p := range products {
		assert.False(t, seen[p.ID], "duplicate seed id %s", p.ID)
		seen[p.ID] = true

		assert.NotEmpty(t, p.Name)
		assert.NotEmpty(t, p.Slug)
		assert.Positive(t, p.Price)
		assert.Contains(t, Categories(), p.Category)
		require.NotEmpty(t, p.Images)
		assert.Equal(t, p.Images[0], p.Image)
		assert.NotEmpty(t, p.Sizes)
		assert.NotEmpty(t, p.Colors)
	}
}

func TestSeedReturnsIndependentCopies(t *testing.T) {
	first := Seed()
	first[0].Name = "mutated"
	first[0].Sizes[0] = "mutated"

	second := Seed()
	assert.NotEqual(t, "mutated", second[0].Name)
	assert.NotEqual(t, "mutated", second[0].Sizes[0])
}
