package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMarksActive(t *testing.T) {
	items := Build(Main, "/pages/size-guide")
	require.Len(t, items, len(Main))
	assert.False(t, items[0].Active)
	assert.True(t, items[1].Active)

	items = Build(Main, "/shop")
	assert.True(t, items[0].Active)
}

func TestBreadcrumbs(t *testing.T) {
	crumbs := Breadcrumbs("/", "")
	require.Len(t, crumbs, 1)
	assert.True(t, crumbs[0].Active)

	crumbs = Breadcrumbs("/products/everyday-comfort-bra", "Everyday Comfort Bra")
	require.Len(t, crumbs, 3)
	assert.Equal(t, "nav.shop", crumbs[1].LabelKey)
	assert.False(t, crumbs[1].Active)
	assert.Equal(t, "Everyday Comfort Bra", crumbs[2].Label)
	assert.True(t, crumbs[2].Active)

	crumbs = Breadcrumbs("/pages/size-guide", "")
	require.Len(t, crumbs, 2)
	assert.Equal(t, "Size guide", crumbs[1].Label)

	crumbs = Breadcrumbs("/shop", "")
	require.Len(t, crumbs, 2)
	assert.True(t, crumbs[1].Active)
}

func TestBuildHonoursAliases(t *testing.T) {
	items := Build(Main, "/")
	assert.True(t, items[0].Active, "the home page is the shop")
	assert.False(t, items[1].Active)

	items = Build(Footer, "/pages/returns/")
	assert.True(t, items[1].Active)
}

func TestTitleFromSegment(t *testing.T) {
	assert.Equal(t, "Size guide", titleFromSegment("size-guide"))
	assert.Equal(t, "About us", titleFromSegment("about_us"))
	assert.Equal(t, "", titleFromSegment(""))
}
