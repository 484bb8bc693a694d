package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeColorPipeForm(t *testing.T) {
	assert.Equal(t, Color{Name: "X", Hex: "#ABCDEF"}, DecodeColor("X|#ABCDEF"))
	assert.Equal(t, Color{Name: "Deep Plum", Hex: "#4B1F3A"}, DecodeColor("  Deep Plum |  #4B1F3A "))
	assert.Equal(t, Color{Name: "Odd", Hex: "#1|2"}, DecodeColor("Odd|#1|2"), "only the first pipe splits")
}

func TestDecodeColorPalette(t *testing.T) {
	assert.Equal(t, Color{Name: "Black", Hex: "#1A1A1A"}, DecodeColor("Black"))
	assert.Equal(t, Color{Name: "teal", Hex: "#5B7B7C"}, DecodeColor("teal"), "case-insensitive lookup keeps the given name")
	assert.Equal(t, Color{Name: "وردي", Hex: "#FCE4E4"}, DecodeColor(" وردي "))
}

func TestDecodeColorUnknownFallsBackToName(t *testing.T) {
	assert.Equal(t, Color{Name: "Chartreuse", Hex: "Chartreuse"}, DecodeColor("Chartreuse"))
}

func TestPaletteColor(t *testing.T) {
	hex, ok := PaletteColor("GREY")
	assert.True(t, ok)
	assert.Equal(t, "#808080", hex)

	_, ok = PaletteColor("")
	assert.False(t, ok)
}
