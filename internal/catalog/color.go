package catalog

import "strings"

type paletteEntry struct {
	names []string
	hex   string
}

// palette maps bilingual color names to swatch values.
var palette = []paletteEntry{
	{names: []string{"Black", "أسود"}, hex: "#1A1A1A"},
	{names: []string{"Nude", "بيج"}, hex: "#E3C5AF"},
	{names: []string{"Teal", "تيل"}, hex: "#5B7B7C"},
	{names: []string{"Coral", "كورال"}, hex: "#E59595"},
	{names: []string{"Rose", "وردي"}, hex: "#FCE4E4"},
	{names: []string{"White", "أبيض"}, hex: "#FFFFFF"},
	{names: []string{"Grey", "رمادي"}, hex: "#808080"},
}

// PaletteColor looks name up in the palette, exact match first and then
// case-insensitively.
func PaletteColor(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	for _, entry := range palette {
		for _, n := range entry.names {
			if n == name {
				return entry.hex, true
			}
		}
	}
	for _, entry := range palette {
		for _, n := range entry.names {
			if strings.EqualFold(n, name) {
				return entry.hex, true
			}
		}
	}
	return "", false
}

// DecodeColor turns an upstream color option into a Color.
//
// "Name|#hex" is split on the first pipe and the hex is taken as given.
// A bare name goes through the palette. Unknown names come back with the
// name itself as the hex value; the swatch renders wrong but nothing fails.
func DecodeColor(option string) Color {
	if name, hex, ok := strings.Cut(option, "|"); ok {
		return Color{Name: strings.TrimSpace(name), Hex: strings.TrimSpace(hex)}
	}
	name := strings.TrimSpace(option)
	if hex, ok := PaletteColor(name); ok {
		return Color{Name: name, Hex: hex}
	}
	return Color{Name: name, Hex: name}
}

// colorFromTag finds the first palette name contained in a free-text tag.
func colorFromTag(tag string) (Color, bool) {
	lower := strings.ToLower(tag)
	for _, entry := range palette {
		for _, n := range entry.names {
			if strings.Contains(lower, strings.ToLower(n)) {
				return Color{Name: n, Hex: entry.hex}, true
			}
		}
	}
	return Color{}, false
}
