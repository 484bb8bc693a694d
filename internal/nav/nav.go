package nav

import (
	"path"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Item is a navigation entry. Aliases are other paths that render the same page.
type Item struct {
	Path     string
	LabelKey string
	Aliases  []string
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href     string
	LabelKey string
	Active   bool
}

// Crumb is a breadcrumb entry. If LabelKey is empty, use Label.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

// Main is the header navigation.
var Main = []Item{
	{Path: "/shop", LabelKey: "nav.shop", Aliases: []string{"/"}},
	{Path: "/pages/size-guide", LabelKey: "nav.size_guide"},
	{Path: "/pages/shipping", LabelKey: "nav.shipping"},
}

// Footer links the static content pages.
var Footer = []Item{
	{Path: "/pages/shipping", LabelKey: "nav.shipping"},
	{Path: "/pages/returns", LabelKey: "nav.returns"},
	{Path: "/pages/size-guide", LabelKey: "nav.size_guide"},
	{Path: "/pages/about", LabelKey: "nav.about"},
}

// sections maps top-level path segments to their crumb label.
var sections = map[string]Item{
	"shop":     {Path: "/shop", LabelKey: "nav.shop"},
	"products": {Path: "/shop", LabelKey: "nav.shop"},
}

// Build renders items for currentPath. An item is active on its own path,
// on an alias, and below its path (/shop/x keeps Shop active).
func Build(items []Item, currentPath string) []RenderedItem {
	current := cleanPath(currentPath)
	out := make([]RenderedItem, len(items))
	for i, it := range items {
		out[i] = RenderedItem{
			Href:     it.Path,
			LabelKey: it.LabelKey,
			Active:   current == it.Path || slices.Contains(it.Aliases, current) || strings.HasPrefix(current, it.Path+"/"),
		}
	}
	return out
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	return path.Clean("/" + strings.TrimPrefix(p, "/"))
}

// Breadcrumbs builds Home, the section and the current page. leaf replaces
// the prettified last segment when set, e.g. a product name.
func Breadcrumbs(currentPath, leaf string) []Crumb {
	current := cleanPath(currentPath)
	crumbs := []Crumb{{Href: "/", LabelKey: "nav.home", Active: current == "/"}}
	if current == "/" {
		return crumbs
	}

	parts := strings.Split(strings.TrimPrefix(current, "/"), "/")
	if section, ok := sections[parts[0]]; ok {
		crumbs = append(crumbs, Crumb{Href: section.Path, LabelKey: section.LabelKey, Active: len(parts) == 1})
	} else if len(parts) == 1 {
		crumbs = append(crumbs, Crumb{Href: "/" + parts[0], Label: titleFromSegment(parts[0]), Active: true})
	}
	if len(parts) > 1 {
		label := leaf
		if label == "" {
			label = titleFromSegment(parts[len(parts)-1])
		}
		crumbs = append(crumbs, Crumb{Href: current, Label: label, Active: true})
	}
	return crumbs
}

// titleFromSegment turns "size-guide" into "Size guide".
func titleFromSegment(seg string) string {
	s := strings.NewReplacer("-", " ", "_", " ").Replace(seg)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
