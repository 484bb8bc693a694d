package i18n

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var embedded embed.FS

// Bundle holds translations per locale and negotiates the request locale.
type Bundle struct {
	dict     map[string]map[string]string
	fallback string
	// order lists loaded locales with the fallback first; matcher indexes follow it.
	order   []string
	matcher language.Matcher
}

// rtl lists locales written right to left.
var rtl = map[string]bool{"ar": true}

// Load reads the embedded locale files.
func Load(fallback string, supported []string) (*Bundle, error) {
	return LoadFS(embedded, "locales", fallback, supported)
}

// LoadFS reads <dir>/<locale>.json for every supported locale from fsys.
// Locales without a file are skipped; the fallback one is required.
func LoadFS(fsys fs.FS, dir, fallback string, supported []string) (*Bundle, error) {
	if len(supported) == 0 {
		supported = []string{"en", "ar"}
	}
	b := &Bundle{dict: map[string]map[string]string{}, fallback: fallback}

	ordered := append([]string{fallback}, supported...)
	var tags []language.Tag
	for _, l := range ordered {
		if _, seen := b.dict[l]; seen {
			continue
		}
		raw, err := fs.ReadFile(fsys, path.Join(dir, l+".json"))
		if errors.Is(err, fs.ErrNotExist) && l != fallback {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("i18n: load locale %s: %w", l, err)
		}
		tag, err := language.Parse(l)
		if err != nil {
			return nil, fmt.Errorf("i18n: locale %s: %w", l, err)
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("i18n: unmarshal %s: %w", l, err)
		}
		b.dict[l] = m
		b.order = append(b.order, l)
		tags = append(tags, tag)
	}
	b.matcher = language.NewMatcher(tags)
	return b, nil
}

// Supported lists the loaded locales, fallback first.
func (b *Bundle) Supported() []string {
	return append([]string(nil), b.order...)
}

// Fallback returns the configured fallback language.
func (b *Bundle) Fallback() string { return b.fallback }

// IsSupported reports whether lang has a loaded dictionary.
func (b *Bundle) IsSupported(lang string) bool {
	_, ok := b.dict[lang]
	return ok
}

// T returns translation for key in lang, falling back to default and finally key.
func (b *Bundle) T(lang, key string) string {
	if m, ok := b.dict[lang]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if m, ok := b.dict[b.fallback]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return key
}

// Resolve chooses the best loaded locale for an Accept-Language header.
// Regional variants match their base language (ar-EG is ar).
func (b *Bundle) Resolve(acceptLang string) string {
	prefs, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(prefs) == 0 {
		return b.fallback
	}
	_, index, confidence := b.matcher.Match(prefs...)
	if confidence == language.No || index < 0 || index >= len(b.order) {
		return b.fallback
	}
	return b.order[index]
}

// Normalize returns lang when supported, the fallback otherwise.
func (b *Bundle) Normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if b.IsSupported(lang) {
		return lang
	}
	return b.fallback
}

// Dir returns the text direction for lang.
func Dir(lang string) string {
	if rtl[lang] {
		return "rtl"
	}
	return "ltr"
}
