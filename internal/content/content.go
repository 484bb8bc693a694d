package content

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

//go:embed pages/*/*.md
var embedded embed.FS

// ErrNotFound is returned when no locale has the requested page.
var ErrNotFound = errors.New("content: page not found")

// Page is a rendered static page.
type Page struct {
	Slug      string
	Lang      string
	Title     string
	Summary   string
	HTML      template.HTML
	UpdatedAt time.Time
}

type frontMatter struct {
	Title     string `yaml:"title"`
	Summary   string `yaml:"summary"`
	UpdatedAt string `yaml:"updated_at"`
}

// Library serves markdown pages stored as <dir>/<lang>/<slug>.md.
type Library struct {
	fsys     fs.FS
	dir      string
	fallback string
	md       goldmark.Markdown
	policy   *bluemonday.Policy

	mu    sync.RWMutex
	pages map[string]Page
}

// NewLibrary returns a library over the embedded pages.
func NewLibrary(fallback string) *Library {
	return NewLibraryFS(embedded, "pages", fallback)
}

// NewLibraryFS returns a library reading pages from fsys.
func NewLibraryFS(fsys fs.FS, dir, fallback string) *Library {
	if fallback == "" {
		fallback = "en"
	}
	return &Library{
		fsys:     fsys,
		dir:      dir,
		fallback: fallback,
		md:       goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough)),
		policy:   bluemonday.UGCPolicy(),
		pages:    map[string]Page{},
	}
}

// Page returns slug rendered in lang, falling back to the default locale.
func (l *Library) Page(slug, lang string) (Page, error) {
	slug = sanitizeSlug(slug)
	if slug == "" {
		return Page{}, ErrNotFound
	}
	candidates := []string{lang}
	if lang != l.fallback {
		candidates = append(candidates, l.fallback)
	}
	for _, candidate := range candidates {
		page, err := l.load(slug, candidate)
		if err == nil {
			return page, nil
		}
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return Page{}, err
	}
	return Page{}, ErrNotFound
}

// Slugs lists the pages available in the fallback locale.
func (l *Library) Slugs() []string {
	entries, err := fs.ReadDir(l.fsys, path.Join(l.dir, l.fallback))
	if err != nil {
		return nil
	}
	slugs := make([]string, 0, len(entries))
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".md"); ok && !e.IsDir() {
			slugs = append(slugs, name)
		}
	}
	return slugs
}

func (l *Library) load(slug, lang string) (Page, error) {
	key := lang + "|" + slug
	l.mu.RLock()
	page, ok := l.pages[key]
	l.mu.RUnlock()
	if ok {
		return page, nil
	}

	file := path.Join(l.dir, lang, slug+".md")
	data, err := fs.ReadFile(l.fsys, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Page{}, ErrNotFound
		}
		return Page{}, err
	}
	page, err = l.render(file, slug, lang, data)
	if err != nil {
		return Page{}, err
	}

	l.mu.Lock()
	l.pages[key] = page
	l.mu.Unlock()
	return page, nil
}

func (l *Library) render(file, slug, lang string, data []byte) (Page, error) {
	meta, body := splitFrontMatter(string(data))
	front := frontMatter{}
	if strings.TrimSpace(meta) != "" {
		if err := yaml.Unmarshal([]byte(meta), &front); err != nil {
			return Page{}, fmt.Errorf("content: parse front matter %s: %w", file, err)
		}
	}
	var buf bytes.Buffer
	if err := l.md.Convert([]byte(body), &buf); err != nil {
		return Page{}, fmt.Errorf("content: render %s: %w", file, err)
	}
	page := Page{
		Slug:      slug,
		Lang:      lang,
		Title:     strings.TrimSpace(front.Title),
		Summary:   strings.TrimSpace(front.Summary),
		HTML:      template.HTML(l.policy.SanitizeBytes(buf.Bytes())),
		UpdatedAt: parseDate(front.UpdatedAt),
	}
	if page.Title == "" {
		page.Title = titleFromSlug(slug)
	}
	return page, nil
}

// splitFrontMatter separates a leading "---" delimited YAML block from the
// markdown body. Documents without one are all body.
func splitFrontMatter(doc string) (string, string) {
	doc = strings.ReplaceAll(strings.TrimPrefix(doc, "\ufeff"), "\r\n", "\n")
	rest, ok := strings.CutPrefix(doc, "---\n")
	if !ok {
		return "", doc
	}
	if meta, body, found := strings.Cut(rest, "\n---\n"); found {
		return meta, strings.TrimLeft(body, "\n")
	}
	if meta, found := strings.CutSuffix(strings.TrimRight(rest, "\n"), "\n---"); found {
		return meta, ""
	}
	return "", doc
}

func parseDate(v string) time.Time {
	v = strings.TrimSpace(v)
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// titleFromSlug turns "size-guide" into "Size guide".
func titleFromSlug(slug string) string {
	words := strings.Join(strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' }), " ")
	first, size := utf8.DecodeRuneInString(words)
	if size == 0 {
		return ""
	}
	return string(unicode.ToUpper(first)) + words[size:]
}

func sanitizeSlug(slug string) string {
	slug = strings.Trim(strings.TrimSpace(strings.ToLower(slug)), "/")
	if slug == "" || strings.Contains(slug, "..") || strings.ContainsAny(slug, `/\`) {
		return ""
	}
	return slug
}
