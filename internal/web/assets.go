package web

import (
	"crypto/sha256"
	"embed"
	"encoding/base64"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

//go:embed static
var staticFS embed.FS

// Stylesheets change with deploys and revalidate daily; images are kept a week.
const (
	styleCacheControl = "public, max-age=86400, must-revalidate"
	imageCacheControl = "public, max-age=604800, stale-while-revalidate=86400"
)

type staticAssets struct {
	files http.Handler
	etags map[string]string
}

// newStaticAssets indexes the embedded static tree. Mount it with the
// /static prefix stripped.
func newStaticAssets() (*staticAssets, error) {
	root, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}
	a := &staticAssets{files: http.FileServer(http.FS(root)), etags: make(map[string]string)}
	err = fs.WalkDir(root, ".", func(name string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return walkErr
		}
		data, readErr := fs.ReadFile(root, name)
		if readErr != nil {
			return readErr
		}
		digest := sha256.Sum256(data)
		a.etags[name] = `W/"` + base64.RawURLEncoding.EncodeToString(digest[:12]) + `"`
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (a *staticAssets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	tag, known := a.etags[name]
	if !known {
		http.NotFound(w, r)
		return
	}

	h := w.Header()
	h.Set("ETag", tag)
	h.Set("Vary", "Accept-Encoding")
	if path.Ext(name) == ".css" {
		h.Set("Cache-Control", styleCacheControl)
	} else {
		h.Set("Cache-Control", imageCacheControl)
	}
	if etagMatches(r.Header.Get("If-None-Match"), tag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	a.files.ServeHTTP(w, r)
}

// etagMatches reports whether an If-None-Match list names tag or "*".
func etagMatches(header, tag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || candidate == tag || "W/"+candidate == tag {
			return true
		}
	}
	return false
}
