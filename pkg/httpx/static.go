package httpx

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

const (
	indexFile = "index.html"
	apiPrefix = "/api/"
)

// SPAHandler serves the single-page client from fsys. Existing files are served
// as-is; any other GET or HEAD path falls back to index.html so client-side
// routes survive a reload. Unmatched /api paths get a JSON 404 instead.
func SPAHandler(fsys fs.FS) http.Handler {
	files := http.FileServer(http.FS(fsys))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, apiPrefix) {
			JSONError(w, http.StatusNotFound, "route not found")
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			JSONError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
			return
		}

		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name == "" {
			name = indexFile
		}
		info, err := fs.Stat(fsys, name)
		switch {
		case err == nil && !info.IsDir():
			files.ServeHTTP(w, r)
		case err == nil || errors.Is(err, fs.ErrNotExist):
			serveIndex(w, r, fsys)
		default:
			JSONError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}
	})
}

func serveIndex(w http.ResponseWriter, r *http.Request, fsys fs.FS) {
	data, err := fs.ReadFile(fsys, indexFile)
	if err != nil {
		JSONError(w, http.StatusNotFound, "route not found")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(data)
	}
}
