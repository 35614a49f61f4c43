package sharedstate

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var contentTypes = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// ContentType maps a file extension to the type the site is served with.
func ContentType(path string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Static serves the site from root: "/" is index.html, paths escaping root
// are refused and anything unreadable is a plain 404.
func Static(root string) http.Handler {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target := filepath.Join(abs, filepath.FromSlash(r.URL.Path))
		if r.URL.Path == "/" || r.URL.Path == "" {
			target = filepath.Join(abs, "index.html")
		}

		rel, err := filepath.Rel(abs, target)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte("Forbidden"))
			return
		}

		data, err := os.ReadFile(target)
		if err != nil {
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("Not found"))
			return
		}
		w.Header().Set("Content-Type", ContentType(target))
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	})
}
