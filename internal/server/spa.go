package server

import (
	"net/http"
	"os"
	"path/filepath"
)

// handleSPA serves the built frontend from dir. Requests that don't match
// a real file fall back to index.html so client-routed paths like
// /grid/{id} (the share-link target) load the app instead of 404ing.
func handleSPA(dir string) http.HandlerFunc {
	fs := http.Dir(dir)
	fileServer := http.FileServer(fs)

	return func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.Clean(r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}

		http.ServeFile(w, r, filepath.Join(dir, "index.html"))
	}
}
