package server

import (
	"io/fs"
	"net/http"
	"strings"
)

// spaFileServer serves static files from assets and falls back to index.html
// for paths that are not files, so client-side routes like /board/L1 load
// the app.
func spaFileServer(assets fs.FS) http.Handler {
	fileServer := http.FileServerFS(assets)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if name == "" {
			name = "index.html"
		}

		if info, err := fs.Stat(assets, name); err != nil || info.IsDir() {
			r.URL.Path = "/"
		}

		fileServer.ServeHTTP(w, r)
	})
}
