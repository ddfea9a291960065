package httpserver

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
)

func registerFrontendHandlers(r *mux.Router, distDir string) {
	distDir = strings.TrimSpace(distDir)
	if distDir == "" {
		return
	}
	indexPath := filepath.Join(distDir, "index.html")
	if _, err := os.Stat(indexPath); err != nil {
		return
	}

	fileServer := http.FileServer(http.Dir(distDir))
	r.PathPrefix("/").Methods(http.MethodGet, http.MethodHead).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v1/") {
			writeError(w, http.StatusNotFound, "not found")
			return
		}

		cleanPath := path.Clean(r.URL.Path)
		if cleanPath == "." || cleanPath == "/" {
			http.ServeFile(w, r, indexPath)
			return
		}

		fullPath := filepath.Join(distDir, strings.TrimPrefix(cleanPath, "/"))
		info, err := os.Stat(fullPath)
		if err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}

		// Client-side routes such as /hr/dashboard fall back to the app shell.
		http.ServeFile(w, r, indexPath)
	})
}
