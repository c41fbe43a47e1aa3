package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

const (
	defaultIndexPage = "login.html"
	notFoundPage     = "404.html"
)

// StaticHandler serves page assets out of the configured web root. The
// bare path maps to the login page; anything that does not resolve to a
// regular file inside the root gets the 404 page with a 404 status.
func (s *Server) StaticHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeJSON(w, http.StatusMethodNotAllowed, httpReply{Reason: "method not allowed"})
		return
	}

	rel := path.Clean("/" + r.URL.Path)
	if rel == "/" {
		rel = "/" + defaultIndexPage
	}
	// Clean has collapsed any ".." segments, so joining cannot escape
	// the web root.
	name := filepath.Join(s.WebRoot, filepath.FromSlash(rel))

	info, err := os.Stat(name)
	if err != nil || info.IsDir() {
		s.serveNotFound(w, r)
		return
	}
	http.ServeFile(w, r, name)
}

func (s *Server) serveNotFound(w http.ResponseWriter, r *http.Request) {
	body, err := os.ReadFile(filepath.Join(s.WebRoot, notFoundPage))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write(body)
}
