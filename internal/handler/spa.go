package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/forgo/huddle/api/internal/model"
)

// SPAHandler serves a built single-page app. Paths that do not name a file
// fall back to index.html so client-side routes survive a reload.
type SPAHandler struct {
	root       string
	fileServer http.Handler
}

// NewSPAHandler serves files from dir
func NewSPAHandler(dir string) *SPAHandler {
	return &SPAHandler{
		root:       dir,
		fileServer: http.FileServer(http.Dir(dir)),
	}
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	clean := path.Clean("/" + r.URL.Path)
	info, err := os.Stat(filepath.Join(h.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))))
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		h.serveIndex(w, r)
		return
	}
	if err != nil {
		WriteError(w, model.NewInternalError(""))
		return
	}
	h.fileServer.ServeHTTP(w, r)
}

// serveIndex writes index.html directly. http.ServeFile would reject the
// original request path when it contains "..".
func (h *SPAHandler) serveIndex(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(filepath.Join(h.root, "index.html"))
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		WriteError(w, model.NewInternalError(""))
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, "index.html", info.ModTime(), f)
}
