package advisor

import (
	"bytes"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	clientdist "github.com/marycampus/advisor/client/dist"
)

// serveClientAsset serves the embedded live client from under
// /_advisor/. The bundle is addressed by its fingerprinted name, so
// it gets an immutable cache policy; the bare name works too for
// hand-written pages.
func (a *App) serveClientAsset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, advisorPrefix)
	source, fingerprinted := a.manifest.Source(name)
	if !fingerprinted {
		source = name
	}
	if source != clientdist.Name {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	if fingerprinted {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	} else {
		w.Header().Set("Cache-Control", "no-cache")
	}
	http.ServeContent(w, r, clientdist.Name, time.Time{}, bytes.NewReader(clientdist.AdvisorJS))
}

// serveStatic serves files from the configured static directory.
// Paths are cleaned and confined to the directory; dotfiles and
// traversal attempts 404.
func (a *App) serveStatic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// http.ServeFile answers 400 on raw ".." segments before any of
	// the checks below run; reject them here so traversal probes get
	// the same 404 as every other miss.
	for _, seg := range strings.Split(r.URL.Path, "/") {
		if seg == ".." {
			http.NotFound(w, r)
			return
		}
	}

	rel := strings.TrimPrefix(r.URL.Path, a.config.Static.Prefix)
	rel = path.Clean("/" + rel)
	if rel == "/" || containsDotSegment(rel) {
		http.NotFound(w, r)
		return
	}

	full := filepath.Join(a.config.Static.Dir, filepath.FromSlash(rel))
	if !strings.HasPrefix(full, filepath.Clean(a.config.Static.Dir)+string(filepath.Separator)) {
		http.NotFound(w, r)
		return
	}

	if a.config.DevMode {
		w.Header().Set("Cache-Control", "no-cache")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=3600")
	}
	http.ServeFile(w, r, full)
}

// containsDotSegment rejects hidden files and any remaining dot-dot
// segments after cleaning.
func containsDotSegment(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg == "." {
			continue
		}
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}
