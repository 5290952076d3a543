// Package assets resolves fingerprinted asset paths.
//
// The server fingerprints its embedded client bundle at boot and
// records the mapping here. Layouts emit the hashed name, and the
// static handler maps it back to the embedded file, so fingerprinted
// responses can carry immutable cache headers:
//
//	m := assets.NewManifest()
//	m.Set("advisor.js", assets.Fingerprint("advisor.js", bundle))
//	resolver := assets.NewResolver(m, "/_advisor/")
//	resolver.Asset("advisor.js") // "/_advisor/advisor.3f9ac2d1.js"
//
// Assets fingerprinted ahead of time ship a manifest.json
// ({"app.css": "app.e5f6a7b8.css"}) loaded with Load or FromFS.
package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"
)

// Manifest maps source asset names to fingerprinted names. It is safe
// for concurrent use.
type Manifest struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewManifest returns an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{entries: make(map[string]string)}
}

// Load reads a manifest.json file from disk.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

// FromFS reads a manifest.json from an fs.FS, typically an embedded
// asset tree.
func FromFS(fsys fs.FS, name string) (*Manifest, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

func parse(data []byte) (*Manifest, error) {
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = make(map[string]string)
	}
	return &Manifest{entries: entries}, nil
}

// Resolve returns the fingerprinted name for source, or source
// unchanged when there is no entry for it.
func (m *Manifest) Resolve(source string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if resolved, ok := m.entries[source]; ok {
		return resolved
	}
	return source
}

// Source maps a fingerprinted name back to its source name. The static
// handler uses this to locate the embedded file behind a hashed
// request path.
func (m *Manifest) Source(resolved string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for src, res := range m.entries {
		if res == resolved {
			return src, true
		}
	}
	return "", false
}

// Has reports whether source has an entry.
func (m *Manifest) Has(source string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[source]
	return ok
}

// Set records a source to fingerprinted-name mapping.
func (m *Manifest) Set(source, resolved string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[source] = resolved
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// All returns a copy of the entries.
func (m *Manifest) All() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string]string, len(m.entries))
	for k, v := range m.entries {
		result[k] = v
	}
	return result
}

// Fingerprint derives a content-addressed name by inserting the first
// eight hex characters of the content's SHA-256 before the extension:
// Fingerprint("advisor.js", b) returns "advisor.3f9ac2d1.js".
func Fingerprint(name string, content []byte) string {
	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:4])
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "." + hash + ext
}
