package assets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

func TestManifestResolve(t *testing.T) {
	m := NewManifest()
	m.Set("advisor.js", "advisor.abc12345.js")
	m.Set("app.css", "app.def45678.css")

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"found entry", "advisor.js", "advisor.abc12345.js"},
		{"found entry css", "app.css", "app.def45678.css"},
		{"missing entry returns original", "unknown.js", "unknown.js"},
		{"empty string returns empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Resolve(tt.source); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.source, got, tt.want)
			}
		})
	}
}

func TestManifestSource(t *testing.T) {
	m := NewManifest()
	m.Set("advisor.js", "advisor.abc12345.js")

	src, ok := m.Source("advisor.abc12345.js")
	if !ok || src != "advisor.js" {
		t.Errorf("Source() = %q, %v, want advisor.js, true", src, ok)
	}
	if _, ok := m.Source("advisor.js"); ok {
		t.Error("Source() found entry for a source name, want miss")
	}
	if _, ok := m.Source("other.js"); ok {
		t.Error("Source() found entry for unknown name, want miss")
	}
}

func TestManifestHas(t *testing.T) {
	m := NewManifest()
	m.Set("advisor.js", "advisor.abc12345.js")

	if !m.Has("advisor.js") {
		t.Error("Has(advisor.js) = false, want true")
	}
	if m.Has("unknown.js") {
		t.Error("Has(unknown.js) = true, want false")
	}
}

func TestManifestAll(t *testing.T) {
	m := NewManifest()
	m.Set("a.js", "a.12345678.js")
	m.Set("b.js", "b.45678901.js")

	all := m.All()
	if len(all) != 2 {
		t.Errorf("All() has %d entries, want 2", len(all))
	}
	if all["a.js"] != "a.12345678.js" {
		t.Errorf("All()[a.js] = %q, want a.12345678.js", all["a.js"])
	}

	all["c.js"] = "c.78901234.js"
	if m.Has("c.js") {
		t.Error("mutating All()'s result changed the manifest")
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	content := `{"advisor.js": "advisor.abc12345.js", "app.css": "app.def45678.css"}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := m.Resolve("advisor.js"); got != "advisor.abc12345.js" {
		t.Errorf("Resolve(advisor.js) = %q, want advisor.abc12345.js", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/manifest.json"); err == nil {
		t.Error("Load() returned nil error for missing file")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() returned nil error for invalid JSON")
	}
}

func TestFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"dist/manifest.json": &fstest.MapFile{
			Data: []byte(`{"advisor.js": "advisor.abc12345.js"}`),
		},
	}

	m, err := FromFS(fsys, "dist/manifest.json")
	if err != nil {
		t.Fatalf("FromFS() error = %v", err)
	}
	if got := m.Resolve("advisor.js"); got != "advisor.abc12345.js" {
		t.Errorf("Resolve(advisor.js) = %q, want advisor.abc12345.js", got)
	}
}

func TestFingerprint(t *testing.T) {
	content := []byte("window.__ADVISOR__")

	got := Fingerprint("advisor.js", content)
	if !strings.HasPrefix(got, "advisor.") || !strings.HasSuffix(got, ".js") {
		t.Fatalf("Fingerprint() = %q, want advisor.<hash>.js", got)
	}
	hash := strings.TrimSuffix(strings.TrimPrefix(got, "advisor."), ".js")
	if len(hash) != 8 {
		t.Errorf("hash %q has length %d, want 8", hash, len(hash))
	}

	// Same content, same name.
	if again := Fingerprint("advisor.js", content); again != got {
		t.Errorf("Fingerprint() = %q on second call, want %q", again, got)
	}
	// Different content, different name.
	if other := Fingerprint("advisor.js", []byte("changed")); other == got {
		t.Errorf("Fingerprint() = %q for different content, want a new hash", other)
	}
}

func TestFingerprintNoExtension(t *testing.T) {
	got := Fingerprint("LICENSE", []byte("text"))
	if !strings.HasPrefix(got, "LICENSE.") {
		t.Errorf("Fingerprint(LICENSE) = %q, want LICENSE.<hash>", got)
	}
	if strings.Count(got, ".") != 1 {
		t.Errorf("Fingerprint(LICENSE) = %q, want a single dot", got)
	}
}

func TestResolverWithPrefix(t *testing.T) {
	m := NewManifest()
	m.Set("advisor.js", "advisor.abc12345.js")

	r := NewResolver(m, "/_advisor/")

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"found entry", "advisor.js", "/_advisor/advisor.abc12345.js"},
		{"missing entry gets prefix", "unknown.js", "/_advisor/unknown.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Asset(tt.source); got != tt.want {
				t.Errorf("Asset(%q) = %q, want %q", tt.source, got, tt.want)
			}
		})
	}
}

func TestPassthroughResolver(t *testing.T) {
	r := NewPassthroughResolver("/_advisor/")

	if got := r.Asset("advisor.js"); got != "/_advisor/advisor.js" {
		t.Errorf("Asset(advisor.js) = %q, want /_advisor/advisor.js", got)
	}
	if got := r.Asset("images/logo.svg"); got != "/_advisor/images/logo.svg" {
		t.Errorf("Asset(images/logo.svg) = %q, want /_advisor/images/logo.svg", got)
	}
}
