package assets

// Resolver turns a source asset name into the URL path a browser
// requests it from.
type Resolver interface {
	// Asset resolves a source name to its full URL path, prefix and
	// fingerprint included.
	Asset(source string) string
}

type manifestResolver struct {
	manifest *Manifest
	prefix   string
}

// NewResolver returns a Resolver that consults m and prepends prefix
// to every resolved path.
func NewResolver(m *Manifest, prefix string) Resolver {
	return &manifestResolver{manifest: m, prefix: prefix}
}

func (r *manifestResolver) Asset(source string) string {
	return r.prefix + r.manifest.Resolve(source)
}

// passthrough serves development, where nothing is fingerprinted. The
// prefix still applies so dev URLs stay shaped like production ones.
type passthrough struct {
	prefix string
}

// NewPassthroughResolver returns a Resolver that applies the prefix
// and nothing else.
func NewPassthroughResolver(prefix string) Resolver {
	return &passthrough{prefix: prefix}
}

func (p *passthrough) Asset(source string) string {
	return p.prefix + source
}
