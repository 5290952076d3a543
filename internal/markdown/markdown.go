// Package markdown renders user-facing Markdown to sanitized HTML.
//
// Assistant message bodies and FAQ answers are authored in Markdown;
// the output is inserted into the page as raw HTML, so everything that
// comes through here is sanitized with a UGC policy before it leaves.
package markdown

import (
	"bytes"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	initOnce sync.Once
	md       goldmark.Markdown
	policy   *bluemonday.Policy
)

func setup() {
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	policy = bluemonday.UGCPolicy()
}

// Render converts Markdown source to sanitized HTML. Conversion
// failures fall back to the escaped source text, so a bad document
// never takes the page down or smuggles markup through.
func Render(source string) string {
	initOnce.Do(setup)

	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return policy.Sanitize("<p>" + source + "</p>")
	}
	return policy.Sanitize(buf.String())
}
