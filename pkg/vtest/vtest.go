package vtest

import (
	"net/http"
	"strings"
	"testing"

	"github.com/marycampus/advisor/pkg/render"
	"github.com/marycampus/advisor/pkg/server"
	"github.com/marycampus/advisor/pkg/vdom"
)

// CtxBuilder builds a server.Ctx for tests.
type CtxBuilder struct {
	path    string
	pattern string
	params  map[string]string
	values  map[string]any
	request *http.Request
}

// NewCtx starts a builder. The zero build is a GET / context over a
// mock session.
func NewCtx() *CtxBuilder {
	return &CtxBuilder{
		path:   "/",
		params: map[string]string{},
		values: map[string]any{},
	}
}

// Path sets the request path.
func (b *CtxBuilder) Path(path string) *CtxBuilder {
	b.path = path
	return b
}

// Pattern sets the matched route pattern.
func (b *CtxBuilder) Pattern(pattern string) *CtxBuilder {
	b.pattern = pattern
	return b
}

// Param adds a route parameter.
func (b *CtxBuilder) Param(name, value string) *CtxBuilder {
	b.params[name] = value
	return b
}

// Value seeds session state, as if a previous handler had called
// SetValue.
func (b *CtxBuilder) Value(key string, value any) *CtxBuilder {
	b.values[key] = value
	return b
}

// Request sets the HTTP request the context reports.
func (b *CtxBuilder) Request(r *http.Request) *CtxBuilder {
	b.request = r
	return b
}

// Build produces the context.
func (b *CtxBuilder) Build() server.Ctx {
	opts := []server.TestCtxOption{
		server.WithTestParams(b.params),
	}
	if b.pattern != "" {
		opts = append(opts, server.WithTestPattern(b.pattern))
	}
	if b.request != nil {
		opts = append(opts, server.WithTestRequest(b.request))
	}
	ctx := server.NewTestContext(b.path, opts...)
	for k, v := range b.values {
		ctx.SetValue(k, v)
	}
	return ctx
}

// RenderHTML materializes a component and renders it to HTML.
func RenderHTML(t *testing.T, comp vdom.Component) string {
	t.Helper()
	if comp == nil {
		t.Fatal("vtest: nil component")
	}
	tree := vdom.Materialize(&vdom.VNode{Kind: vdom.KindComponent, Comp: comp})
	html, err := render.NewRenderer(render.Config{}).RenderToString(tree)
	if err != nil {
		t.Fatalf("vtest: render: %v", err)
	}
	return html
}

// RenderNode renders a bare node tree to HTML.
func RenderNode(t *testing.T, node *vdom.VNode) string {
	t.Helper()
	html, err := render.NewRenderer(render.Config{}).RenderToString(vdom.Materialize(node))
	if err != nil {
		t.Fatalf("vtest: render: %v", err)
	}
	return html
}

// AssertContains fails the test when html lacks want.
func AssertContains(t *testing.T, html, want string) {
	t.Helper()
	if !strings.Contains(html, want) {
		t.Errorf("rendered HTML missing %q\n%s", want, html)
	}
}

// AssertNotContains fails the test when html includes unwanted.
func AssertNotContains(t *testing.T, html, unwanted string) {
	t.Helper()
	if strings.Contains(html, unwanted) {
		t.Errorf("rendered HTML unexpectedly contains %q\n%s", unwanted, html)
	}
}
