package vtest

import (
	"testing"

	"github.com/marycampus/advisor/pkg/vdom"
)

func TestBuilderSeedsContext(t *testing.T) {
	ctx := NewCtx().
		Path("/profile").
		Pattern("/profile").
		Param("id", "42").
		Value("theme", "dark").
		Build()

	if ctx.Path() != "/profile" {
		t.Errorf("Path = %q", ctx.Path())
	}
	if ctx.Pattern() != "/profile" {
		t.Errorf("Pattern = %q", ctx.Pattern())
	}
	if ctx.Param("id") != "42" {
		t.Errorf("Param(id) = %q", ctx.Param("id"))
	}
	if ctx.Value("theme") != "dark" {
		t.Errorf("Value(theme) = %v", ctx.Value("theme"))
	}
}

func TestRenderHelpers(t *testing.T) {
	comp := vdom.Func(func() *vdom.VNode {
		return vdom.Element("div", vdom.Class("card"), vdom.Text("hello"))
	})
	html := RenderHTML(t, comp)
	AssertContains(t, html, `class="card"`)
	AssertContains(t, html, "hello")
	AssertNotContains(t, html, "goodbye")
}
