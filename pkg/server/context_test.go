package server

import (
	"errors"
	"testing"

	"github.com/marycampus/advisor/pkg/routepath"
)

func TestNewTestContextDefaults(t *testing.T) {
	ctx := NewTestContext("/qa?topic=exams")

	if ctx.Path() != "/qa" {
		t.Fatalf("Path = %q, want %q", ctx.Path(), "/qa")
	}
	if got := ctx.QueryParam("topic"); got != "exams" {
		t.Fatalf("QueryParam = %q, want %q", got, "exams")
	}
	if ctx.Method() != "GET" {
		t.Fatalf("Method = %q, want GET", ctx.Method())
	}
	if ctx.Mode() != ModeLive {
		t.Fatalf("Mode = %v, want live", ctx.Mode())
	}
	if ctx.Session() == nil {
		t.Fatal("no session behind the test context")
	}
	if ctx.StdContext() == nil {
		t.Fatal("no std context")
	}
}

func TestTestContextOptions(t *testing.T) {
	ctx := NewTestContext("/qa/42",
		WithTestParams(map[string]string{"id": "42"}),
		WithTestPattern("/qa/:id"),
	)
	if got := ctx.Param("id"); got != "42" {
		t.Fatalf("Param = %q, want %q", got, "42")
	}
	if ctx.Pattern() != "/qa/:id" {
		t.Fatalf("Pattern = %q", ctx.Pattern())
	}
}

func TestContextValueRoundTrip(t *testing.T) {
	ctx := NewTestContext("/")
	ctx.SetValue("draft", "half-written question")
	if got := ctx.Value("draft"); got != "half-written question" {
		t.Fatalf("Value = %v", got)
	}
	if ctx.Session().Get("draft") != "half-written question" {
		t.Fatal("value not stored on the session")
	}
}

func TestContextNavigateValidation(t *testing.T) {
	ctx := NewTestContext("/")

	for _, target := range []string{"https://evil.example.com", "//evil.example.com", "relative"} {
		if err := ctx.Navigate(target); !errors.Is(err, routepath.ErrInvalidPath) {
			t.Fatalf("Navigate(%q) err = %v, want ErrInvalidPath", target, err)
		}
	}
	if err := ctx.Navigate("/qa"); err != nil {
		t.Fatalf("Navigate(/qa): %v", err)
	}
}

func TestContextNavigateSchedulesOnSession(t *testing.T) {
	ctx := NewTestContext("/")
	if err := ctx.Navigate("/profile", WithReplace()); err != nil {
		t.Fatalf("navigate: %v", err)
	}
	nav := ctx.Session().takePendingNav()
	if nav == nil || nav.path != "/profile" || nav.mode != navReplace {
		t.Fatalf("pending nav = %+v, want replace /profile", nav)
	}
}

func TestRenderModeString(t *testing.T) {
	if ModeSSR.String() != "ssr" || ModeLive.String() != "live" {
		t.Fatalf("mode strings = %q/%q", ModeSSR.String(), ModeLive.String())
	}
}
