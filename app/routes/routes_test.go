package routes

import (
	"context"
	"strings"
	"testing"

	"github.com/marycampus/advisor/pkg/router"
	"github.com/marycampus/advisor/pkg/server"
	"github.com/marycampus/advisor/pkg/vdom"
	"github.com/marycampus/advisor/pkg/vtest"
)

func buildTable(t *testing.T) *router.Router {
	t.Helper()
	r := router.New()
	if err := r.SetNotFound(NotFoundPage); err != nil {
		t.Fatalf("SetNotFound: %v", err)
	}
	if err := r.Build(RouteTable()...); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return r
}

func TestTableShape(t *testing.T) {
	r := buildTable(t)

	tests := []struct {
		path    string
		lazy    bool
		pattern string
	}{
		{path: "/", lazy: false, pattern: "/"},
		{path: "/qa", lazy: true, pattern: "/qa"},
		{path: "/profile", lazy: false, pattern: "/profile"},
		{path: "/no/such/page", lazy: false, pattern: "/*"},
	}
	for _, tt := range tests {
		res, ok := r.Match("GET", tt.path)
		if !ok {
			t.Errorf("Match(%q) found nothing", tt.path)
			continue
		}
		if res.IsLazy() != tt.lazy {
			t.Errorf("Match(%q) lazy = %v, want %v", tt.path, res.IsLazy(), tt.lazy)
		}
		if res.Pattern != tt.pattern {
			t.Errorf("Match(%q) pattern = %q, want %q", tt.path, res.Pattern, tt.pattern)
		}
		if len(res.Layouts) != 1 {
			t.Errorf("Match(%q) layouts = %d, want 1", tt.path, len(res.Layouts))
		}
	}
}

func TestEagerRoutesNeedNoResolution(t *testing.T) {
	r := buildTable(t)
	for _, path := range []string{"/", "/profile"} {
		res, ok := r.Match("GET", path)
		if !ok {
			t.Fatalf("no match for %q", path)
		}
		if res.Page == nil {
			t.Errorf("Match(%q).Page = nil, want eager handler", path)
		}
		if res.Lazy != nil {
			t.Errorf("Match(%q).Lazy != nil, want none", path)
		}
	}
}

func TestQARouteResolvesOnce(t *testing.T) {
	r := buildTable(t)
	first, ok := r.Match("GET", "/qa")
	if !ok {
		t.Fatal("no match for /qa")
	}
	if got := first.Lazy.State(); got != router.CellUnresolved {
		t.Fatalf("initial cell state = %v, want unresolved", got)
	}

	page, err := first.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if page == nil {
		t.Fatal("Resolve returned nil page")
	}
	if got := first.Lazy.State(); got != router.CellResolved {
		t.Fatalf("cell state after resolve = %v, want resolved", got)
	}

	// A later match surfaces the same cell; no second load happens.
	second, _ := r.Match("GET", "/qa")
	if second.Lazy != first.Lazy {
		t.Error("second match returned a different cell")
	}
	again, err := second.Resolve(context.Background())
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if again == nil {
		t.Fatal("second Resolve returned nil page")
	}
}

func TestLayoutWrapsMountNode(t *testing.T) {
	ctx := vtest.NewCtx().Path("/").Build()
	html := vtest.RenderNode(t, AppLayout(ctx, vdom.Text("page-content-here")))

	vtest.AssertContains(t, html, `id="app"`)
	vtest.AssertContains(t, html, "page-content-here")
	for _, want := range []string{`href="/qa"`, `href="/profile"`, "site-footer"} {
		vtest.AssertContains(t, html, want)
	}
}

func TestChatPageSendAndReply(t *testing.T) {
	ctx := vtest.NewCtx().Path("/").Build()

	html := vtest.RenderHTML(t, ChatPage(ctx, nil))
	if !strings.Contains(html, "chat-form") {
		t.Fatal("chat page has no form")
	}
	vtest.AssertContains(t, html, "No messages yet")

	sendMessage(ctx, "when is the enrollment deadline?")

	html = vtest.RenderHTML(t, ChatPage(ctx, nil))
	vtest.AssertContains(t, html, "when is the enrollment deadline?")
	vtest.AssertContains(t, html, "September 15")
}

func TestChatIgnoresBlankMessages(t *testing.T) {
	ctx := vtest.NewCtx().Path("/").Build()
	sendMessage(ctx, "   ")
	if msgs := loadMessages(ctx); len(msgs) != 0 {
		t.Errorf("thread has %d messages after blank send, want 0", len(msgs))
	}
}

func TestAskPageAnswers(t *testing.T) {
	ctx := vtest.NewCtx().Path("/qa").Build()
	page, err := LoadAskPage(context.Background())
	if err != nil {
		t.Fatalf("LoadAskPage: %v", err)
	}

	html := vtest.RenderHTML(t, page(ctx, nil))
	if !strings.Contains(html, "qa-form") {
		t.Fatal("ask page has no form")
	}
	vtest.AssertNotContains(t, html, "qa-result")

	answerQuestion(ctx, "how do I drop a class")
	html = vtest.RenderHTML(t, page(ctx, nil))
	vtest.AssertContains(t, html, "How do I drop a course?")

	answerQuestion(ctx, "xyzzy nonsense")
	html = vtest.RenderHTML(t, page(ctx, nil))
	vtest.AssertContains(t, html, "Nothing in the knowledge base")
}

func TestProfileSaveValidation(t *testing.T) {
	ctx := vtest.NewCtx().Path("/profile").Build()

	saveProfile(ctx, server.NewFormData(map[string]string{
		"name": "", "email": "rae@example.edu",
	}))
	if p := loadProfile(ctx); p.Email != "" {
		t.Error("incomplete profile was saved")
	}

	saveProfile(ctx, server.NewFormData(map[string]string{
		"name": "Rae", "email": "rae@example.edu", "program": "Biology",
	}))
	p := loadProfile(ctx)
	if p.Name != "Rae" || p.Program != "Biology" {
		t.Errorf("profile = %+v", p)
	}

	html := vtest.RenderHTML(t, ProfilePage(ctx, nil))
	vtest.AssertContains(t, html, `value="Rae"`)
	vtest.AssertContains(t, html, "avatar-form")
}

func TestNotFoundPage(t *testing.T) {
	ctx := vtest.NewCtx().Path("/missing/thing").Build()
	html := vtest.RenderHTML(t, NotFoundPage(ctx, nil))
	vtest.AssertContains(t, html, "Page not found")
	vtest.AssertContains(t, html, "/missing/thing")
}
