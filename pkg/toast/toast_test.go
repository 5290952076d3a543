package toast_test

import (
	"strings"
	"testing"
	"time"

	"github.com/marycampus/advisor/pkg/render"
	"github.com/marycampus/advisor/pkg/server"
	"github.com/marycampus/advisor/pkg/toast"
	"github.com/marycampus/advisor/pkg/vdom"
)

func TestShowAppendsToast(t *testing.T) {
	ctx := server.NewTestContext("/profile")

	toast.Success(ctx, "Profile saved")

	items := toast.Items(ctx)
	if len(items) != 1 {
		t.Fatalf("got %d toasts, want 1", len(items))
	}
	if items[0].Level != toast.LevelSuccess {
		t.Fatalf("level = %q, want %q", items[0].Level, toast.LevelSuccess)
	}
	if items[0].Message != "Profile saved" {
		t.Fatalf("message = %q, want %q", items[0].Message, "Profile saved")
	}
	if items[0].ID == "" {
		t.Fatal("expected a generated toast ID")
	}
}

func TestLevelHelpers(t *testing.T) {
	tests := []struct {
		name string
		push func(server.Ctx, string)
		want toast.Level
	}{
		{"success", toast.Success, toast.LevelSuccess},
		{"error", toast.Error, toast.LevelError},
		{"warning", toast.Warning, toast.LevelWarning},
		{"info", toast.Info, toast.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := server.NewTestContext("/")
			tt.push(ctx, "hello")
			items := toast.Items(ctx)
			if len(items) != 1 {
				t.Fatalf("got %d toasts, want 1", len(items))
			}
			if items[0].Level != tt.want {
				t.Fatalf("level = %q, want %q", items[0].Level, tt.want)
			}
		})
	}
}

func TestWithTitle(t *testing.T) {
	ctx := server.NewTestContext("/profile")

	toast.WithTitle(ctx, toast.LevelSuccess, "Profile", "Your changes are in")

	items := toast.Items(ctx)
	if len(items) != 1 {
		t.Fatalf("got %d toasts, want 1", len(items))
	}
	if items[0].Title != "Profile" {
		t.Fatalf("title = %q, want %q", items[0].Title, "Profile")
	}
	if items[0].Message != "Your changes are in" {
		t.Fatalf("message = %q, want %q", items[0].Message, "Your changes are in")
	}
}

func TestDismiss(t *testing.T) {
	ctx := server.NewTestContext("/")

	toast.Success(ctx, "first")
	toast.Info(ctx, "second")

	items := toast.Items(ctx)
	if len(items) != 2 {
		t.Fatalf("got %d toasts, want 2", len(items))
	}
	if items[0].ID == items[1].ID {
		t.Fatalf("expected distinct IDs, both %q", items[0].ID)
	}

	toast.Dismiss(ctx, items[0].ID)

	items = toast.Items(ctx)
	if len(items) != 1 {
		t.Fatalf("got %d toasts after dismiss, want 1", len(items))
	}
	if items[0].Message != "second" {
		t.Fatalf("remaining toast = %q, want %q", items[0].Message, "second")
	}
}

func TestAutoExpire(t *testing.T) {
	ctx := server.NewTestContext("/")

	toast.ShowFor(ctx, toast.LevelInfo, "soon gone", 10*time.Millisecond)

	if got := len(toast.Items(ctx)); got != 1 {
		t.Fatalf("got %d toasts before expiry, want 1", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(toast.Items(ctx)) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("toast did not expire")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStickyToastStays(t *testing.T) {
	ctx := server.NewTestContext("/")

	toast.ShowFor(ctx, toast.LevelWarning, "read me", 0)

	time.Sleep(30 * time.Millisecond)
	if got := len(toast.Items(ctx)); got != 1 {
		t.Fatalf("got %d toasts, want sticky toast to stay", got)
	}
}

func TestViewRendersItems(t *testing.T) {
	ctx := server.NewTestContext("/")

	toast.WithTitle(ctx, toast.LevelSuccess, "Profile", "Saved your changes")

	html, err := render.NewRenderer(render.Config{}).RenderToString(toast.View(ctx))
	if err != nil {
		t.Fatalf("RenderToString() error: %v", err)
	}
	for _, want := range []string{
		`id="toast-tray"`,
		`aria-live="polite"`,
		"toast-success",
		"Profile",
		"Saved your changes",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered tray missing %q:\n%s", want, html)
		}
	}
}

func TestViewEmptyTray(t *testing.T) {
	ctx := server.NewTestContext("/")

	view := toast.View(ctx)
	if view == nil {
		t.Fatal("expected the tray element even when empty")
	}
	if len(view.Children) != 0 {
		t.Fatalf("got %d children in empty tray, want 0", len(view.Children))
	}
}

func TestDismissButton(t *testing.T) {
	ctx := server.NewTestContext("/")

	toast.Error(ctx, "Could not save")

	button := findTag(toast.View(ctx), "button")
	if button == nil {
		t.Fatal("expected a dismiss button in the tray")
	}
	onclick, ok := button.Props["onclick"].(func())
	if !ok {
		t.Fatalf("onclick prop = %T, want func()", button.Props["onclick"])
	}

	onclick()

	if got := len(toast.Items(ctx)); got != 0 {
		t.Fatalf("got %d toasts after dismiss click, want 0", got)
	}
}

func findTag(node *vdom.VNode, tag string) *vdom.VNode {
	if node == nil {
		return nil
	}
	if node.Kind == vdom.KindElement && node.Tag == tag {
		return node
	}
	for _, child := range node.Children {
		if found := findTag(child, tag); found != nil {
			return found
		}
	}
	return nil
}
