package markdown

import (
	"strings"
	"testing"
)

func TestRenderBasics(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"paragraph", "hello advisor", "<p>hello advisor</p>"},
		{"emphasis", "drop by the *advising* office", "<em>advising</em>"},
		{"link", "[catalog](https://example.edu/catalog)", `href="https://example.edu/catalog"`},
		{"list", "- math\n- physics", "<li>math</li>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.source)
			if !strings.Contains(got, tt.want) {
				t.Errorf("Render(%q) = %q, want it to contain %q", tt.source, got, tt.want)
			}
		})
	}
}

func TestRenderStripsScripts(t *testing.T) {
	got := Render("hi <script>alert(1)</script> there")
	if strings.Contains(got, "<script") {
		t.Errorf("Render left a script tag in %q", got)
	}
	if !strings.Contains(got, "hi") || !strings.Contains(got, "there") {
		t.Errorf("Render dropped surrounding text: %q", got)
	}
}

func TestRenderStripsEventAttributes(t *testing.T) {
	got := Render(`<a href="/x" onclick="steal()">x</a>`)
	if strings.Contains(got, "onclick") {
		t.Errorf("Render left an event attribute in %q", got)
	}
}

func TestRenderRawHTMLBlock(t *testing.T) {
	got := Render("<iframe src=\"https://evil.example\"></iframe>\n\nvisible")
	if strings.Contains(got, "<iframe") {
		t.Errorf("Render left an iframe in %q", got)
	}
	if !strings.Contains(got, "visible") {
		t.Errorf("Render dropped trailing text: %q", got)
	}
}
