package routepath

import (
	"errors"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		query   string
		changed bool
	}{
		{"root", "/", "/", "", false},
		{"empty becomes root", "", "/", "", true},
		{"plain", "/qa", "/qa", "", false},
		{"trailing slash", "/qa/", "/qa", "", true},
		{"double slash", "/profile//settings", "/profile/settings", "", true},
		{"dot segment", "/a/./b", "/a/b", "", true},
		{"dotdot resolves", "/a/b/../c", "/a/c", "", true},
		{"missing leading slash", "qa", "/qa", "", true},
		{"query preserved", "/qa?topic=holds", "/qa", "topic=holds", false},
		{"root trailing noop", "///", "/", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(tt.in)
			if err != nil {
				t.Fatalf("Canonicalize(%q) error: %v", tt.in, err)
			}
			if got.Path != tt.want {
				t.Errorf("Path = %q, want %q", got.Path, tt.want)
			}
			if got.Query != tt.query {
				t.Errorf("Query = %q, want %q", got.Query, tt.query)
			}
			if got.Changed != tt.changed {
				t.Errorf("Changed = %v, want %v", got.Changed, tt.changed)
			}
		})
	}
}

func TestCanonicalizeRejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
		err  error
	}{
		{"backslash", `/a\b`, ErrBackslashInPath},
		{"null byte", "/a\x00b", ErrNullByteInPath},
		{"encoded null", "/a%00b", ErrNullByteInPath},
		{"bad escape", "/a%GGb", ErrInvalidPercentEscape},
		{"truncated escape", "/a%2", ErrInvalidPercentEscape},
		{"escape above root", "/../etc/passwd", ErrPathEscapesRoot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Canonicalize(tt.in)
			if !errors.Is(err, tt.err) {
				t.Errorf("Canonicalize(%q) err = %v, want %v", tt.in, err, tt.err)
			}
		})
	}
}

func TestValidateNavTarget(t *testing.T) {
	if _, err := ValidateNavTarget("https://evil.example/x"); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("absolute URL err = %v, want ErrInvalidPath", err)
	}
	if _, err := ValidateNavTarget("//evil.example"); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("protocol-relative err = %v, want ErrInvalidPath", err)
	}
	if _, err := ValidateNavTarget("qa"); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("relative segment err = %v, want ErrInvalidPath", err)
	}
	got, err := ValidateNavTarget("/qa/?topic=holds")
	if err != nil {
		t.Fatalf("ValidateNavTarget error: %v", err)
	}
	if got != "/qa?topic=holds" {
		t.Errorf("got %q, want /qa?topic=holds", got)
	}
}

func TestDecodeSegment(t *testing.T) {
	got, err := DecodeSegment("advising%20office", false)
	if err != nil || got != "advising office" {
		t.Errorf("DecodeSegment = %q, %v; want %q, nil", got, err, "advising office")
	}
	if _, err := DecodeSegment("a%2Fb", false); !errors.Is(err, ErrEncodedSlash) {
		t.Errorf("smuggled slash err = %v, want ErrEncodedSlash", err)
	}
	got, err = DecodeSegment("docs%2Fguide", true)
	if err != nil || got != "docs/guide" {
		t.Errorf("catch-all DecodeSegment = %q, %v; want %q, nil", got, err, "docs/guide")
	}
}
