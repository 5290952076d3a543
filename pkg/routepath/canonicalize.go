// Package routepath normalizes and validates URL paths before they reach
// the router. It lives apart from the router so the session layer can use
// the same rules without an import cycle.
package routepath

import (
	"errors"
	"net/url"
	"strings"
)

// Result is the outcome of canonicalization.
type Result struct {
	Path    string // canonical path, no query string
	Query   string // query string without the leading "?"
	Changed bool   // whether the path differs from the input
}

var (
	ErrInvalidPath          = errors.New("invalid path")
	ErrBackslashInPath      = errors.New("path contains backslash")
	ErrNullByteInPath       = errors.New("path contains null byte")
	ErrInvalidPercentEscape = errors.New("invalid percent escape")
	ErrPathEscapesRoot      = errors.New("path escapes root")
	ErrEncodedSlash         = errors.New("encoded slash in path segment")
)

// Canonicalize normalizes a request path: collapses duplicate slashes,
// drops "." segments, resolves "..", and trims the trailing slash (root
// stays "/"). A query string in the input is split off and preserved
// untouched.
//
// Rejected inputs: backslashes, NUL bytes (literal or %00), malformed
// percent escapes, and ".." sequences that would climb above root.
func Canonicalize(input string) (Result, error) {
	if input == "" {
		return Result{Path: "/", Changed: true}, nil
	}

	path, query, _ := strings.Cut(input, "?")

	if strings.Contains(path, `\`) {
		return Result{}, ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return Result{}, ErrNullByteInPath
	}
	if strings.Contains(path, "%") {
		if err := checkPercentEscapes(path); err != nil {
			return Result{}, err
		}
	}

	original := path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	segments := strings.Split(path, "/")
	stack := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case "", ".":
		case "..":
			if len(stack) == 0 {
				return Result{}, ErrPathEscapesRoot
			}
			stack = stack[:len(stack)-1]
		default:
			stack = append(stack, seg)
		}
	}

	path = "/" + strings.Join(stack, "/")

	return Result{
		Path:    path,
		Query:   query,
		Changed: path != original,
	}, nil
}

// ValidateNavTarget canonicalizes a navigation target and rejects anything
// that is not a relative path. Absolute URLs ("http://...", "//host") are
// refused so a navigation patch can never turn into an open redirect.
// Returns the canonical path with its query string reattached.
func ValidateNavTarget(target string) (string, error) {
	if strings.HasPrefix(target, "http://") ||
		strings.HasPrefix(target, "https://") ||
		strings.HasPrefix(target, "//") {
		return "", ErrInvalidPath
	}
	if !strings.HasPrefix(target, "/") {
		return "", ErrInvalidPath
	}

	result, err := Canonicalize(target)
	if err != nil {
		return "", err
	}
	if result.Query != "" {
		return result.Path + "?" + result.Query, nil
	}
	return result.Path, nil
}

// DecodeSegment percent-decodes one path segment. Unless the segment
// belongs to a catch-all match, a decoded "/" (%2F smuggling) is rejected.
func DecodeSegment(segment string, isCatchAll bool) (string, error) {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return "", ErrInvalidPercentEscape
	}
	if !isCatchAll && strings.Contains(decoded, "/") {
		return "", ErrEncodedSlash
	}
	return decoded, nil
}

// Split splits an input into path and query, query without the "?".
func Split(input string) (path, query string) {
	path, query, _ = strings.Cut(input, "?")
	return path, query
}

func checkPercentEscapes(path string) error {
	for i := 0; i < len(path); {
		if path[i] != '%' {
			i++
			continue
		}
		if i+2 >= len(path) || !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 3
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
