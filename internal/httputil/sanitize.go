package httputil

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// validSlugPattern matches work slugs (markdown file basenames).
	validSlugPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	// validIDPattern matches provider video identifiers.
	validIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

// ValidationError reports input that was rejected before any network activity.
type ValidationError struct {
	Msg string
	Err error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ValidateURL checks that an outbound URL is well-formed and uses HTTPS.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return &ValidationError{Msg: "malformed URL", Err: err}
	}
	if u.Scheme != "https" {
		return &ValidationError{Msg: fmt.Sprintf("only HTTPS URLs are allowed, got %q", u.Scheme)}
	}
	if u.Host == "" {
		return &ValidationError{Msg: "URL has no host"}
	}
	return nil
}

// ValidateSlug checks that a work slug contains only safe characters.
func ValidateSlug(slug string) error {
	if slug == "" {
		return &ValidationError{Msg: "slug cannot be empty"}
	}
	if len(slug) > 128 {
		return &ValidationError{Msg: fmt.Sprintf("slug too long: %d characters", len(slug))}
	}
	if strings.Contains(slug, "..") {
		return &ValidationError{Msg: fmt.Sprintf("slug contains path traversal: %q", slug)}
	}
	if !validSlugPattern.MatchString(slug) {
		return &ValidationError{Msg: fmt.Sprintf("slug contains invalid characters: %q", slug)}
	}
	return nil
}

// ValidateID checks that a provider video identifier is safe to place in a URL.
func ValidateID(id string) error {
	if id == "" {
		return &ValidationError{Msg: "ID cannot be empty"}
	}
	if len(id) > 64 {
		return &ValidationError{Msg: fmt.Sprintf("ID too long: %d characters", len(id))}
	}
	if !validIDPattern.MatchString(id) {
		return &ValidationError{Msg: fmt.Sprintf("ID contains invalid characters: %q", id)}
	}
	return nil
}

// WithQuery appends encoded query parameters to a base endpoint.
func WithQuery(base string, params url.Values) string {
	if len(params) == 0 {
		return base
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + params.Encode()
}

// BuildURL constructs a URL from base and path components, encoding each path segment.
func BuildURL(base string, pathSegments ...string) string {
	u := strings.TrimRight(base, "/")
	for _, seg := range pathSegments {
		u += "/" + url.PathEscape(seg)
	}
	return u
}
