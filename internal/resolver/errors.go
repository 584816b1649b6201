package resolver

import (
	"context"
	"errors"
)

// Errors returned by Resolve. Their messages double as the public error
// strings of the HTTP API.
var (
	ErrMissingURL          = errors.New("missing url")
	ErrUnsupportedProvider = errors.New("unsupported provider")
	ErrUpstreamUnavailable = errors.New("oembed fetch failed")
	ErrNoEmbedHTML         = errors.New("no oembed html")
	ErrUnexpected          = errors.New("unexpected error")
)

// Kind classifies a resolution failure.
type Kind int

const (
	KindNone Kind = iota
	KindInvalidInput
	KindUnsupportedProvider
	KindUpstreamUnavailable
	KindNoEmbedHTML
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInvalidInput:
		return "invalid_input"
	case KindUnsupportedProvider:
		return "unsupported_provider"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	case KindNoEmbedHTML:
		return "no_embed_html"
	default:
		return "unexpected"
	}
}

// KindOf maps an error returned by Resolve to its Kind.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrMissingURL):
		return KindInvalidInput
	case errors.Is(err, ErrUnsupportedProvider):
		return KindUnsupportedProvider
	case errors.Is(err, ErrUpstreamUnavailable):
		return KindUpstreamUnavailable
	case errors.Is(err, ErrNoEmbedHTML):
		return KindNoEmbedHTML
	default:
		return KindUnexpected
	}
}

// Temporary reports whether retrying the same URL later might succeed.
func Temporary(err error) bool {
	return KindOf(err) == KindUpstreamUnavailable || errors.Is(err, context.DeadlineExceeded)
}
