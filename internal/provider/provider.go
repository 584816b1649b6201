// Package provider classifies URLs by embed provider and resolves them into
// raw (unsanitized) embed HTML.
package provider

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"folio/internal/httputil"
	"folio/internal/media"
)

const (
	// DefaultTimeout bounds every individual upstream attempt.
	DefaultTimeout = 5 * time.Second

	// DefaultBackoffStep is the linear back-off unit between attempts.
	DefaultBackoffStep = 200 * time.Millisecond

	twitterAttempts = 3
	defaultAttempts = 2
)

// Provider is the interface that embed providers must implement.
type Provider interface {
	// Kind returns which provider this is.
	Kind() media.ProviderKind

	// Resolve obtains embed HTML for a URL already classified as this provider.
	// rawURL is the caller's original string; target is its parsed form.
	Resolve(ctx context.Context, rawURL string, target *url.URL) Resolution
}

// Outcome is the result of one resolution source.
type Outcome int

const (
	OutcomeOK     Outcome = iota // Source produced HTML
	OutcomeEmpty                 // Source answered but had nothing usable
	OutcomeFailed                // Source could not be reached or answered with an error
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Attempt records what a single source (an oEmbed endpoint or a constructed
// iframe) yielded.
type Attempt struct {
	Source  string
	Outcome Outcome
	Tries   int   // HTTP attempts made; 0 for constructed snippets
	Err     error // Set when Outcome is OutcomeFailed
}

// Resolution is the aggregate of all sources a provider tried.
type Resolution struct {
	HTML     string
	Attempts []Attempt
}

// LastError returns the error of the most recent failed attempt, or nil if
// no attempt failed.
func (r Resolution) LastError() error {
	for i := len(r.Attempts) - 1; i >= 0; i-- {
		if r.Attempts[i].Outcome == OutcomeFailed {
			return r.Attempts[i].Err
		}
	}
	return nil
}

func (r *Resolution) add(a Attempt) {
	r.Attempts = append(r.Attempts, a)
}

// Endpoints holds every outbound base URL used by the providers.
type Endpoints struct {
	TwitterOEmbed   string `toml:"twitter_oembed"`
	NiconicoOEmbed  string `toml:"niconico_oembed"`
	NiconicoPlayer  string `toml:"niconico_player"`
	BilibiliPlayer  string `toml:"bilibili_player"`
	InstagramGraph  string `toml:"instagram_graph"`
	InstagramLegacy string `toml:"instagram_legacy"`
}

// DefaultEndpoints returns the public provider endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		TwitterOEmbed:   "https://publish.twitter.com/oembed",
		NiconicoOEmbed:  "https://ext.nicovideo.jp/api/oembed",
		NiconicoPlayer:  "https://embed.nicovideo.jp",
		BilibiliPlayer:  "https://player.bilibili.com/player.html",
		InstagramGraph:  "https://graph.facebook.com/v9.0/instagram_oembed",
		InstagramLegacy: "https://api.instagram.com/oembed/",
	}
}

// Options configures the provider set.
type Options struct {
	Client    *http.Client
	Endpoints Endpoints
	Timeout   time.Duration // Per-attempt timeout
	Step      time.Duration // Back-off step; zero disables the delay
	RateLimit float64       // Requests per second per provider; zero disables throttling
	RateBurst int
}

// DefaultOptions returns production settings.
func DefaultOptions() Options {
	return Options{
		Endpoints: DefaultEndpoints(),
		Timeout:   DefaultTimeout,
		Step:      DefaultBackoffStep,
		RateLimit: 10,
		RateBurst: 20,
	}
}

// Set holds one Provider per supported kind.
type Set struct {
	byKind map[media.ProviderKind]Provider
}

// NewSet builds the four providers from opts.
func NewSet(opts Options) *Set {
	if opts.Client == nil {
		opts.Client = httputil.NewClient(4 * DefaultTimeout)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	providers := []Provider{
		&TwitterProvider{client: opts.Client, endpoint: opts.Endpoints.TwitterOEmbed, policy: opts.policy(twitterAttempts)},
		&NiconicoProvider{client: opts.Client, endpoint: opts.Endpoints.NiconicoOEmbed, player: opts.Endpoints.NiconicoPlayer, policy: opts.policy(defaultAttempts)},
		&BilibiliProvider{player: opts.Endpoints.BilibiliPlayer},
		&InstagramProvider{client: opts.Client, graph: opts.Endpoints.InstagramGraph, legacy: opts.Endpoints.InstagramLegacy, policy: opts.policy(defaultAttempts)},
	}

	return NewSetOf(providers...)
}

// NewSetOf builds a Set from explicit providers; a later provider of the
// same kind replaces an earlier one.
func NewSetOf(providers ...Provider) *Set {
	s := &Set{byKind: make(map[media.ProviderKind]Provider, len(providers))}
	for _, p := range providers {
		s.byKind[p.Kind()] = p
	}
	return s
}

// For returns the provider for kind.
func (s *Set) For(kind media.ProviderKind) (Provider, bool) {
	p, ok := s.byKind[kind]
	return p, ok
}

// policy builds a retry policy with its own limiter, so each provider is
// throttled independently.
func (o Options) policy(attempts int) httputil.Policy {
	var limiter *rate.Limiter
	if o.RateLimit > 0 {
		burst := o.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(o.RateLimit), burst)
	}
	return httputil.Policy{
		Attempts: attempts,
		Timeout:  o.Timeout,
		Step:     o.Step,
		Limiter:  limiter,
	}
}
