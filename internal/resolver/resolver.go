// Package resolver turns user-supplied URLs into sanitized embed HTML,
// caching successful results and sharing in-flight work between callers.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"folio/internal/cache"
	"folio/internal/httputil"
	"folio/internal/media"
	"folio/internal/provider"
)

// Resolver is safe for concurrent use.
type Resolver struct {
	cache     *cache.Cache
	providers *provider.Set
	logger    *slog.Logger
	group     singleflight.Group
}

// New creates a Resolver. A nil logger uses slog.Default().
func New(c *cache.Cache, providers *provider.Set, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		cache:     c,
		providers: providers,
		logger:    logger,
	}
}

// Resolve returns sanitized embed HTML for rawURL.
//
// Fresh cache entries are returned without network activity. Concurrent
// misses for the same rawURL share a single upstream resolution, which is
// not cancelled when ctx is; ctx only bounds how long this caller waits.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (media.Embed, error) {
	if strings.TrimSpace(rawURL) == "" {
		return media.Embed{}, ErrMissingURL
	}

	kind, target := provider.Classify(rawURL)

	if entry, ok := r.cache.Get(rawURL); ok {
		return media.Embed{SourceURL: rawURL, Provider: kind, HTML: entry.HTML, Cached: true}, nil
	}

	if kind == media.Unsupported {
		return media.Embed{}, ErrUnsupportedProvider
	}
	p, ok := r.providers.For(kind)
	if !ok {
		return media.Embed{}, ErrUnsupportedProvider
	}

	detached := context.WithoutCancel(ctx)
	ch := r.group.DoChan(rawURL, func() (any, error) {
		return r.resolve(detached, rawURL, p, target)
	})

	select {
	case <-ctx.Done():
		return media.Embed{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return media.Embed{}, res.Err
		}
		embed := res.Val.(media.Embed)
		if res.Shared {
			r.logger.Debug("shared in-flight resolution", "url", rawURL)
		}
		return embed, nil
	}
}

// CacheStats exposes the underlying cache counters.
func (r *Resolver) CacheStats() cache.Stats {
	return r.cache.Stats()
}

// resolve runs one provider resolution and stores the sanitized result.
func (r *Resolver) resolve(ctx context.Context, rawURL string, p provider.Provider, target *url.URL) (embed media.Embed, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("panic during embed resolution", "url", rawURL, "panic", rec)
			err = fmt.Errorf("%w: %v", ErrUnexpected, rec)
		}
	}()

	start := time.Now()
	res := p.Resolve(ctx, rawURL, target)

	for _, a := range res.Attempts {
		attrs := []any{"provider", p.Kind(), "url", rawURL, "source", a.Source, "outcome", a.Outcome, "tries", a.Tries}
		if a.Err != nil {
			attrs = append(attrs, "error", a.Err)
		}
		r.logger.Debug("embed attempt", attrs...)
	}

	if res.HTML == "" {
		if last := res.LastError(); last != nil {
			r.logger.Warn("embed upstream unavailable", "provider", p.Kind(), "url", rawURL, "error", last)
			return media.Embed{}, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, last)
		}
		return media.Embed{}, ErrNoEmbedHTML
	}

	clean := httputil.SanitizeEmbedHTML(res.HTML)
	if !httputil.HasContent(clean) {
		r.logger.Debug("embed empty after sanitization", "provider", p.Kind(), "url", rawURL)
		return media.Embed{}, ErrNoEmbedHTML
	}

	if err := r.cache.Set(rawURL, clean); err != nil {
		r.logger.Debug("embed cache write failed", "url", rawURL, "error", err)
	}

	r.logger.Info("embed resolved",
		"provider", p.Kind(),
		"url", rawURL,
		"iframe", httputil.IframeSrc(clean),
		"duration", time.Since(start),
	)

	return media.Embed{SourceURL: rawURL, Provider: p.Kind(), HTML: clean}, nil
}
