// Package media defines shared types for the folio application.
package media

import "time"

// ProviderKind identifies which embed provider a URL belongs to.
type ProviderKind int

const (
	Unsupported ProviderKind = iota
	Twitter
	Niconico
	Bilibili
	Instagram
)

func (p ProviderKind) String() string {
	switch p {
	case Twitter:
		return "twitter"
	case Niconico:
		return "niconico"
	case Bilibili:
		return "bilibili"
	case Instagram:
		return "instagram"
	default:
		return "unsupported"
	}
}

// Embed is a resolved, sanitized embed snippet.
type Embed struct {
	SourceURL string       // URL exactly as supplied by the caller
	Provider  ProviderKind // Provider the URL was classified as
	HTML      string       // Sanitized HTML snippet
	Cached    bool         // Served from the cache without network activity
}

// CacheEntry is a cached resolution result.
type CacheEntry struct {
	SourceURL string
	HTML      string
	CachedAt  time.Time
}

// Work is a single portfolio entry loaded from a markdown file.
type Work struct {
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	Year         int      `json:"year"`
	Month        int      `json:"month,omitempty"` // 0 when unset
	Tags         []string `json:"tags"`
	Summary      string   `json:"summary"`
	ThumbnailURL string   `json:"thumbnailUrl,omitempty"`
	Content      string   `json:"content,omitempty"` // Markdown body without front matter
}
