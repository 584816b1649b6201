package provider

import (
	"context"
	"net/url"
	"strings"

	"folio/internal/media"
)

// BilibiliProvider builds player iframes; Bilibili has no public oEmbed API.
type BilibiliProvider struct {
	player string
}

// Kind returns media.Bilibili.
func (p *BilibiliProvider) Kind() media.ProviderKind { return media.Bilibili }

// Resolve constructs the iframe without any network call. b23.tv short
// links cannot be expanded without fetching them, so the caller's URL is
// embedded as given. Scheme-less input gets the https form of target.
func (p *BilibiliProvider) Resolve(_ context.Context, rawURL string, target *url.URL) Resolution {
	var res Resolution

	id, short := extractBilibiliID(target)
	if id == "" {
		res.add(Attempt{Source: "bilibili-iframe", Outcome: OutcomeEmpty})
		return res
	}

	src := bilibiliPlayerURL(p.player, id)
	if short {
		src = shortLinkSrc(rawURL, target)
	}

	res.HTML = iframe(src, `scrolling="no"`, `border="0"`, `frameborder="0"`, "allowfullscreen")
	res.add(Attempt{Source: "bilibili-iframe", Outcome: OutcomeOK})
	return res
}

func shortLinkSrc(rawURL string, target *url.URL) string {
	if raw := strings.TrimSpace(rawURL); strings.Contains(raw, "://") {
		return raw
	}
	return target.String()
}
