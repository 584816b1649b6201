package provider

import (
	"context"
	"net/http"
	"net/url"

	"folio/internal/httputil"
	"folio/internal/media"
)

// NiconicoProvider resolves niconico videos via oEmbed, falling back to the
// embed player iframe.
type NiconicoProvider struct {
	client   *http.Client
	endpoint string
	player   string
	policy   httputil.Policy
}

// Kind returns media.Niconico.
func (p *NiconicoProvider) Kind() media.ProviderKind { return media.Niconico }

// Resolve tries the oEmbed endpoint first and builds a player iframe from
// the watch id when that yields nothing.
func (p *NiconicoProvider) Resolve(ctx context.Context, rawURL string, target *url.URL) Resolution {
	params := url.Values{}
	params.Set("url", rawURL)
	params.Set("format", "json")

	var res Resolution
	html, a := fetchOEmbed(ctx, p.client, p.policy, "niconico-oembed", p.endpoint, params)
	res.add(a)
	if html != "" {
		res.HTML = html
		return res
	}

	id := extractNiconicoID(target)
	if id == "" {
		res.add(Attempt{Source: "niconico-iframe", Outcome: OutcomeEmpty})
		return res
	}

	src := httputil.BuildURL(p.player, "watch", id)
	res.HTML = iframe(src, `frameborder="0"`, "allowfullscreen")
	res.add(Attempt{Source: "niconico-iframe", Outcome: OutcomeOK})
	return res
}
