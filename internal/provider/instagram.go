package provider

import (
	"context"
	"net/http"
	"net/url"

	"folio/internal/httputil"
	"folio/internal/media"
)

// InstagramProvider resolves public Instagram posts. Both endpoints are
// tried without an access token, which only works for some public posts.
type InstagramProvider struct {
	client *http.Client
	graph  string
	legacy string
	policy httputil.Policy
}

// Kind returns media.Instagram.
func (p *InstagramProvider) Kind() media.ProviderKind { return media.Instagram }

// Resolve tries the Graph oEmbed endpoint, then the legacy one. A failure
// in the first only moves on to the second.
func (p *InstagramProvider) Resolve(ctx context.Context, rawURL string, _ *url.URL) Resolution {
	var res Resolution

	graphParams := url.Values{}
	graphParams.Set("url", rawURL)
	graphParams.Set("omitscript", "true")

	html, a := fetchOEmbed(ctx, p.client, p.policy, "instagram-graph", p.graph, graphParams)
	res.add(a)
	if html != "" {
		res.HTML = html
		return res
	}

	legacyParams := url.Values{}
	legacyParams.Set("url", rawURL)

	html, a = fetchOEmbed(ctx, p.client, p.policy, "instagram-legacy", p.legacy, legacyParams)
	res.add(a)
	res.HTML = html
	return res
}
