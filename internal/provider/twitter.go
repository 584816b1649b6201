package provider

import (
	"context"
	"net/http"
	"net/url"

	"folio/internal/httputil"
	"folio/internal/media"
)

// TwitterProvider resolves Twitter/X posts through the publish oEmbed API.
type TwitterProvider struct {
	client   *http.Client
	endpoint string
	policy   httputil.Policy
}

// Kind returns media.Twitter.
func (p *TwitterProvider) Kind() media.ProviderKind { return media.Twitter }

// Resolve asks publish.twitter.com for the post's blockquote markup.
// The widgets script is omitted; the page loads it once itself.
func (p *TwitterProvider) Resolve(ctx context.Context, rawURL string, _ *url.URL) Resolution {
	params := url.Values{}
	params.Set("url", rawURL)
	params.Set("omit_script", "1")

	var res Resolution
	html, a := fetchOEmbed(ctx, p.client, p.policy, "twitter-oembed", p.endpoint, params)
	res.add(a)
	res.HTML = html
	return res
}
