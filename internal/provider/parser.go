package provider

import (
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	"folio/internal/httputil"
)

var (
	// niconicoWatchPath matches /watch/sm12345 style paths.
	niconicoWatchPath = regexp.MustCompile(`^/watch/([a-zA-Z0-9]+)`)

	// bilibiliVideoPath matches /video/BV1xx411c7XD and /video/av170001.
	bilibiliVideoPath = regexp.MustCompile(`^/video/([a-zA-Z0-9]+)`)

	// shortLinkPath matches the code of a b23.tv short link.
	shortLinkPath = regexp.MustCompile(`^/(\w+)`)

	// bilibiliAVID matches legacy numeric av ids.
	bilibiliAVID = regexp.MustCompile(`(?i)^av([0-9]+)$`)
)

// oembedResponse is the subset of the oEmbed JSON shape we consume.
type oembedResponse struct {
	Type string `json:"type"`
	HTML string `json:"html"`
}

// parseOEmbed decodes an oEmbed JSON body and returns its trimmed html field.
func parseOEmbed(body []byte) (string, error) {
	var resp oembedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decoding oembed response: %w", err)
	}
	return strings.TrimSpace(resp.HTML), nil
}

// extractNiconicoID returns the video id of a niconico watch URL.
// e.g., "/watch/sm12345" -> "sm12345"
func extractNiconicoID(u *url.URL) string {
	m := niconicoWatchPath.FindStringSubmatch(u.Path)
	if m == nil {
		return ""
	}
	if httputil.ValidateID(m[1]) != nil {
		return ""
	}
	return m[1]
}

// extractBilibiliID returns the video id (or short-link code) and whether
// the URL is a b23.tv short link.
func extractBilibiliID(u *url.URL) (id string, short bool) {
	short = strings.EqualFold(strings.TrimSuffix(u.Hostname(), "."), "b23.tv")

	re := bilibiliVideoPath
	if short {
		re = shortLinkPath
	}
	m := re.FindStringSubmatch(u.Path)
	if m == nil || httputil.ValidateID(m[1]) != nil {
		return "", short
	}
	return m[1], short
}

// bilibiliPlayerURL builds the player URL for a BV or av id.
func bilibiliPlayerURL(player, id string) string {
	params := url.Values{}
	if m := bilibiliAVID.FindStringSubmatch(id); m != nil {
		params.Set("aid", m[1])
	} else {
		params.Set("bvid", id)
	}
	return httputil.WithQuery(player, params)
}

// iframe renders a minimal iframe snippet with an escaped src.
func iframe(src string, attrs ...string) string {
	var b strings.Builder
	b.WriteString(`<iframe src="`)
	b.WriteString(html.EscapeString(src))
	b.WriteString(`"`)
	for _, a := range attrs {
		b.WriteString(" ")
		b.WriteString(a)
	}
	b.WriteString("></iframe>")
	return b.String()
}
