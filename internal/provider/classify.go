package provider

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"folio/internal/media"
)

// hostTable lists the hosts of each provider in classification priority order.
var hostTable = []struct {
	kind  media.ProviderKind
	hosts []string
}{
	{media.Twitter, []string{"twitter.com", "www.twitter.com", "mobile.twitter.com", "x.com", "www.x.com", "mobile.x.com"}},
	{media.Niconico, []string{"nicovideo.jp", "www.nicovideo.jp", "sp.nicovideo.jp", "embed.nicovideo.jp"}},
	{media.Bilibili, []string{"bilibili.com", "www.bilibili.com", "m.bilibili.com", "b23.tv"}},
	{media.Instagram, []string{"instagram.com", "www.instagram.com", "instagr.am", "www.instagr.am"}},
}

// ParseTarget parses user input into an absolute http(s) URL.
// Input without a scheme is read as https.
func ParseTarget(raw string) (*url.URL, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, errors.New("empty URL")
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("malformed URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, errors.New("URL has no host")
	}
	return u, nil
}

// Classify determines the provider of raw purely from its host.
// It returns media.Unsupported (and a nil URL when parsing failed) for
// anything else.
func Classify(raw string) (media.ProviderKind, *url.URL) {
	u, err := ParseTarget(raw)
	if err != nil {
		return media.Unsupported, nil
	}
	return ClassifyHost(u.Hostname()), u
}

// ClassifyHost maps a hostname to its provider.
func ClassifyHost(host string) media.ProviderKind {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	for _, row := range hostTable {
		for _, h := range row.hosts {
			if host == h {
				return row.kind
			}
		}
	}
	return media.Unsupported
}
