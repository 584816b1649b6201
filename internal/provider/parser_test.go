package provider

import (
	"net/url"
	"strings"
	"testing"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := ParseTarget(raw)
	if err != nil {
		t.Fatalf("ParseTarget(%q): %v", raw, err)
	}
	return u
}

func TestParseOEmbed(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
		wantErr  bool
	}{
		{"rich", `{"type":"rich","html":"<blockquote>hi</blockquote>"}`, "<blockquote>hi</blockquote>", false},
		{"padded", `{"html":"  <p>x</p>\n"}`, "<p>x</p>", false},
		{"missing html", `{"type":"photo"}`, "", false},
		{"null html", `{"html":null}`, "", false},
		{"not json", `<html>blocked</html>`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseOEmbed([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseOEmbed error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("parseOEmbed = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestExtractNiconicoID(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://www.nicovideo.jp/watch/sm12345", "sm12345"},
		{"https://sp.nicovideo.jp/watch/so999?ref=x", "so999"},
		{"https://embed.nicovideo.jp/watch/sm1", "sm1"},
		{"https://www.nicovideo.jp/user/123", ""},
		{"https://www.nicovideo.jp/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := extractNiconicoID(mustParse(t, tt.input))
			if got != tt.expected {
				t.Errorf("extractNiconicoID(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExtractBilibiliID(t *testing.T) {
	tests := []struct {
		input     string
		wantID    string
		wantShort bool
	}{
		{"https://www.bilibili.com/video/BV1xx411c7XD", "BV1xx411c7XD", false},
		{"https://www.bilibili.com/video/BV1xx411c7XD/?p=2", "BV1xx411c7XD", false},
		{"https://m.bilibili.com/video/av170001", "av170001", false},
		{"https://b23.tv/abc123", "abc123", true},
		{"https://b23.tv/", "", true},
		{"https://www.bilibili.com/bangumi/play/ep1", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			id, short := extractBilibiliID(mustParse(t, tt.input))
			if id != tt.wantID || short != tt.wantShort {
				t.Errorf("extractBilibiliID(%q) = (%q, %v), want (%q, %v)", tt.input, id, short, tt.wantID, tt.wantShort)
			}
		})
	}
}

func TestBilibiliPlayerURL(t *testing.T) {
	player := "https://player.bilibili.com/player.html"
	if got := bilibiliPlayerURL(player, "BV1xx411c7XD"); got != player+"?bvid=BV1xx411c7XD" {
		t.Errorf("bvid URL = %q", got)
	}
	if got := bilibiliPlayerURL(player, "av170001"); got != player+"?aid=170001" {
		t.Errorf("aid URL = %q", got)
	}
}

func TestIframeEscapesSrc(t *testing.T) {
	got := iframe(`https://b23.tv/x?a=1&b="><script>`, "allowfullscreen")
	if strings.Contains(got, `"><script>`) {
		t.Errorf("src was not escaped: %s", got)
	}
	if !strings.HasPrefix(got, `<iframe src="https://b23.tv/x?a=1&amp;b=&#34;&gt;&lt;script&gt;" allowfullscreen>`) {
		t.Errorf("iframe = %s", got)
	}
}
