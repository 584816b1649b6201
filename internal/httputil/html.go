package httputil

import (
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// embedPolicy widens the UGC policy just enough for provider embed markup:
// iframes plus the handful of presentation attributes players rely on.
// Scripts, event handlers and non-http(s) URLs stay stripped. Inline styles
// are only kept on iframes, and only for sizing properties.
var embedPolicy = sync.OnceValue(func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	p.AllowDataAttributes()
	p.AllowAttrs("class", "lang", "dir").Globally()

	p.AllowElements("iframe")
	p.AllowAttrs("src", "width", "height", "title").OnElements("iframe")
	p.AllowAttrs("allow", "allowfullscreen", "frameborder", "scrolling").Globally()
	p.AllowStyles("width", "height", "max-width", "min-height", "border").OnElements("iframe")

	return p
})

// SanitizeEmbedHTML strips everything from untrusted embed markup that is
// not on the embed allow-list.
func SanitizeEmbedHTML(fragment string) string {
	return strings.TrimSpace(embedPolicy().Sanitize(fragment))
}

// HasContent reports whether an HTML fragment holds at least one element
// or some non-blank text.
func HasContent(fragment string) bool {
	if strings.TrimSpace(fragment) == "" {
		return false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return false
	}
	body := doc.Find("body")
	if body.Children().Length() > 0 {
		return true
	}
	return strings.TrimSpace(body.Text()) != ""
}

// IframeSrc returns the src of the first iframe in a fragment, or "".
func IframeSrc(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	return doc.Find("iframe").First().AttrOr("src", "")
}
