package works

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"folio/internal/media"
	"folio/internal/provider"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// EmbedLinks returns, in document order, the URL of every paragraph that
// consists of nothing but a single link to a supported provider. Links
// inside running text are left alone.
func EmbedLinks(source string) []string {
	src := []byte(source)
	doc := markdown.Parser().Parse(text.NewReader(src))

	var links []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		p, ok := n.(*ast.Paragraph)
		if !ok {
			return ast.WalkContinue, nil
		}
		if href := soleLink(p, src); href != "" {
			if kind, _ := provider.Classify(href); kind != media.Unsupported {
				links = append(links, href)
			}
		}
		return ast.WalkSkipChildren, nil
	})
	return links
}

// soleLink returns the destination of p's only link, or "" when p holds
// anything besides one link and surrounding whitespace.
func soleLink(p *ast.Paragraph, src []byte) string {
	var href string
	for c := p.FirstChild(); c != nil; c = c.NextSibling() {
		switch n := c.(type) {
		case *ast.Link:
			if href != "" {
				return ""
			}
			href = string(n.Destination)
		case *ast.AutoLink:
			if href != "" || n.AutoLinkType != ast.AutoLinkURL {
				return ""
			}
			href = string(n.URL(src))
		case *ast.Text:
			if len(bytes.TrimSpace(n.Segment.Value(src))) != 0 {
				return ""
			}
		default:
			return ""
		}
	}
	return href
}
