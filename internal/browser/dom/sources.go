package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SourceKind tells an embedded sheet from a linked one.
type SourceKind int

const (
	SourceInline SourceKind = iota
	SourceLinked
)

// StyleSource is a style-bearing node: a <style> element with its text, or a
// <link rel="stylesheet"> with its href.
type StyleSource struct {
	Kind SourceKind
	Node Handle
	Text string
	Href string
}

// StyleSources lists style-bearing nodes in document order.
func (d *Document) StyleSources() []StyleSource {
	var out []StyleSource
	d.query.Find("style, link").Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		switch goquery.NodeName(s) {
		case "style":
			if media, ok := s.Attr("media"); ok && !screenMedia(media) {
				return
			}
			out = append(out, StyleSource{Kind: SourceInline, Node: node, Text: s.Text()})
		case "link":
			rel, _ := s.Attr("rel")
			href, ok := s.Attr("href")
			if !ok || strings.TrimSpace(href) == "" || !hasToken(rel, "stylesheet") {
				return
			}
			out = append(out, StyleSource{Kind: SourceLinked, Node: node, Href: strings.TrimSpace(href)})
		}
	})
	return out
}

func hasToken(list, token string) bool {
	for _, f := range strings.Fields(strings.ToLower(list)) {
		if f == token {
			return true
		}
	}
	return false
}

func screenMedia(media string) bool {
	for _, m := range strings.Split(strings.ToLower(media), ",") {
		switch strings.TrimSpace(m) {
		case "", "all", "screen":
			return true
		}
	}
	return false
}
