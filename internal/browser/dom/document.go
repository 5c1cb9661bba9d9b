// internal/browser/dom/document.go
package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/lattice/internal/browser/parser"
)

// Handle identifies a node. Handles are comparable and stable for the life
// of the document.
type Handle = *html.Node

// Tree is the read-only view of a markup tree that the cascade and layout
// consume. Implementations expose children only; parent links are derived by
// the consumer.
type Tree interface {
	Root() Handle
	Children(h Handle) []Handle
	TagName(h Handle) string
	Attr(h Handle, key string) (string, bool)
	IsText(h Handle) bool
	Text(h Handle) string
	Select(selector string) ([]Handle, error)
}

// Document is a Tree over a parsed HTML document. It also assigns each
// element and text node a dense 32-bit identifier in document order.
type Document struct {
	root  *html.Node
	query *goquery.Document
	ids   map[*html.Node]uint32
	nodes []*html.Node
	sels  map[string]cascadia.Sel
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	n, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return NewDocument(n)
}

// ParseString is Parse over a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// NewDocument wraps an already parsed node. A document node is unwrapped to
// its first element child.
func NewDocument(n *html.Node) (*Document, error) {
	root := n
	if n != nil && n.Type == html.DocumentNode {
		root = nil
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				root = c
				break
			}
		}
	}
	if root == nil || root.Type != html.ElementNode {
		return nil, fmt.Errorf("document has no root element")
	}

	d := &Document{
		root:  root,
		query: goquery.NewDocumentFromNode(root),
		ids:   make(map[*html.Node]uint32),
		sels:  make(map[string]cascadia.Sel),
	}
	d.Walk(func(h Handle, _ int) bool {
		d.nodes = append(d.nodes, h)
		d.ids[h] = uint32(len(d.nodes))
		return true
	})
	return d, nil
}

func (d *Document) Root() Handle { return d.root }

// Children returns element and text children in order. Comments and other
// node kinds are skipped.
func (d *Document) Children(h Handle) []Handle {
	if h == nil || h.Type != html.ElementNode {
		return nil
	}
	var out []Handle
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode || c.Type == html.TextNode {
			out = append(out, c)
		}
	}
	return out
}

// TagName is the lower-case tag, or "" for text.
func (d *Document) TagName(h Handle) string {
	if h == nil || h.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(h.Data)
}

func (d *Document) Attr(h Handle, key string) (string, bool) {
	if h == nil {
		return "", false
	}
	for _, a := range h.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func (d *Document) IsText(h Handle) bool {
	return h != nil && h.Type == html.TextNode
}

// Text returns a text node's data, or the concatenated text of an element's
// descendants.
func (d *Document) Text(h Handle) string {
	if h == nil {
		return ""
	}
	if h.Type == html.TextNode {
		return h.Data
	}
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				b.WriteString(c.Data)
			case html.ElementNode:
				collect(c)
			}
		}
	}
	collect(h)
	return b.String()
}

// Select returns every element under the root, root included, that matches
// the selector, in document order. Compiled selectors are cached.
func (d *Document) Select(selector string) ([]Handle, error) {
	sel, ok := d.sels[selector]
	if !ok {
		var err error
		sel, err = cascadia.Parse(selector)
		if err != nil {
			return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
		}
		d.sels[selector] = sel
	}
	var out []Handle
	if sel.Match(d.root) {
		out = append(out, d.root)
	}
	return append(out, cascadia.QueryAll(d.root, sel)...), nil
}

// Walk visits the tree in pre-order. Returning false skips the node's children.
func (d *Document) Walk(fn func(h Handle, depth int) bool) {
	var visit func(h Handle, depth int)
	visit = func(h Handle, depth int) {
		if !fn(h, depth) {
			return
		}
		for _, c := range d.Children(h) {
			visit(c, depth+1)
		}
	}
	visit(d.root, 0)
}

// NodeID returns the node's identifier. Identifiers start at 1.
func (d *Document) NodeID(h Handle) (uint32, bool) {
	id, ok := d.ids[h]
	return id, ok
}

// NodeByID resolves an identifier produced by NodeID.
func (d *Document) NodeByID(id uint32) (Handle, bool) {
	if id == 0 || int(id) > len(d.nodes) {
		return nil, false
	}
	return d.nodes[id-1], true
}

// Len is the number of identified nodes.
func (d *Document) Len() int { return len(d.nodes) }

// CompleteSelector describes an element by its own tag, classes and id.
func CompleteSelector(t Tree, h Handle) parser.Selector {
	sel := parser.Selector{TagName: t.TagName(h)}
	if id, ok := t.Attr(h, "id"); ok {
		sel.ID = strings.TrimSpace(id)
	}
	if class, ok := t.Attr(h, "class"); ok {
		sel.Classes = strings.Fields(class)
	}
	return sel
}
