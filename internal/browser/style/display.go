// internal/browser/style/display.go
package style

import (
	"github.com/xkilldash9x/lattice/internal/browser/dom"
)

// DisplayType is the subset of CSS display values the layout engine acts on.
type DisplayType int

// Display types. Flex and grid are recognised but laid out as blocks.
const (
	DisplayInline DisplayType = iota
	DisplayBlock
	DisplayInlineBlock
	DisplayFlex
	DisplayGrid
	DisplayNone
)

func (d DisplayType) String() string {
	switch d {
	case DisplayBlock:
		return "block"
	case DisplayInlineBlock:
		return "inline-block"
	case DisplayFlex:
		return "flex"
	case DisplayGrid:
		return "grid"
	case DisplayNone:
		return "none"
	}
	return "inline"
}

// Display returns the node's display type. Text is always inline; elements
// without a usable display value get their tag's default.
func (r *Result) Display(h dom.Handle) DisplayType {
	if r.tree.IsText(h) {
		return DisplayInline
	}
	switch r.Keyword(h, "display") {
	case "block", "list-item", "table", "table-row", "table-cell", "flow-root":
		return DisplayBlock
	case "inline-block", "inline-table":
		return DisplayInlineBlock
	case "flex", "inline-flex":
		return DisplayFlex
	case "grid", "inline-grid":
		return DisplayGrid
	case "none":
		return DisplayNone
	case "inline", "contents":
		return DisplayInline
	}
	return defaultDisplay(r.tree.TagName(h))
}

// defaultDisplay is the display of an element whose style gives none.
func defaultDisplay(tag string) DisplayType {
	switch tag {
	case "html", "body", "div", "p", "h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "form", "header", "footer", "section", "article", "nav", "main",
		"aside", "blockquote", "pre", "figure", "table", "tr":
		return DisplayBlock
	case "head", "style", "script", "title", "meta", "link", "template", "noscript":
		return DisplayNone
	case "input", "button", "textarea", "select", "img":
		return DisplayInlineBlock
	default:
		return DisplayInline
	}
}

// IsHidden reports whether the node or any ancestor has display:none.
func (r *Result) IsHidden(h dom.Handle) bool {
	for h != nil {
		if !r.tree.IsText(h) && r.Display(h) == DisplayNone {
			return true
		}
		h = r.parents[h]
	}
	return false
}

// Parent returns the node's parent as seen during the cascade.
func (r *Result) Parent(h dom.Handle) (dom.Handle, bool) {
	p, ok := r.parents[h]
	return p, ok
}
