// internal/browser/style/computed.go
package style

import (
	"image/color"
	"sort"

	"github.com/xkilldash9x/lattice/internal/browser/dom"
	"github.com/xkilldash9x/lattice/internal/browser/parser"
)

// Origin ranks where a declaration came from. A higher origin always beats a
// lower one, regardless of specificity.
type Origin int

const (
	OriginUserAgent Origin = iota
	OriginAuthor
	OriginInline
)

// Entry is the winning (specificity, rule) pair for one property.
type Entry struct {
	Origin      Origin
	Specificity parser.Specificity
	Rule        *parser.Style
}

// outranks reports whether e should replace the stored entry. Within an
// origin the test is strict, so on a specificity tie the rule evaluated first
// keeps the property.
func (e Entry) outranks(stored Entry) bool {
	if e.Origin != stored.Origin {
		return e.Origin > stored.Origin
	}
	return e.Specificity.Greater(stored.Specificity)
}

// ComputedStyle is one node's cascade result.
type ComputedStyle struct {
	// Selector is the node's own complete selector.
	Selector parser.Selector
	entries  map[parser.Property]Entry
}

func newComputedStyle(sel parser.Selector) *ComputedStyle {
	return &ComputedStyle{Selector: sel, entries: make(map[parser.Property]Entry)}
}

func (cs *ComputedStyle) apply(prop parser.Property, candidate Entry) bool {
	stored, ok := cs.entries[prop]
	if ok && !candidate.outranks(stored) {
		return false
	}
	cs.entries[prop] = candidate
	return true
}

// Entry returns the winning entry for prop.
func (cs *ComputedStyle) Entry(prop parser.Property) (Entry, bool) {
	e, ok := cs.entries[prop]
	return e, ok
}

// Get returns the winning value for prop.
func (cs *ComputedStyle) Get(prop parser.Property) (parser.Value, bool) {
	e, ok := cs.entries[prop]
	if !ok {
		return "", false
	}
	return e.Rule.Get(prop)
}

// Properties lists every property with a winner, sorted.
func (cs *ComputedStyle) Properties() []parser.Property {
	out := make([]parser.Property, 0, len(cs.entries))
	for p := range cs.entries {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// inheritedProperties fall back to the nearest ancestor that sets them.
var inheritedProperties = map[parser.Property]bool{
	"color":       true,
	"font-size":   true,
	"font-family": true,
	"font-weight": true,
	"font-style":  true,
	"line-height": true,
	"text-align":  true,
	"visibility":  true,
}

// Result maps nodes to their computed styles for one cascade run.
type Result struct {
	tree    dom.Tree
	styles  map[dom.Handle]*ComputedStyle
	parents map[dom.Handle]dom.Handle
	order   []dom.Handle
	// Errors collects the parse errors of every sheet and style attribute seen.
	Errors []error
}

func newResult(tree dom.Tree) *Result {
	res := &Result{
		tree:    tree,
		styles:  make(map[dom.Handle]*ComputedStyle),
		parents: make(map[dom.Handle]dom.Handle),
	}
	var walk func(h dom.Handle)
	walk = func(h dom.Handle) {
		res.order = append(res.order, h)
		for _, c := range tree.Children(h) {
			res.parents[c] = h
			walk(c)
		}
	}
	if root := tree.Root(); root != nil {
		walk(root)
	}
	return res
}

func (r *Result) styleFor(h dom.Handle) *ComputedStyle {
	cs, ok := r.styles[h]
	if !ok {
		cs = newComputedStyle(dom.CompleteSelector(r.tree, h))
		r.styles[h] = cs
	}
	return cs
}

// Tree is the tree the result was computed for.
func (r *Result) Tree() dom.Tree { return r.tree }

// Style returns the node's computed style, if any rule touched it.
func (r *Result) Style(h dom.Handle) (*ComputedStyle, bool) {
	cs, ok := r.styles[h]
	return cs, ok
}

// Len is the number of styled nodes.
func (r *Result) Len() int { return len(r.styles) }

// Value returns the node's own winning value for prop. Inherited properties
// are looked up on ancestors, and text nodes always read from their parent.
func (r *Result) Value(h dom.Handle, prop parser.Property) (parser.Value, bool) {
	if r.tree.IsText(h) {
		h = r.parents[h]
	}
	for h != nil {
		if cs, ok := r.styles[h]; ok {
			if v, ok := cs.Get(prop); ok && v.Keyword() != "inherit" {
				return v, true
			}
		}
		if !inheritedProperties[prop] {
			return "", false
		}
		h = r.parents[h]
	}
	return "", false
}

// Keyword is Value lower-cased, or "" when unset.
func (r *Result) Keyword(h dom.Handle, prop parser.Property) string {
	v, _ := r.Value(h, prop)
	return v.Keyword()
}

// Length decodes Value as a number with unit.
func (r *Result) Length(h dom.Handle, prop parser.Property) (parser.Length, bool) {
	v, ok := r.Value(h, prop)
	if !ok {
		return parser.Length{}, false
	}
	return v.Length()
}

// Color decodes Value as a color. "currentcolor" resolves to the node's color.
func (r *Result) Color(h dom.Handle, prop parser.Property) (color.NRGBA, bool) {
	v, ok := r.Value(h, prop)
	if !ok {
		return color.NRGBA{}, false
	}
	if v.Keyword() == "currentcolor" && prop != "color" {
		return r.Color(h, "color")
	}
	return v.Color()
}
