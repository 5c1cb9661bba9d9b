// internal/browser/layout/layout.go
package layout

import (
	"image"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/lattice/internal/browser/dom"
	"github.com/xkilldash9x/lattice/internal/browser/font"
	"github.com/xkilldash9x/lattice/internal/browser/parser"
	"github.com/xkilldash9x/lattice/internal/browser/style"
)

// -- Constants and Configuration --

const (
	// DefaultFontSize is the root font size when nothing else is configured.
	DefaultFontSize = style.BaseFontSize
)

// Viewport is the size of the drawing surface in pixels.
type Viewport struct {
	Width  int
	Height int
}

// Bounds is the viewport as a rectangle anchored at the origin.
func (v Viewport) Bounds() image.Rectangle {
	return image.Rect(0, 0, v.Width, v.Height)
}

// Measurer supplies text metrics. font.Face satisfies it.
type Measurer interface {
	Measure(text string, size float64) float64
	LineHeight(size float64) float64
}

// Fragment is a run of words from one text node that share a line.
type Fragment struct {
	Text     string
	X        int
	Y        int
	Width    int
	Height   int
	FontSize int
}

// -- Layout Result --

// Layout is the output of one layout run: a Record for every node of the
// tree plus the text fragments produced while flowing text.
type Layout struct {
	Viewport Viewport

	tree            dom.Tree
	styles          *style.Result
	root            dom.Handle
	order           []dom.Handle
	parents         map[dom.Handle]dom.Handle
	records         map[dom.Handle]*Record
	hidden          map[dom.Handle]bool
	fragments       map[dom.Handle][]Fragment
	clips           map[dom.Handle]image.Rectangle
	defaultFontSize float64
}

// Root is the tree's root element, nil for an empty tree.
func (l *Layout) Root() dom.Handle { return l.root }

// Styles is the cascade result the layout was computed from.
func (l *Layout) Styles() *style.Result { return l.styles }

// Order lists every node in document (pre-)order.
func (l *Layout) Order() []dom.Handle { return l.order }

// Record returns the node's geometry.
func (l *Layout) Record(h dom.Handle) (*Record, bool) {
	rec, ok := l.records[h]
	return rec, ok
}

// Parent returns the node's parent.
func (l *Layout) Parent(h dom.Handle) (dom.Handle, bool) {
	p, ok := l.parents[h]
	return p, ok
}

// Hidden reports whether the node is inside a display:none subtree.
func (l *Layout) Hidden(h dom.Handle) bool { return l.hidden[h] }

// Fragments returns the laid out runs of a text node, in absolute coordinates.
func (l *Layout) Fragments(h dom.Handle) []Fragment { return l.fragments[h] }

// Incomplete counts visible nodes with at least one unresolved slot.
func (l *Layout) Incomplete() int {
	n := 0
	for _, h := range l.order {
		if !l.hidden[h] && !l.records[h].IsComplete() {
			n++
		}
	}
	return n
}

// -- Engine --

// Engine computes Records from cascade results in three passes: top-down
// resolution of declared values, bottom-up content flow, and top-down
// conversion to absolute coordinates with clipping.
type Engine struct {
	measurer        Measurer
	viewport        Viewport
	defaultFontSize float64
	logger          *zap.Logger
}

// NewEngine creates a layout engine. A nil measurer uses the embedded font.
func NewEngine(measurer Measurer, viewport Viewport, logger *zap.Logger) *Engine {
	if measurer == nil {
		measurer = font.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		measurer:        measurer,
		viewport:        viewport,
		defaultFontSize: DefaultFontSize,
		logger:          logger.Named("layout"),
	}
}

// SetViewport changes the viewport used by subsequent layouts.
func (e *Engine) SetViewport(v Viewport) { e.viewport = v }

// Viewport returns the current viewport.
func (e *Engine) Viewport() Viewport { return e.viewport }

// SetDefaultFontSize sets the root font size in pixels.
func (e *Engine) SetDefaultFontSize(px float64) {
	if px > 0 {
		e.defaultFontSize = px
	}
}

// Layout runs all three passes over the styled tree. Every call builds a
// fresh result; nothing is carried over from previous runs.
func (e *Engine) Layout(styles *style.Result) *Layout {
	l := e.newLayout(styles)
	e.resolveTopDown(l)
	e.resolveBottomUp(l)
	e.resolveAbsolute(l)

	e.logger.Debug("Layout complete",
		zap.Int("nodes", len(l.order)),
		zap.Int("incomplete", l.Incomplete()),
		zap.Int("viewport_width", l.Viewport.Width),
		zap.Int("viewport_height", l.Viewport.Height))
	return l
}

func (e *Engine) newLayout(styles *style.Result) *Layout {
	tree := styles.Tree()
	l := &Layout{
		Viewport:        e.viewport,
		tree:            tree,
		styles:          styles,
		root:            tree.Root(),
		parents:         make(map[dom.Handle]dom.Handle),
		records:         make(map[dom.Handle]*Record),
		hidden:          make(map[dom.Handle]bool),
		fragments:       make(map[dom.Handle][]Fragment),
		clips:           make(map[dom.Handle]image.Rectangle),
		defaultFontSize: e.defaultFontSize,
	}
	var walk func(h dom.Handle)
	walk = func(h dom.Handle) {
		l.order = append(l.order, h)
		l.records[h] = &Record{}
		for _, c := range tree.Children(h) {
			l.parents[c] = h
			walk(c)
		}
	}
	if l.root != nil {
		walk(l.root)
	}
	return l
}

// -- Pass 1: top-down --

func (e *Engine) resolveTopDown(l *Layout) {
	units := UnitResolver{layout: l}
	for _, h := range l.order {
		rec := l.records[h]
		parent, hasParent := l.parents[h]
		isText := l.tree.IsText(h)
		if (hasParent && l.hidden[parent]) || (!isText && l.styles.Display(h) == style.DisplayNone) {
			l.hidden[h] = true
			rec.zero()
			continue
		}

		e.resolveFontSize(l, units, h, rec)
		if isText {
			for _, s := range edgeSlots {
				rec.SetIfUnset(s, 0)
			}
			continue
		}

		display := l.styles.Display(h)
		if display == style.DisplayBlock || display == style.DisplayInlineBlock {
			resolveDeclared(l, units, h, Width)
			resolveDeclared(l, units, h, Height)
		}
		resolveEdges(l, units, h)
		if display == style.DisplayBlock && !rec.IsSet(Width) && isAuto(l, h, "width") {
			fillAvailableWidth(l, units, h)
		}
	}
}

var fontSizeKeywords = map[string]int{
	"xx-small":  9,
	"x-small":   10,
	"small":     13,
	"medium":    16,
	"large":     18,
	"x-large":   24,
	"xx-large":  32,
	"xxx-large": 48,
}

func (e *Engine) resolveFontSize(l *Layout, units UnitResolver, h dom.Handle, rec *Record) {
	inherited := roundInt(l.defaultFontSize)
	if parent, ok := l.parents[h]; ok {
		inherited = l.records[parent].Value(FontSize)
	}
	if l.tree.IsText(h) {
		rec.SetIfUnset(FontSize, inherited)
		return
	}
	v, ok := ownValue(l, h, "font-size")
	if !ok {
		rec.SetIfUnset(FontSize, inherited)
		return
	}
	switch kw := v.Keyword(); kw {
	case "smaller":
		rec.SetIfUnset(FontSize, roundInt(float64(inherited)/1.2))
		return
	case "larger":
		rec.SetIfUnset(FontSize, roundInt(float64(inherited)*1.2))
		return
	default:
		if px, ok := fontSizeKeywords[kw]; ok {
			rec.SetIfUnset(FontSize, px)
			return
		}
	}
	if px, ok := resolveValue(units, h, FontSize, v); ok && px >= 0 {
		rec.SetIfUnset(FontSize, px)
		return
	}
	rec.SetIfUnset(FontSize, inherited)
}

// fillAvailableWidth gives an auto-width block the parent's content width
// minus its own horizontal edges.
func fillAvailableWidth(l *Layout, units UnitResolver, h dom.Handle) {
	rec := l.records[h]
	avail := l.Viewport.Width
	if parent, ok := l.parents[h]; ok {
		w, ok := l.records[parent].Get(Width)
		if !ok {
			return
		}
		avail = w
	}
	used := rec.horizontal(marginSlots) + rec.horizontal(borderSlots) + rec.horizontal(paddingSlots)
	rec.Set(Width, max(avail-used, 0))
	resolveEdges(l, units, h)
}

// resolveEdges fills margin, border, padding and radius slots that are still
// unset. Undeclared edges are 0; declared ones that cannot be resolved yet
// stay unset for a later attempt.
func resolveEdges(l *Layout, units UnitResolver, h dom.Handle) {
	rec := l.records[h]
	for _, s := range edgeSlots {
		if rec.IsSet(s) {
			continue
		}
		prop, _ := s.Property()
		v, ok := ownValue(l, h, prop)
		if !ok || (isBorderWidth(s) && !hasBorderStyle(l, h, s)) {
			rec.Set(s, 0)
			continue
		}
		if isRadius(s) {
			if fields := v.Fields(); len(fields) > 0 {
				v = parser.Value(fields[0])
			}
		}
		if px, ok := resolveValue(units, h, s, v); ok {
			if px < 0 && !isMargin(s) {
				px = 0
			}
			rec.Set(s, px)
		}
	}
}

func resolveDeclared(l *Layout, units UnitResolver, h dom.Handle, s Slot) {
	rec := l.records[h]
	if rec.IsSet(s) {
		return
	}
	prop, _ := s.Property()
	v, ok := ownValue(l, h, prop)
	if !ok {
		return
	}
	if px, ok := resolveValue(units, h, s, v); ok {
		rec.Set(s, max(px, 0))
	}
}

// resolveValue maps a declared value onto a slot.
func resolveValue(units UnitResolver, h dom.Handle, s Slot, v parser.Value) (int, bool) {
	switch kw := v.Keyword(); kw {
	case "auto":
		if isMargin(s) {
			return 0, true
		}
		return 0, false
	case "inherit":
		parent, ok := units.layout.parents[h]
		if !ok {
			return 0, false
		}
		return units.layout.records[parent].Get(s)
	case "thin", "medium", "thick":
		if !isBorderWidth(s) {
			return 0, false
		}
		return map[string]int{"thin": 1, "medium": 3, "thick": 5}[kw], true
	}
	length, ok := v.Length()
	if !ok {
		return 0, false
	}
	if length.Unit == "" {
		if length.Value == 0 {
			return 0, true
		}
		return 0, false
	}
	return units.Resolve(length.Value, length.Unit, h, s)
}

// ownValue reads a value declared on the node itself, ignoring inheritance.
func ownValue(l *Layout, h dom.Handle, prop parser.Property) (parser.Value, bool) {
	cs, ok := l.styles.Style(h)
	if !ok {
		return "", false
	}
	return cs.Get(prop)
}

func isAuto(l *Layout, h dom.Handle, prop parser.Property) bool {
	v, ok := ownValue(l, h, prop)
	return !ok || v.Keyword() == "auto"
}

var borderStyleProps = map[Slot]parser.Property{
	BorderTopWidth:    "border-top-style",
	BorderRightWidth:  "border-right-style",
	BorderBottomWidth: "border-bottom-style",
	BorderLeftWidth:   "border-left-style",
}

func hasBorderStyle(l *Layout, h dom.Handle, s Slot) bool {
	v, ok := ownValue(l, h, borderStyleProps[s])
	if !ok {
		return false
	}
	kw := v.Keyword()
	return kw != "none" && kw != "hidden" && kw != ""
}

func isMargin(s Slot) bool      { return s >= MarginTop && s <= MarginLeft }
func isBorderWidth(s Slot) bool { return s >= BorderTopWidth && s <= BorderLeftWidth }
func isRadius(s Slot) bool      { return s >= BorderTopLeftRadius && s <= BorderBottomRightRadius }

// -- Pass 2: bottom-up --

// resolveBottomUp visits nodes in reverse document order, so every child is
// final by the time its parent flows it. Each parent then places its
// children in document order.
func (e *Engine) resolveBottomUp(l *Layout) {
	units := UnitResolver{layout: l}
	for i := len(l.order) - 1; i >= 0; i-- {
		h := l.order[i]
		if l.hidden[h] || l.tree.IsText(h) {
			continue
		}
		rec := l.records[h]
		f := newFlow(rec)
		for _, c := range l.tree.Children(h) {
			if l.hidden[c] {
				continue
			}
			if l.tree.IsText(c) {
				e.flowText(l, units, h, c, f)
				continue
			}
			flowElement(l, c, f)
		}
		f.finish()

		if rec.SetIfUnset(Width, rec.Value(ContentWidth)) {
			resolveEdges(l, units, h)
		}
		rec.SetIfUnset(Height, rec.Value(ContentHeight))
	}

	if l.root != nil && !l.hidden[l.root] {
		rec := l.records[l.root]
		rec.SetIfUnset(X, rec.Value(MarginLeft))
		rec.SetIfUnset(Y, rec.Value(MarginTop))
	}
}

func flowElement(l *Layout, c dom.Handle, f *flow) {
	rec := l.records[c]
	w, h := rec.outerSize()
	var x, y int
	switch l.styles.Display(c) {
	case style.DisplayInline, style.DisplayInlineBlock:
		x, y = f.placeInline(w, h)
	default:
		x, y = f.placeBlock(w, h)
	}
	rec.SetIfUnset(X, x+rec.Value(MarginLeft))
	rec.SetIfUnset(Y, y+rec.Value(MarginTop))
}

// flowText splits a text node into words and feeds them to the parent's
// flow one by one, so a run can wrap between any two words.
func (e *Engine) flowText(l *Layout, units UnitResolver, parent, text dom.Handle, f *flow) {
	rec := l.records[text]
	content := l.tree.Text(text)
	size := float64(rec.Value(FontSize))
	words := strings.Fields(content)

	if len(words) == 0 {
		x, y := f.cursor()
		rec.SetIfUnset(X, x)
		rec.SetIfUnset(Y, y)
		for _, s := range []Slot{Width, Height, ContentWidth, ContentHeight, ContentLineWidth, ContentLineHeight} {
			rec.SetIfUnset(s, 0)
		}
		return
	}

	lineHeight := e.lineHeight(l, units, parent, size)
	if startsWithSpace(content) {
		f.advance(ceilInt(e.measurer.Measure(" ", size)))
	}
	trailing := endsWithSpace(content)

	var frags []Fragment
	for i, word := range words {
		item := word
		if i < len(words)-1 || trailing {
			item += " "
		}
		width := ceilInt(e.measurer.Measure(item, size))
		x, y := f.placeInline(width, lineHeight)
		frags = appendFragment(frags, Fragment{
			Text:     item,
			X:        x,
			Y:        y,
			Width:    width,
			Height:   lineHeight,
			FontSize: int(size),
		})
	}

	bounds := image.Rect(frags[0].X, frags[0].Y, frags[0].X+frags[0].Width, frags[0].Y+frags[0].Height)
	for _, fr := range frags[1:] {
		bounds = bounds.Union(image.Rect(fr.X, fr.Y, fr.X+fr.Width, fr.Y+fr.Height))
	}
	rec.SetIfUnset(X, bounds.Min.X)
	rec.SetIfUnset(Y, bounds.Min.Y)
	rec.SetIfUnset(Width, bounds.Dx())
	rec.SetIfUnset(Height, bounds.Dy())
	rec.SetIfUnset(ContentWidth, bounds.Dx())
	rec.SetIfUnset(ContentHeight, bounds.Dy())
	rec.SetIfUnset(ContentLineWidth, 0)
	rec.SetIfUnset(ContentLineHeight, 0)
	l.fragments[text] = frags
}

// appendFragment merges a word into the previous fragment when it directly
// continues it on the same line.
func appendFragment(frags []Fragment, fr Fragment) []Fragment {
	if n := len(frags); n > 0 {
		last := &frags[n-1]
		if last.Y == fr.Y && last.X+last.Width == fr.X {
			last.Text += fr.Text
			last.Width += fr.Width
			last.Height = max(last.Height, fr.Height)
			return frags
		}
	}
	return append(frags, fr)
}

// lineHeight resolves the parent's line-height for text at the given size.
func (e *Engine) lineHeight(l *Layout, units UnitResolver, parent dom.Handle, size float64) int {
	normal := ceilInt(e.measurer.LineHeight(size))
	v, ok := l.styles.Value(parent, "line-height")
	if !ok || v.Keyword() == "normal" {
		return normal
	}
	if n, ok := v.Number(); ok && n > 0 {
		return roundInt(n * size)
	}
	length, ok := v.Length()
	if !ok {
		return normal
	}
	var px int
	switch length.Unit {
	case "%":
		px = roundInt(length.Value * size / 100)
	case "em":
		px = roundInt(length.Value * size)
	default:
		px, ok = units.Resolve(length.Value, length.Unit, parent, ContentLineHeight)
		if !ok {
			return normal
		}
	}
	if px <= 0 {
		return normal
	}
	return px
}

func startsWithSpace(s string) bool {
	return s != "" && strings.TrimLeft(s[:1], " \t\n\r\f") == ""
}

func endsWithSpace(s string) bool {
	return s != "" && strings.TrimRight(s[len(s)-1:], " \t\n\r\f") == ""
}

// -- Pass 3: absolute positions and clipping --

func (e *Engine) resolveAbsolute(l *Layout) {
	for _, h := range l.order {
		if l.hidden[h] {
			continue
		}
		rec := l.records[h]
		originX, originY := 0, 0
		clip := l.Viewport.Bounds()
		if parent, ok := l.parents[h]; ok {
			prec := l.records[parent]
			originX, originY = prec.Value(ContentX), prec.Value(ContentY)
			clip = l.clips[parent]
		}

		rec.Set(X, originX+rec.Value(X))
		rec.Set(Y, originY+rec.Value(Y))

		if l.tree.IsText(h) {
			rec.SetIfUnset(ContentX, rec.Value(X))
			rec.SetIfUnset(ContentY, rec.Value(Y))
			frags := l.fragments[h]
			for i := range frags {
				frags[i].X += originX
				frags[i].Y += originY
			}
		} else {
			rec.SetIfUnset(ContentX, rec.Value(X)+rec.Value(BorderLeftWidth)+rec.Value(PaddingLeft))
			rec.SetIfUnset(ContentY, rec.Value(Y)+rec.Value(BorderTopWidth)+rec.Value(PaddingTop))
		}

		l.clips[h] = clip
		box, ok := rec.BorderBox()
		if !ok {
			e.logger.Debug("Node has no box, skipping mask", zap.Stringer("missing", slotList(rec.Missing())))
			continue
		}
		masked := box.Intersect(clip)
		if masked.Empty() {
			masked = image.Rectangle{Min: box.Min, Max: box.Min}
		}
		rec.Set(MaskedX, masked.Min.X)
		rec.Set(MaskedY, masked.Min.Y)
		rec.Set(MaskedWidth, masked.Dx())
		rec.Set(MaskedHeight, masked.Dy())

		if !l.tree.IsText(h) && clipsOverflow(l, h) {
			padding, _ := rec.PaddingBox()
			l.clips[h] = padding.Intersect(clip)
		}
	}
}

func clipsOverflow(l *Layout, h dom.Handle) bool {
	switch l.styles.Keyword(h, "overflow") {
	case "hidden", "clip", "scroll", "auto":
		return true
	}
	return false
}

type slotList []Slot

func (s slotList) String() string {
	names := make([]string, len(s))
	for i, slot := range s {
		names[i] = slot.String()
	}
	return strings.Join(names, ",")
}
