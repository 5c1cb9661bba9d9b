// internal/browser/layout/flow.go
package layout

import "math"

// flow is a parent's content accumulator. Its running state lives in the
// parent's own content-* slots so a finished layout shows how it was built.
type flow struct {
	rec     *Record
	avail   int
	bounded bool
}

func newFlow(rec *Record) *flow {
	for _, s := range []Slot{ContentWidth, ContentHeight, ContentLineWidth, ContentLineHeight} {
		rec.Set(s, 0)
	}
	avail, ok := rec.Get(Width)
	return &flow{rec: rec, avail: avail, bounded: ok}
}

// cursor is where the next inline item would start.
func (f *flow) cursor() (int, int) {
	return f.rec.Value(ContentLineWidth), f.rec.Value(ContentHeight)
}

// placeInline puts an item after the previous one on the current line,
// breaking first if it would overflow a line that already holds something.
func (f *flow) placeInline(w, h int) (int, int) {
	lineWidth := f.rec.Value(ContentLineWidth)
	if f.bounded && lineWidth > 0 && lineWidth+w > f.avail {
		f.breakLine()
		lineWidth = 0
	}
	x, y := lineWidth, f.rec.Value(ContentHeight)
	f.rec.Set(ContentLineWidth, lineWidth+w)
	f.rec.Set(ContentLineHeight, max(f.rec.Value(ContentLineHeight), h))
	return x, y
}

// placeBlock puts an item on its own line.
func (f *flow) placeBlock(w, h int) (int, int) {
	f.breakLine()
	y := f.rec.Value(ContentHeight)
	f.rec.add(ContentHeight, h)
	f.rec.Set(ContentWidth, max(f.rec.Value(ContentWidth), w))
	return 0, y
}

// advance widens the current line without placing anything, as between two
// words. It does nothing at the start of a line.
func (f *flow) advance(w int) {
	if lw := f.rec.Value(ContentLineWidth); lw > 0 {
		f.rec.Set(ContentLineWidth, lw+w)
	}
}

// breakLine closes the current line, if it holds anything.
func (f *flow) breakLine() {
	lw, lh := f.rec.Value(ContentLineWidth), f.rec.Value(ContentLineHeight)
	if lw == 0 && lh == 0 {
		return
	}
	f.rec.Set(ContentWidth, max(f.rec.Value(ContentWidth), lw))
	f.rec.add(ContentHeight, lh)
	f.rec.Set(ContentLineWidth, 0)
	f.rec.Set(ContentLineHeight, 0)
}

func (f *flow) finish() { f.breakLine() }

func roundInt(v float64) int {
	px, _ := roundPx(v)
	return px
}

func ceilInt(v float64) int {
	px, _ := roundPx(math.Ceil(v))
	return px
}
