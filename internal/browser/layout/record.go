// internal/browser/layout/record.go
package layout

import "image"

// Record holds a node's resolved geometry. Every slot is either unset or a
// signed pixel value; once set, layout never overwrites a slot.
type Record struct {
	values [SlotCount]int
	set    [SlotCount]bool
}

// Get returns the slot's value and whether it has been resolved.
func (r *Record) Get(s Slot) (int, bool) {
	return r.values[s], r.set[s]
}

// Value returns the slot's value, or 0 when it is unset.
func (r *Record) Value(s Slot) int {
	return r.values[s]
}

// IsSet reports whether the slot has been resolved.
func (r *Record) IsSet(s Slot) bool {
	return r.set[s]
}

// Set stores v in the slot.
func (r *Record) Set(s Slot, v int) {
	r.values[s] = v
	r.set[s] = true
}

// SetIfUnset stores v only when the slot is still unset.
func (r *Record) SetIfUnset(s Slot, v int) bool {
	if r.set[s] {
		return false
	}
	r.Set(s, v)
	return true
}

func (r *Record) add(s Slot, delta int) {
	r.Set(s, r.values[s]+delta)
}

// zero resolves every slot to 0.
func (r *Record) zero() {
	for s := Slot(0); s < SlotCount; s++ {
		r.Set(s, 0)
	}
}

// IsComplete reports whether every slot is resolved.
func (r *Record) IsComplete() bool {
	for _, ok := range r.set {
		if !ok {
			return false
		}
	}
	return true
}

// Missing lists the unresolved slots.
func (r *Record) Missing() []Slot {
	var out []Slot
	for s := Slot(0); s < SlotCount; s++ {
		if !r.set[s] {
			out = append(out, s)
		}
	}
	return out
}

// Map returns the resolved slots keyed by name.
func (r *Record) Map() map[string]int {
	out := make(map[string]int, SlotCount)
	for s := Slot(0); s < SlotCount; s++ {
		if r.set[s] {
			out[s.String()] = r.values[s]
		}
	}
	return out
}

func (r *Record) horizontal(slots [4]Slot) int {
	return r.values[slots[1]] + r.values[slots[3]]
}

func (r *Record) vertical(slots [4]Slot) int {
	return r.values[slots[0]] + r.values[slots[2]]
}

// positioned reports whether the box can be drawn at all.
func (r *Record) positioned() bool {
	return r.set[X] && r.set[Y] && r.set[Width] && r.set[Height]
}

// BorderBox is the rectangle enclosed by the outer border edge. X and Y are
// the border-box origin; Width and Height are the content size.
func (r *Record) BorderBox() (image.Rectangle, bool) {
	if !r.positioned() {
		return image.Rectangle{}, false
	}
	w := r.values[Width] + r.horizontal(paddingSlots) + r.horizontal(borderSlots)
	h := r.values[Height] + r.vertical(paddingSlots) + r.vertical(borderSlots)
	return image.Rect(r.values[X], r.values[Y], r.values[X]+w, r.values[Y]+h), true
}

// PaddingBox is the border box minus the border widths.
func (r *Record) PaddingBox() (image.Rectangle, bool) {
	box, ok := r.BorderBox()
	if !ok {
		return box, false
	}
	box.Min.X += r.values[BorderLeftWidth]
	box.Min.Y += r.values[BorderTopWidth]
	box.Max.X -= r.values[BorderRightWidth]
	box.Max.Y -= r.values[BorderBottomWidth]
	return box.Canon(), true
}

// ContentBox is the padding box minus the padding.
func (r *Record) ContentBox() (image.Rectangle, bool) {
	box, ok := r.PaddingBox()
	if !ok {
		return box, false
	}
	box.Min.X += r.values[PaddingLeft]
	box.Min.Y += r.values[PaddingTop]
	box.Max.X -= r.values[PaddingRight]
	box.Max.Y -= r.values[PaddingBottom]
	return box.Canon(), true
}

// InnerRect is the padding box shrunk by the largest corner radius on each
// side, the region guaranteed to lie inside the rounded shape.
func (r *Record) InnerRect() (image.Rectangle, bool) {
	box, ok := r.PaddingBox()
	if !ok {
		return box, false
	}
	tl, tr, br, bl := r.Radii()
	box.Min.X += max(tl, bl)
	box.Max.X -= max(tr, br)
	box.Min.Y += max(tl, tr)
	box.Max.Y -= max(bl, br)
	if box.Empty() {
		return image.Rectangle{}, true
	}
	return box, true
}

// MaskedRect is the visible part of the border box after ancestor clipping.
func (r *Record) MaskedRect() (image.Rectangle, bool) {
	if !r.set[MaskedX] || !r.set[MaskedY] || !r.set[MaskedWidth] || !r.set[MaskedHeight] {
		return image.Rectangle{}, false
	}
	x, y := r.values[MaskedX], r.values[MaskedY]
	return image.Rect(x, y, x+r.values[MaskedWidth], y+r.values[MaskedHeight]), true
}

// Radii returns the corner radii clockwise from top-left.
func (r *Record) Radii() (tl, tr, br, bl int) {
	return r.values[BorderTopLeftRadius], r.values[BorderTopRightRadius],
		r.values[BorderBottomRightRadius], r.values[BorderBottomLeftRadius]
}

// outerSize is the margin-box size a parent flows.
func (r *Record) outerSize() (int, int) {
	w := r.values[Width] + r.horizontal(paddingSlots) + r.horizontal(borderSlots) + r.horizontal(marginSlots)
	h := r.values[Height] + r.vertical(paddingSlots) + r.vertical(borderSlots) + r.vertical(marginSlots)
	return max(w, 0), max(h, 0)
}
