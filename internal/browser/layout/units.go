// internal/browser/layout/units.go
package layout

import (
	"math"

	"github.com/xkilldash9x/lattice/internal/browser/dom"
)

// maxCoord bounds resolved values so absurd inputs cannot overflow int math
// further down the pipeline.
const maxCoord = 1 << 30

// UnitResolver turns (value, unit) pairs into integer pixels for one slot of
// one node. It reads the records built so far, so results depend on how far
// the passes have progressed.
type UnitResolver struct {
	layout *Layout
}

// Resolve converts value+unit for the given node and slot. It returns false
// when the unit is unknown or a base the unit depends on is not resolved yet.
//
// Percentages of padding, border widths and radii use the node's own width.
// Every other slot uses the same slot on the parent, or the viewport (its
// height for the height slot) on the root. The em unit uses the parent's
// font size for the font-size slot and the node's own font size otherwise.
func (u UnitResolver) Resolve(value float64, unit string, node dom.Handle, slot Slot) (int, bool) {
	var px float64
	switch unit {
	case "px":
		px = value
	case "%":
		base, ok := u.percentBase(node, slot)
		if !ok {
			return 0, false
		}
		px = value * float64(base) / 100
	case "em":
		base, ok := u.emBase(node, slot)
		if !ok {
			return 0, false
		}
		px = value * float64(base)
	case "rem":
		px = value * u.rootFontSize()
	case "vw":
		px = value * float64(u.layout.Viewport.Width) / 100
	case "vh":
		px = value * float64(u.layout.Viewport.Height) / 100
	case "vmin":
		px = value * float64(min(u.layout.Viewport.Width, u.layout.Viewport.Height)) / 100
	case "vmax":
		px = value * float64(max(u.layout.Viewport.Width, u.layout.Viewport.Height)) / 100
	case "pt":
		px = value * 96 / 72
	case "pc":
		px = value * 16
	case "in":
		px = value * 96
	case "cm":
		px = value * 96 / 2.54
	case "mm":
		px = value * 96 / 25.4
	case "q":
		px = value * 96 / 101.6
	default:
		return 0, false
	}
	return roundPx(px)
}

func (u UnitResolver) percentBase(node dom.Handle, slot Slot) (int, bool) {
	if slot.selfWidthBased() {
		return u.layout.records[node].Get(Width)
	}
	parent, ok := u.layout.parents[node]
	if !ok {
		switch slot {
		case Height:
			return u.layout.Viewport.Height, true
		case FontSize:
			return int(math.Round(u.layout.defaultFontSize)), true
		}
		return u.layout.Viewport.Width, true
	}
	return u.layout.records[parent].Get(slot)
}

func (u UnitResolver) emBase(node dom.Handle, slot Slot) (int, bool) {
	if slot != FontSize {
		return u.layout.records[node].Get(FontSize)
	}
	parent, ok := u.layout.parents[node]
	if !ok {
		return int(math.Round(u.layout.defaultFontSize)), true
	}
	return u.layout.records[parent].Get(FontSize)
}

func (u UnitResolver) rootFontSize() float64 {
	if root := u.layout.root; root != nil {
		if fs, ok := u.layout.records[root].Get(FontSize); ok {
			return float64(fs)
		}
	}
	return u.layout.defaultFontSize
}

func roundPx(px float64) (int, bool) {
	if math.IsNaN(px) || math.IsInf(px, 0) {
		return 0, false
	}
	px = math.Round(px)
	if px > maxCoord {
		px = maxCoord
	} else if px < -maxCoord {
		px = -maxCoord
	}
	return int(px), true
}
