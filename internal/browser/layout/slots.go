// internal/browser/layout/slots.go
package layout

import (
	"fmt"

	"github.com/xkilldash9x/lattice/internal/browser/parser"
)

// Slot names one resolved number in a Record.
type Slot int

const (
	X Slot = iota
	Y
	Width
	Height
	FontSize
	PaddingTop
	PaddingRight
	PaddingBottom
	PaddingLeft
	BorderTopWidth
	BorderRightWidth
	BorderBottomWidth
	BorderLeftWidth
	MarginTop
	MarginRight
	MarginBottom
	MarginLeft
	ContentX
	ContentY
	ContentWidth
	ContentHeight
	ContentLineWidth
	ContentLineHeight
	MaskedX
	MaskedY
	MaskedWidth
	MaskedHeight
	BorderTopLeftRadius
	BorderTopRightRadius
	BorderBottomLeftRadius
	BorderBottomRightRadius

	// SlotCount is the number of slots in a Record.
	SlotCount
)

var slotNames = [SlotCount]string{
	X:                       "x",
	Y:                       "y",
	Width:                   "width",
	Height:                  "height",
	FontSize:                "font-size",
	PaddingTop:              "padding-top",
	PaddingRight:            "padding-right",
	PaddingBottom:           "padding-bottom",
	PaddingLeft:             "padding-left",
	BorderTopWidth:          "border-top-width",
	BorderRightWidth:        "border-right-width",
	BorderBottomWidth:       "border-bottom-width",
	BorderLeftWidth:         "border-left-width",
	MarginTop:               "margin-top",
	MarginRight:             "margin-right",
	MarginBottom:            "margin-bottom",
	MarginLeft:              "margin-left",
	ContentX:                "content-x",
	ContentY:                "content-y",
	ContentWidth:            "content-width",
	ContentHeight:           "content-height",
	ContentLineWidth:        "content-line-width",
	ContentLineHeight:       "content-line-height",
	MaskedX:                 "masked-x",
	MaskedY:                 "masked-y",
	MaskedWidth:             "masked-width",
	MaskedHeight:            "masked-height",
	BorderTopLeftRadius:     "border-top-left-radius",
	BorderTopRightRadius:    "border-top-right-radius",
	BorderBottomLeftRadius:  "border-bottom-left-radius",
	BorderBottomRightRadius: "border-bottom-right-radius",
}

func (s Slot) String() string {
	if s < 0 || s >= SlotCount {
		return fmt.Sprintf("Slot(%d)", int(s))
	}
	return slotNames[s]
}

// Property is the CSS property a slot is read from. Slots that layout
// computes itself have none.
func (s Slot) Property() (parser.Property, bool) {
	switch s {
	case Width, Height, FontSize,
		PaddingTop, PaddingRight, PaddingBottom, PaddingLeft,
		BorderTopWidth, BorderRightWidth, BorderBottomWidth, BorderLeftWidth,
		MarginTop, MarginRight, MarginBottom, MarginLeft,
		BorderTopLeftRadius, BorderTopRightRadius, BorderBottomLeftRadius, BorderBottomRightRadius:
		return parser.Property(slotNames[s]), true
	}
	return "", false
}

// selfWidthBased slots resolve percentages against the node's own width.
func (s Slot) selfWidthBased() bool {
	switch s {
	case PaddingTop, PaddingRight, PaddingBottom, PaddingLeft,
		BorderTopWidth, BorderRightWidth, BorderBottomWidth, BorderLeftWidth,
		BorderTopLeftRadius, BorderTopRightRadius, BorderBottomLeftRadius, BorderBottomRightRadius:
		return true
	}
	return false
}

var (
	marginSlots  = [4]Slot{MarginTop, MarginRight, MarginBottom, MarginLeft}
	borderSlots  = [4]Slot{BorderTopWidth, BorderRightWidth, BorderBottomWidth, BorderLeftWidth}
	paddingSlots = [4]Slot{PaddingTop, PaddingRight, PaddingBottom, PaddingLeft}
	radiusSlots  = [4]Slot{BorderTopLeftRadius, BorderTopRightRadius, BorderBottomRightRadius, BorderBottomLeftRadius}
)

// edgeSlots are resolved lazily in pass 1, margins first since they never
// depend on the node's own width.
var edgeSlots = func() []Slot {
	var out []Slot
	out = append(out, marginSlots[:]...)
	out = append(out, borderSlots[:]...)
	out = append(out, paddingSlots[:]...)
	out = append(out, radiusSlots[:]...)
	return out
}()
