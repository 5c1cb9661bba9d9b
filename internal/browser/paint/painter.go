// internal/browser/paint/painter.go
package paint

import (
	"image"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"
	"go.uber.org/zap"

	"github.com/xkilldash9x/lattice/internal/browser/dom"
	"github.com/xkilldash9x/lattice/internal/browser/font"
	"github.com/xkilldash9x/lattice/internal/browser/hittest"
	"github.com/xkilldash9x/lattice/internal/browser/layout"
	"github.com/xkilldash9x/lattice/internal/browser/parser"
	"github.com/xkilldash9x/lattice/internal/browser/style"
)

// NodeIDs assigns the stable ids written into the hit-test buffer.
type NodeIDs interface {
	NodeID(h dom.Handle) (uint32, bool)
}

// Stats summarizes one paint.
type Stats struct {
	Boxes   int
	Texts   int
	Skipped int
}

// Painter draws a layout onto a raster surface and, in lock-step, stamps
// every filled region into a hit-test buffer of the same size.
type Painter struct {
	ctx        *gg.Context
	ids        *hittest.Buffer
	face       *font.Face
	background color.Color
	logger     *zap.Logger
}

// NewPainter allocates both surfaces. A nil face uses the embedded font.
func NewPainter(width, height int, face *font.Face, logger *zap.Logger) *Painter {
	if face == nil {
		face = font.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Painter{
		ctx:        gg.NewContext(max(width, 1), max(height, 1)),
		ids:        hittest.New(width, height),
		face:       face,
		background: color.White,
		logger:     logger.Named("paint"),
	}
}

// SetBackground sets the color the canvas is cleared to.
func (p *Painter) SetBackground(c color.Color) { p.background = c }

// Resize reallocates both surfaces.
func (p *Painter) Resize(width, height int) {
	p.ctx = gg.NewContext(max(width, 1), max(height, 1))
	p.ids.Resize(width, height)
}

// Image is the rendered frame.
func (p *Painter) Image() image.Image { return p.ctx.Image() }

// IDs is the hit-test buffer of the last frame.
func (p *Painter) IDs() *hittest.Buffer { return p.ids }

// SavePNG writes the rendered frame to a file.
func (p *Painter) SavePNG(path string) error { return p.ctx.SavePNG(path) }

// EncodePNG writes the rendered frame to w.
func (p *Painter) EncodePNG(w io.Writer) error { return p.ctx.EncodePNG(w) }

// Paint redraws the whole frame. Nodes whose geometry is incomplete are
// skipped individually; the rest of the frame is still drawn.
func (p *Painter) Paint(l *layout.Layout, ids NodeIDs) Stats {
	var stats Stats
	p.ctx.ResetClip()
	p.ctx.SetColor(p.background)
	p.ctx.Clear()
	p.ids.Clear()

	styles := l.Styles()
	tree := styles.Tree()
	for _, h := range l.Order() {
		if l.Hidden(h) {
			continue
		}
		rec, ok := l.Record(h)
		if !ok {
			continue
		}
		if styles.Keyword(h, "visibility") == "hidden" {
			continue
		}
		masked, ok := rec.MaskedRect()
		if !ok {
			stats.Skipped++
			p.logger.Debug("Skipping node without geometry", zap.String("tag", tree.TagName(h)))
			continue
		}
		if masked.Empty() {
			continue
		}
		p.clipTo(masked)

		if tree.IsText(h) {
			if p.paintText(l, h, styles) {
				stats.Texts++
			}
			continue
		}
		id, ok := ids.NodeID(h)
		if !ok {
			stats.Skipped++
			continue
		}
		if p.paintBox(h, rec, styles, id) {
			stats.Boxes++
		} else {
			stats.Skipped++
		}
	}
	p.ctx.ResetClip()
	p.ids.ResetClip()

	p.logger.Debug("Frame painted",
		zap.Int("boxes", stats.Boxes),
		zap.Int("texts", stats.Texts),
		zap.Int("skipped", stats.Skipped))
	return stats
}

func (p *Painter) clipTo(r image.Rectangle) {
	p.ctx.ResetClip()
	p.ctx.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
	p.ctx.Clip()
	p.ids.SetClip(r)
}

func (p *Painter) paintBox(h dom.Handle, rec *layout.Record, styles *style.Result, id uint32) bool {
	border, ok := rec.BorderBox()
	if !ok {
		return false
	}
	padding, _ := rec.PaddingBox()
	tl, tr, br, bl := rec.Radii()
	radii := [4]int{tl, tr, br, bl}

	filled := false
	if bg, ok := styles.Color(h, "background-color"); ok && bg.A > 0 {
		p.ctx.SetColor(bg)
		roundedPath(p.ctx, border, radii)
		p.ctx.Fill()
		filled = true
	}
	if p.paintBorder(h, rec, styles, border, padding, radii) {
		filled = true
	}
	// Only filled regions are hit-testable.
	if filled {
		p.ids.FillRoundedRect(border, radii, id)
	}
	return true
}

var sideColors = [4]parser.Property{"border-top-color", "border-right-color", "border-bottom-color", "border-left-color"}

func (p *Painter) paintBorder(h dom.Handle, rec *layout.Record, styles *style.Result, border, padding image.Rectangle, radii [4]int) bool {
	widths := [4]int{
		rec.Value(layout.BorderTopWidth), rec.Value(layout.BorderRightWidth),
		rec.Value(layout.BorderBottomWidth), rec.Value(layout.BorderLeftWidth),
	}
	if widths == [4]int{} {
		return false
	}
	var colors [4]color.Color
	uniform := true
	for i, prop := range sideColors {
		c, ok := styles.Color(h, prop)
		if !ok {
			c, ok = styles.Color(h, "color")
		}
		if !ok {
			c = color.NRGBA{A: 255}
		}
		colors[i] = c
		if i > 0 && colors[i] != colors[0] {
			uniform = false
		}
	}

	if uniform {
		// Ring between the outer and inner rounded outlines.
		inner := [4]int{
			max(radii[0]-max(widths[3], widths[0]), 0),
			max(radii[1]-max(widths[0], widths[1]), 0),
			max(radii[2]-max(widths[1], widths[2]), 0),
			max(radii[3]-max(widths[2], widths[3]), 0),
		}
		p.ctx.SetColor(colors[0])
		p.ctx.SetFillRule(gg.FillRuleEvenOdd)
		roundedPath(p.ctx, border, radii)
		roundedPath(p.ctx, padding, inner)
		p.ctx.Fill()
		p.ctx.SetFillRule(gg.FillRuleWinding)
		return true
	}

	outer := [4]image.Point{border.Min, {border.Max.X, border.Min.Y}, border.Max, {border.Min.X, border.Max.Y}}
	in := [4]image.Point{padding.Min, {padding.Max.X, padding.Min.Y}, padding.Max, {padding.Min.X, padding.Max.Y}}
	for side := 0; side < 4; side++ {
		if widths[side] == 0 {
			continue
		}
		next := (side + 1) % 4
		p.ctx.SetColor(colors[side])
		p.ctx.NewSubPath()
		p.ctx.MoveTo(float64(outer[side].X), float64(outer[side].Y))
		p.ctx.LineTo(float64(outer[next].X), float64(outer[next].Y))
		p.ctx.LineTo(float64(in[next].X), float64(in[next].Y))
		p.ctx.LineTo(float64(in[side].X), float64(in[side].Y))
		p.ctx.ClosePath()
		p.ctx.Fill()
	}
	return true
}

func (p *Painter) paintText(l *layout.Layout, h dom.Handle, styles *style.Result) bool {
	frags := l.Fragments(h)
	if len(frags) == 0 {
		return false
	}
	c, ok := styles.Color(h, "color")
	if !ok {
		c = color.NRGBA{A: 255}
	}
	p.ctx.SetColor(c)
	for _, fr := range frags {
		if fr.FontSize <= 0 {
			continue
		}
		size := float64(fr.FontSize)
		ff, err := p.face.FontFace(size)
		if err != nil {
			p.logger.Debug("No face for text size", zap.Float64("size", size), zap.Error(err))
			return false
		}
		p.ctx.SetFontFace(ff)
		lead := (float64(fr.Height) - p.face.LineHeight(size)) / 2
		baseline := float64(fr.Y) + lead + p.face.Ascent(size)
		p.ctx.DrawString(fr.Text, float64(fr.X), baseline)
	}
	return true
}

// roundedPath adds a closed outline of r with per-corner radii, clockwise
// from top-left, as a new subpath. A zero radius is a square corner.
func roundedPath(ctx *gg.Context, r image.Rectangle, radii [4]int) {
	x0, y0 := float64(r.Min.X), float64(r.Min.Y)
	x1, y1 := float64(r.Max.X), float64(r.Max.Y)
	limit := math.Min(x1-x0, y1-y0) / 2
	rad := func(i int) float64 { return math.Max(0, math.Min(float64(radii[i]), limit)) }
	tl, tr, br, bl := rad(0), rad(1), rad(2), rad(3)

	ctx.NewSubPath()
	ctx.MoveTo(x0+tl, y0)
	ctx.LineTo(x1-tr, y0)
	if tr > 0 {
		ctx.DrawArc(x1-tr, y0+tr, tr, -math.Pi/2, 0)
	}
	ctx.LineTo(x1, y1-br)
	if br > 0 {
		ctx.DrawArc(x1-br, y1-br, br, 0, math.Pi/2)
	}
	ctx.LineTo(x0+bl, y1)
	if bl > 0 {
		ctx.DrawArc(x0+bl, y1-bl, bl, math.Pi/2, math.Pi)
	}
	ctx.LineTo(x0, y0+tl)
	if tl > 0 {
		ctx.DrawArc(x0+tl, y0+tl, tl, math.Pi, 3*math.Pi/2)
	}
	ctx.ClosePath()
}
