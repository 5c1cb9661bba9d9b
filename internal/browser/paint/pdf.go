// internal/browser/paint/pdf.go
package paint

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/xkilldash9x/lattice/internal/browser/font"
	"github.com/xkilldash9x/lattice/internal/browser/layout"
)

func mm(px int) float64 { return float64(px) * pxToMm }

const (
	pxToMm = 25.4 / 96
	pxToPt = 72.0 / 96
)

// ExportPDF writes the layout as a single-page vector PDF the size of the
// viewport. Backgrounds, borders and text are drawn; hit-testing has
// no meaning here so no ids are written.
func ExportPDF(w io.Writer, l *layout.Layout, face *font.Face) error {
	if face == nil {
		face = font.Default()
	}
	family := canvas.NewFontFamily("lattice")
	if err := family.LoadFont(face.Data(), 0, canvas.FontRegular); err != nil {
		return fmt.Errorf("failed to load font for PDF: %w", err)
	}

	width, height := float64(l.Viewport.Width)*pxToMm, float64(l.Viewport.Height)*pxToMm
	writer := pdf.New(w, width, height, nil)
	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV)

	styles := l.Styles()
	tree := styles.Tree()
	for _, h := range l.Order() {
		if l.Hidden(h) || styles.Keyword(h, "visibility") == "hidden" {
			continue
		}
		rec, ok := l.Record(h)
		if !ok {
			continue
		}
		if tree.IsText(h) {
			col, ok := styles.Color(h, "color")
			if !ok {
				col = color.NRGBA{A: 255}
			}
			for _, fr := range l.Fragments(h) {
				if fr.FontSize <= 0 {
					continue
				}
				ff := family.Face(float64(fr.FontSize)*pxToPt, col, canvas.FontRegular, canvas.FontNormal)
				baseline := float64(fr.Y)*pxToMm + ff.Metrics().Ascent
				ctx.DrawText(float64(fr.X)*pxToMm, baseline, canvas.NewTextLine(ff, fr.Text, canvas.Left))
			}
			continue
		}

		border, ok := rec.BorderBox()
		if !ok || border.Empty() {
			continue
		}
		tl, _, _, _ := rec.Radii()
		ctx.SetStrokeColor(canvas.Transparent)
		ctx.SetStrokeWidth(0)

		if bg, ok := styles.Color(h, "background-color"); ok && bg.A > 0 {
			ctx.SetFillColor(bg)
			path := canvas.Rectangle(mm(border.Dx()), mm(border.Dy()))
			if tl > 0 {
				path = canvas.RoundedRectangle(mm(border.Dx()), mm(border.Dy()), mm(tl))
			}
			ctx.DrawPath(mm(border.Min.X), mm(border.Min.Y), path)
		}

		padding, _ := rec.PaddingBox()
		strips := [4]image.Rectangle{
			image.Rect(border.Min.X, border.Min.Y, border.Max.X, padding.Min.Y),
			image.Rect(padding.Max.X, border.Min.Y, border.Max.X, border.Max.Y),
			image.Rect(border.Min.X, padding.Max.Y, border.Max.X, border.Max.Y),
			image.Rect(border.Min.X, border.Min.Y, padding.Min.X, border.Max.Y),
		}
		for side, strip := range strips {
			if strip.Empty() {
				continue
			}
			bc, ok := styles.Color(h, sideColors[side])
			if !ok {
				bc = color.NRGBA{A: 255}
			}
			ctx.SetFillColor(bc)
			ctx.DrawPath(mm(strip.Min.X), mm(strip.Min.Y), canvas.Rectangle(mm(strip.Dx()), mm(strip.Dy())))
		}
	}

	c.RenderTo(writer)
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}
