package paint

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/lattice/internal/browser/dom"
	"github.com/xkilldash9x/lattice/internal/browser/font"
	"github.com/xkilldash9x/lattice/internal/browser/layout"
	"github.com/xkilldash9x/lattice/internal/browser/style"
)

func setupPaintTest(t *testing.T, body, css string) (*dom.Document, *layout.Layout, *Painter) {
	t.Helper()
	doc, err := dom.ParseString("<html><body>" + body + "</body></html>")
	require.NoError(t, err)

	logger := zaptest.NewLogger(t)
	styles := style.NewEngine(logger, style.WithoutUserAgentSheet())
	styles.AddAuthorCSS("test.css", css)
	face := font.Default()
	l := layout.NewEngine(face, layout.Viewport{Width: 100, Height: 100}, logger).Layout(styles.Resolve(doc))

	p := NewPainter(100, 100, face, logger)
	p.Paint(l, doc)
	return doc, l, p
}

func nodeID(t *testing.T, doc *dom.Document, id string) uint32 {
	t.Helper()
	nodes, err := doc.Select("#" + id)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	n, ok := doc.NodeID(nodes[0])
	require.True(t, ok)
	return n
}

func TestPaintMirrorsFillsIntoIDs(t *testing.T) {
	doc, _, p := setupPaintTest(t,
		`<div id="box" style="margin: 10px; width: 40px; height: 40px; background-color: red"></div>`, "")

	id, ok := p.IDs().Query(20, 20)
	require.True(t, ok)
	assert.Equal(t, nodeID(t, doc, "box"), id)

	_, ok = p.IDs().Query(5, 5)
	assert.False(t, ok, "nothing filled there")
	_, ok = p.IDs().Query(50, 50)
	assert.False(t, ok, "max edge is exclusive")

	r, g, b, _ := p.Image().At(20, 20).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0, 0}, [3]uint32{r, g, b})
	r, g, b, _ = p.Image().At(5, 5).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b}, "background")
}

func TestPaintBorderOnlyBox(t *testing.T) {
	doc, _, p := setupPaintTest(t,
		`<div id="b" style="width: 20px; height: 20px; border: 4px solid #0000ff"></div>`, "")

	id, ok := p.IDs().Query(1, 1)
	require.True(t, ok)
	assert.Equal(t, nodeID(t, doc, "b"), id)
	id, ok = p.IDs().Query(14, 14)
	require.True(t, ok, "the whole border box is hit-testable")
	assert.Equal(t, nodeID(t, doc, "b"), id)

	assert.Equal(t, color.RGBA{B: 255, A: 255}, p.Image().At(1, 1))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, p.Image().At(14, 14), "inside is not filled")
}

func TestPaintSkipsHiddenAndInvisible(t *testing.T) {
	_, _, p := setupPaintTest(t,
		`<div style="display: none; width: 10px; height: 10px; background: red"></div><div style="visibility: hidden; width: 10px; height: 10px; background: red"></div>`, "")
	_, ok := p.IDs().Query(2, 2)
	assert.False(t, ok)
}

func TestPaintClipsToAncestors(t *testing.T) {
	doc, _, p := setupPaintTest(t,
		`<div style="width: 20px; height: 20px; overflow: hidden"><div id="big" style="width: 80px; height: 80px; background: green"></div></div>`, "")
	id, ok := p.IDs().Query(10, 10)
	require.True(t, ok)
	assert.Equal(t, nodeID(t, doc, "big"), id)
	_, ok = p.IDs().Query(30, 30)
	assert.False(t, ok, "outside the overflow clip")
}

func TestPaintText(t *testing.T) {
	_, _, p := setupPaintTest(t, `<p style="font-size: 20px; color: black">HHH</p>`, "")

	dark := false
	img := p.Image()
	for y := 0; y < 30 && !dark; y++ {
		for x := 0; x < 60; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r < 0x8000 {
				dark = true
				break
			}
		}
	}
	assert.True(t, dark, "glyphs were drawn")
	_, ok := p.IDs().Query(5, 5)
	assert.False(t, ok, "text is not hit-testable")
}

func TestRepaintClearsIDs(t *testing.T) {
	doc, l, p := setupPaintTest(t, `<div style="width: 10px; height: 10px; background: red"></div>`, "")
	p.Paint(l, doc)
	_, ok := p.IDs().Query(5, 5)
	assert.True(t, ok)

	p.Resize(50, 50)
	_, ok = p.IDs().Query(5, 5)
	assert.False(t, ok)
	assert.Equal(t, 50, p.Image().Bounds().Dx())
}

func TestExportPDF(t *testing.T) {
	_, l, _ := setupPaintTest(t,
		`<div style="width: 40px; height: 20px; background: red; border: 1px solid blue; border-radius: 3px">hi</div>`, "")
	var buf bytes.Buffer
	require.NoError(t, ExportPDF(&buf, l, nil))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}
