package schemas_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/lattice/api/schemas"
	"github.com/xkilldash9x/lattice/internal/browser/dom"
	"github.com/xkilldash9x/lattice/internal/browser/font"
	"github.com/xkilldash9x/lattice/internal/browser/layout"
	"github.com/xkilldash9x/lattice/internal/browser/style"
)

func buildDump(t *testing.T) (*dom.Document, *schemas.LayoutDump) {
	t.Helper()
	doc, err := dom.ParseString(`<html><body>
		<div id="card" class="a b" style="width: 50px; height: 20px; padding: 2px">hi</div>
		<p style="display: none">gone</p>
	</body></html>`)
	require.NoError(t, err)
	logger := zaptest.NewLogger(t)
	res := style.NewEngine(logger, style.WithoutUserAgentSheet()).Resolve(doc)
	l := layout.NewEngine(font.Default(), layout.Viewport{Width: 320, Height: 240}, logger).Layout(res)
	return doc, schemas.NewLayoutDump(doc, l)
}

func TestNewLayoutDump(t *testing.T) {
	doc, dump := buildDump(t)
	assert.Equal(t, schemas.DumpVersion, dump.Version)
	assert.Equal(t, schemas.Viewport{Width: 320, Height: 240}, dump.Viewport)
	assert.Equal(t, "html", dump.Nodes[0].Tag)
	assert.Zero(t, dump.Nodes[0].ParentID)

	nodes, err := doc.Select("#card")
	require.NoError(t, err)
	id, _ := doc.NodeID(nodes[0])
	card, ok := dump.Node(id)
	require.True(t, ok)
	assert.Equal(t, "div.a.b#card", card.Selector)
	assert.Equal(t, 50, card.Slots["width"])
	assert.Equal(t, 2, card.Slots["padding-left"])
	assert.Empty(t, card.Missing)

	var text *schemas.NodeGeometry
	for i := range dump.Nodes {
		if dump.Nodes[i].ParentID == id && dump.Nodes[i].Text != "" {
			text = &dump.Nodes[i]
		}
	}
	require.NotNil(t, text, "the text child is dumped")
	require.Len(t, text.Fragments, 1)
	assert.Equal(t, "hi", text.Fragments[0].Text)

	nodes, err = doc.Select("p")
	require.NoError(t, err)
	pid, _ := doc.NodeID(nodes[0])
	p, ok := dump.Node(pid)
	require.True(t, ok)
	assert.True(t, p.Hidden)
	assert.Equal(t, "none", p.Display)
}

func TestEncodeDecode(t *testing.T) {
	_, dump := buildDump(t)
	dump.FrameID = "frame-1"
	dump.GeneratedAt = getTestTime(t)

	var buf bytes.Buffer
	require.NoError(t, schemas.Encode(&buf, dump, true))
	assert.Contains(t, buf.String(), "\n  \"version\": 1")
	assert.Contains(t, buf.String(), `"frame_id": "frame-1"`)

	back, err := schemas.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, dump.Nodes, back.Nodes)
	assert.True(t, dump.GeneratedAt.Equal(back.GeneratedAt))

	_, err = schemas.Decode(strings.NewReader(`{"version": 99}`))
	assert.Error(t, err)
	_, err = schemas.Decode(strings.NewReader(`{`))
	assert.Error(t, err)
}
