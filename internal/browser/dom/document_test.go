package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/lattice/internal/browser/parser"
)

const sample = `<!DOCTYPE html>
<html>
<head>
  <style>p { color: red }</style>
  <style media="print">p { color: black }</style>
  <link rel="stylesheet" href=" a.css ">
  <link rel="icon" href="favicon.ico">
  <link rel="Alternate StyleSheet" href="b.css">
</head>
<body class="page">
  <div id="main" class="box wide"><!-- note -->Hello <span>world</span></div>
</body>
</html>`

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := ParseString(s)
	require.NoError(t, err)
	return doc
}

func findByTag(t *testing.T, doc *Document, tag string) Handle {
	t.Helper()
	nodes, err := doc.Select(tag)
	require.NoError(t, err)
	require.NotEmpty(t, nodes, "no %s element", tag)
	return nodes[0]
}

func TestDocumentTraversal(t *testing.T) {
	doc := mustParse(t, sample)
	root := doc.Root()
	assert.Equal(t, "html", doc.TagName(root))

	div := findByTag(t, doc, "div")
	children := doc.Children(div)
	require.Len(t, children, 2, "comment must be skipped")
	assert.True(t, doc.IsText(children[0]))
	assert.Equal(t, "Hello ", doc.Text(children[0]))
	assert.Equal(t, "span", doc.TagName(children[1]))
	assert.Equal(t, "Hello world", doc.Text(div))

	id, ok := doc.Attr(div, "ID")
	assert.True(t, ok)
	assert.Equal(t, "main", id)
	_, ok = doc.Attr(div, "title")
	assert.False(t, ok)
	assert.Nil(t, doc.Children(children[0]))
}

func TestSelectIncludesRoot(t *testing.T) {
	doc := mustParse(t, sample)

	nodes, err := doc.Select("html")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, doc.Root(), nodes[0])

	nodes, err = doc.Select("div.box#main")
	require.NoError(t, err)
	assert.Len(t, nodes, 1)

	_, err = doc.Select("div[")
	assert.Error(t, err)
}

func TestNodeIDs(t *testing.T) {
	doc := mustParse(t, sample)

	id, ok := doc.NodeID(doc.Root())
	require.True(t, ok)
	assert.Equal(t, uint32(1), id)

	seen := map[uint32]bool{}
	doc.Walk(func(h Handle, _ int) bool {
		id, ok := doc.NodeID(h)
		require.True(t, ok)
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
		back, ok := doc.NodeByID(id)
		assert.True(t, ok)
		assert.Equal(t, h, back)
		return true
	})
	assert.Equal(t, doc.Len(), len(seen))

	_, ok = doc.NodeByID(0)
	assert.False(t, ok)
	_, ok = doc.NodeByID(uint32(doc.Len() + 1))
	assert.False(t, ok)
}

func TestCompleteSelector(t *testing.T) {
	doc := mustParse(t, sample)
	div := findByTag(t, doc, "div")
	assert.Equal(t, parser.Selector{TagName: "div", ID: "main", Classes: []string{"box", "wide"}}, CompleteSelector(doc, div))
}

func TestStyleSources(t *testing.T) {
	doc := mustParse(t, sample)
	sources := doc.StyleSources()
	require.Len(t, sources, 3)

	assert.Equal(t, SourceInline, sources[0].Kind)
	assert.Equal(t, "p { color: red }", sources[0].Text)
	assert.Equal(t, SourceLinked, sources[1].Kind)
	assert.Equal(t, "a.css", sources[1].Href)
	assert.Equal(t, "b.css", sources[2].Href)
}

func TestNewDocumentWithoutRoot(t *testing.T) {
	_, err := NewDocument(nil)
	assert.Error(t, err)
}
