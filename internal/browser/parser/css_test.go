// internal/browser/parser/css_test.go
package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper functions to build expected structures concisely
func d(prop, val string, important bool) Declaration {
	return Declaration{Property: Property(prop), Value: Value(val), Important: important}
}

func s(tag, id string, classes ...string) Selector {
	return Selector{TagName: tag, ID: id, Classes: classes}
}

func parse(t *testing.T, css string) *StyleSheet {
	t.Helper()
	sheet := ParseStyleSheet("test.css", css, nil)
	require.NotNil(t, sheet)
	return sheet
}

func TestTokenizerKinds(t *testing.T) {
	tokens, err := NewTokenizer().Tokenize(`div#a.b{width:50%;margin:-1.5em;content:"x"}@media`)
	require.NoError(t, err)

	var kinds []TokenKind
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []TokenKind{
		TokenIdent, TokenHash, TokenPunct, TokenIdent, TokenPunct,
		TokenIdent, TokenPunct, TokenPercentage, TokenPunct,
		TokenIdent, TokenPunct, TokenDimension, TokenPunct,
		TokenIdent, TokenPunct, TokenString, TokenPunct,
		TokenAtKeyword,
	}, kinds)
	assert.Equal(t, "-1.5em", tokens[11].Value)
	assert.Equal(t, 1, tokens[0].Pos.Line)
}

func TestParseSimpleSelectors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Selector
	}{
		{"Tag", "div", s("div", "")},
		{"Upper Tag", "DIV", s("div", "")},
		{"ID", "#main", s("", "main")},
		{"Class", ".button", s("", "", "button")},
		{"Multiple Classes", ".btn.primary", s("", "", "btn", "primary")},
		{"Combined", "input#username.required", s("input", "username", "required")},
		{"Universal", "*", s("*", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet := parse(t, tt.input+" { color: red }")
			require.Empty(t, sheet.Errors)
			require.Len(t, sheet.Rules, 1)
			require.Len(t, sheet.Rules[0].Selectors, 1)
			assert.Equal(t, tt.expected, sheet.Rules[0].Selectors[0])
		})
	}
}

func TestParseSelectorList(t *testing.T) {
	sheet := parse(t, "h1, .title , #x { color: blue; }")
	require.Len(t, sheet.Rules, 1)
	assert.Equal(t, []Selector{s("h1", ""), s("", "", "title"), s("", "x")}, sheet.Rules[0].Selectors)
}

func TestUnsupportedSelectorsAreDropped(t *testing.T) {
	t.Run("one bad selector in a list", func(t *testing.T) {
		sheet := parse(t, "div p, .ok { color: red }")
		require.Len(t, sheet.Rules, 1)
		assert.Equal(t, []Selector{s("", "", "ok")}, sheet.Rules[0].Selectors)
		require.Len(t, sheet.Errors, 1)
		var synErr *SyntaxError
		assert.ErrorAs(t, sheet.Errors[0], &synErr)
	})

	t.Run("every selector bad drops the rule", func(t *testing.T) {
		sheet := parse(t, "a:hover { color: red } p { color: blue }")
		require.Len(t, sheet.Rules, 1)
		assert.Equal(t, s("p", ""), sheet.Rules[0].Selectors[0])
		assert.NotEmpty(t, sheet.Errors)
	})
}

func TestParseDeclarations(t *testing.T) {
	sheet := parse(t, `p {
		display: none;
		font-family: "Go Sans", sans-serif;
		color: rgb(1, 2, 3) !important;
		width : 10px
	}`)
	require.Len(t, sheet.Rules, 1)
	assert.Equal(t, []Declaration{
		d("display", "none", false),
		d("font-family", `"Go Sans", sans-serif`, false),
		d("color", "rgb(1, 2, 3)", true),
		d("width", "10px", false),
	}, sheet.Rules[0].Declarations)
}

func TestMalformedDeclarationIsDroppedAlone(t *testing.T) {
	sheet := parse(t, "p { : red; width 10px; height: 5px }")
	require.Len(t, sheet.Rules, 1)
	assert.Equal(t, []Declaration{d("height", "5px", false)}, sheet.Rules[0].Declarations)
	assert.Len(t, sheet.Errors, 2)
}

func TestParseSkipsAtRulesAndComments(t *testing.T) {
	sheet := parse(t, `
		@import "x.css";
		/* a comment */
		@media screen { p { color: red } }
		div { /* inner */ width: 1px }
	`)
	require.Len(t, sheet.Rules, 1)
	assert.Equal(t, s("div", ""), sheet.Rules[0].Selectors[0])
	assert.Empty(t, sheet.Errors)
}

func TestParseRecoversAfterStrayBrace(t *testing.T) {
	sheet := parse(t, "} p { width: 1px }")
	require.Len(t, sheet.Rules, 1)
	assert.Len(t, sheet.Errors, 1)
}

func TestUnterminatedBlock(t *testing.T) {
	sheet := parse(t, "p { width: 1px")
	require.Len(t, sheet.Rules, 1)
	v, ok := sheet.Rules[0].Get("width")
	assert.True(t, ok)
	assert.Equal(t, Value("1px"), v)

	sheet = parse(t, "p")
	assert.Empty(t, sheet.Rules)
	assert.Len(t, sheet.Errors, 1)
}

func TestStyleShorthandExpansion(t *testing.T) {
	sheet := parse(t, "p { margin: 1px 2px; margin-left: 9px; padding: 3px }")
	require.Len(t, sheet.Rules, 1)
	rule := sheet.Rules[0]

	expected := map[Property]Value{
		"margin-top": "1px", "margin-right": "2px", "margin-bottom": "1px", "margin-left": "9px",
		"padding-top": "3px", "padding-right": "3px", "padding-bottom": "3px", "padding-left": "3px",
	}
	for prop, want := range expected {
		got, ok := rule.Get(prop)
		assert.True(t, ok, prop)
		assert.Equal(t, want, got, prop)
	}
	assert.Equal(t, []Property{
		"margin-top", "margin-right", "margin-bottom", "margin-left",
		"padding-top", "padding-right", "padding-bottom", "padding-left",
	}, rule.Properties())
}

func TestParseDeclarationsForAttributes(t *testing.T) {
	decls, errs := ParseDeclarations("width: 10px; color: red;", nil)
	assert.Empty(t, errs)
	assert.Equal(t, []Declaration{d("width", "10px", false), d("color", "red", false)}, decls)
}
