// internal/browser/style/style.go
package style

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/lattice/internal/browser/dom"
	"github.com/xkilldash9x/lattice/internal/browser/parser"
)

// -- Constants and Configuration --

const (
	BaseFontSize      = 16.0 // Default root font size.
	DefaultLineHeight = 1.2  // Default multiplier for 'line-height: normal'.
)

// DefaultUserAgentCSS is the built-in sheet applied beneath author sheets.
// It only uses selectors the rule assembler accepts.
const DefaultUserAgentCSS = `
html, body, div, p, h1, h2, h3, h4, h5, h6, ul, ol, li, form, header, footer,
section, article, nav, main, aside, blockquote, pre, figure, table, tr {
    display: block;
}

head, style, script, title, meta, link, template, noscript {
    display: none;
}

body { margin: 8px; }

h1 { font-size: 2em; margin: 0.67em 0; }
h2 { font-size: 1.5em; margin: 0.83em 0; }
h3 { font-size: 1.17em; margin: 1em 0; }
p { margin: 1em 0; }
ul, ol { margin: 1em 0; padding-left: 40px; }

a { color: #0000ee; }

input, button, textarea, select {
    display: inline-block;
    padding: 1px 2px;
    border: 1px solid #767676;
}
`

// -- Style Engine --

// Engine runs the cascade: it matches every rule of its sheets against a tree
// and records, per node and property, the winning rule.
type Engine struct {
	userAgentSheets []*parser.StyleSheet
	authorSheets    []*parser.StyleSheet
	tokenizer       parser.Tokenizer
	logger          *zap.Logger
	userAgent       bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithoutUserAgentSheet drops the built-in sheet.
func WithoutUserAgentSheet() Option {
	return func(se *Engine) { se.userAgent = false }
}

// WithTokenizer replaces the tokenizer used for built-in and inline styles.
func WithTokenizer(tz parser.Tokenizer) Option {
	return func(se *Engine) { se.tokenizer = tz }
}

// NewEngine creates a new styling engine with the user agent sheet loaded.
func NewEngine(logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	se := &Engine{
		tokenizer: parser.NewTokenizer(),
		logger:    logger.Named("style"),
		userAgent: true,
	}
	for _, opt := range opts {
		opt(se)
	}
	if se.userAgent {
		se.userAgentSheets = []*parser.StyleSheet{
			parser.ParseStyleSheet("user-agent", DefaultUserAgentCSS, se.tokenizer),
		}
	}
	return se
}

// AddAuthorSheet appends a sheet. Sheets are evaluated in the order added.
func (se *Engine) AddAuthorSheet(sheet *parser.StyleSheet) {
	if sheet == nil {
		return
	}
	for _, err := range sheet.Errors {
		se.logger.Warn("Dropped part of stylesheet", zap.String("source", sheet.Source), zap.Error(err))
	}
	se.authorSheets = append(se.authorSheets, sheet)
}

// AddAuthorCSS parses and appends a sheet.
func (se *Engine) AddAuthorCSS(source, css string) *parser.StyleSheet {
	sheet := parser.ParseStyleSheet(source, css, se.tokenizer)
	se.AddAuthorSheet(sheet)
	return sheet
}

// AuthorSheets returns the sheets added so far.
func (se *Engine) AuthorSheets() []*parser.StyleSheet {
	return se.authorSheets
}

// ResetAuthorSheets forgets every author sheet.
func (se *Engine) ResetAuthorSheets() {
	se.authorSheets = nil
}

// Resolve computes a fresh ComputedStyle for every element the rules touch.
// Nothing from a previous call is reused.
func (se *Engine) Resolve(tree dom.Tree) *Result {
	res := newResult(tree)

	for _, sheet := range se.userAgentSheets {
		se.applySheet(res, sheet, OriginUserAgent)
	}
	for _, sheet := range se.authorSheets {
		se.applySheet(res, sheet, OriginAuthor)
	}
	se.applyInlineStyles(res)

	se.logger.Debug("Cascade resolved",
		zap.Int("styled_nodes", len(res.styles)),
		zap.Int("errors", len(res.Errors)))
	return res
}

func (se *Engine) applySheet(res *Result, sheet *parser.StyleSheet, origin Origin) {
	if sheet == nil {
		return
	}
	res.Errors = append(res.Errors, sheet.Errors...)
	for _, rule := range sheet.Rules {
		for _, sel := range rule.Selectors {
			spec := sel.Specificity()
			for _, node := range se.selectNodes(res, sel) {
				cs := res.styleFor(node)
				for _, prop := range rule.Properties() {
					cs.apply(prop, Entry{Origin: origin, Specificity: spec, Rule: rule})
				}
			}
		}
	}
}

// selectNodes asks the tree first and falls back to walking it with Matches
// when the tree cannot handle the selector text.
func (se *Engine) selectNodes(res *Result, sel parser.Selector) []dom.Handle {
	nodes, err := res.tree.Select(sel.String())
	if err == nil {
		return nodes
	}
	se.logger.Debug("Selector query failed; walking tree", zap.String("selector", sel.String()), zap.Error(err))
	nodes = nodes[:0]
	for _, h := range res.order {
		if res.tree.IsText(h) {
			continue
		}
		if sel.Matches(dom.CompleteSelector(res.tree, h)) {
			nodes = append(nodes, h)
		}
	}
	return nodes
}

func (se *Engine) applyInlineStyles(res *Result) {
	for _, h := range res.order {
		if res.tree.IsText(h) {
			continue
		}
		attr, ok := res.tree.Attr(h, "style")
		if !ok {
			continue
		}
		decls, errs := parser.ParseDeclarations(attr, se.tokenizer)
		res.Errors = append(res.Errors, errs...)
		if len(decls) == 0 {
			continue
		}
		self := dom.CompleteSelector(res.tree, h)
		rule := parser.NewStyle([]parser.Selector{self}, decls)
		cs := res.styleFor(h)
		for _, prop := range rule.Properties() {
			cs.apply(prop, Entry{Origin: OriginInline, Specificity: self.Specificity(), Rule: rule})
		}
	}
}
