// internal/browser/parser/css.go
package parser

import (
	"fmt"
	"strings"
)

// Property represents a CSS property (e.g., "display").
type Property string

// Value represents a raw CSS value (e.g., "none").
type Value string

// Declaration is a key-value pair (e.g., display: none).
type Declaration struct {
	Property  Property
	Value     Value
	Important bool
}

// Style is one rule: its selectors plus the declared properties after
// shorthand expansion. A Style is shared by every computed style it wins a
// property for and must not be modified once built.
type Style struct {
	Selectors    []Selector
	Declarations []Declaration

	properties map[Property]Value
	order      []Property
}

// NewStyle assembles a rule, expanding shorthands. Later declarations
// override earlier ones for the same longhand.
func NewStyle(selectors []Selector, declarations []Declaration) *Style {
	st := &Style{
		Selectors:    selectors,
		Declarations: declarations,
		properties:   make(map[Property]Value),
	}
	for _, d := range declarations {
		for _, ex := range ExpandShorthand(d) {
			if _, seen := st.properties[ex.Property]; !seen {
				st.order = append(st.order, ex.Property)
			}
			st.properties[ex.Property] = ex.Value
		}
	}
	return st
}

// Get returns the value the rule declares for prop.
func (s *Style) Get(prop Property) (Value, bool) {
	v, ok := s.properties[prop]
	return v, ok
}

// Properties lists declared longhands in first-declared order.
func (s *Style) Properties() []Property {
	out := make([]Property, len(s.order))
	copy(out, s.order)
	return out
}

// StyleSheet holds the rules of one source in source order, plus the
// syntax errors that caused parts of it to be dropped.
type StyleSheet struct {
	Source string
	Rules  []*Style
	Errors []error
}

// SyntaxError reports a malformed token sequence.
type SyntaxError struct {
	Pos Position
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("css syntax error at %s: %s", e.Pos, e.Msg)
}

// Parser assembles rules from a token stream.
type Parser struct {
	tokens []Token
	pos    int
	errs   []error
}

// NewParser creates a parser over already-lexed tokens. Comments are dropped.
func NewParser(tokens []Token) *Parser {
	filtered := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Kind != TokenComment {
			filtered = append(filtered, t)
		}
	}
	return &Parser{tokens: filtered}
}

// ParseStyleSheet tokenizes and parses src. A tokenizer failure drops the
// whole sheet; the error is kept on the returned sheet.
func ParseStyleSheet(source, src string, tz Tokenizer) *StyleSheet {
	if tz == nil {
		tz = NewTokenizer()
	}
	tokens, err := tz.Tokenize(src)
	if err != nil {
		return &StyleSheet{Source: source, Errors: []error{err}}
	}
	sheet := NewParser(tokens).Parse()
	sheet.Source = source
	return sheet
}

// ParseDeclarations parses the body of a declaration block, as found in a
// style attribute.
func ParseDeclarations(src string, tz Tokenizer) ([]Declaration, []error) {
	if tz == nil {
		tz = NewTokenizer()
	}
	tokens, err := tz.Tokenize(src)
	if err != nil {
		return nil, []error{err}
	}
	p := NewParser(tokens)
	decls := p.parseDeclarations(p.tokens)
	return decls, p.errs
}

// Parse consumes every token and returns the assembled sheet.
func (p *Parser) Parse() *StyleSheet {
	sheet := &StyleSheet{}
	for {
		p.skipWhitespace()
		if p.eof() {
			break
		}
		tok := p.peek()
		switch {
		case tok.Kind == TokenAtKeyword:
			p.skipAtRule()
		case isPunct(tok, "}"):
			p.fail(tok.Pos, "unexpected '}'")
			p.pos++
		default:
			if rule := p.parseRule(); rule != nil {
				sheet.Rules = append(sheet.Rules, rule)
			}
		}
	}
	sheet.Errors = p.errs
	return sheet
}

func (p *Parser) parseRule() *Style {
	start := p.peek().Pos
	var prelude []Token
	for !p.eof() && !isPunct(p.peek(), "{") {
		prelude = append(prelude, p.next())
	}
	if p.eof() {
		p.fail(start, "rule without a declaration block")
		return nil
	}
	p.pos++ // '{'
	block := p.consumeBlock()

	selectors := p.parseSelectorList(prelude)
	if len(selectors) == 0 {
		return nil
	}
	decls := p.parseDeclarations(block)
	if len(decls) == 0 {
		return nil
	}
	return NewStyle(selectors, decls)
}

// consumeBlock returns the tokens up to the '}' matching an already consumed
// '{'. An unterminated block ends at EOF.
func (p *Parser) consumeBlock() []Token {
	depth := 1
	var body []Token
	for !p.eof() {
		tok := p.next()
		switch {
		case isPunct(tok, "{"):
			depth++
		case isPunct(tok, "}"):
			depth--
			if depth == 0 {
				return body
			}
		}
		body = append(body, tok)
	}
	return body
}

func (p *Parser) skipAtRule() {
	p.pos++ // at-keyword
	for !p.eof() {
		tok := p.next()
		if isPunct(tok, ";") {
			return
		}
		if isPunct(tok, "{") {
			p.consumeBlock()
			return
		}
	}
}

func (p *Parser) parseSelectorList(prelude []Token) []Selector {
	var selectors []Selector
	for _, part := range splitTokens(prelude, ",") {
		part = trimWhitespace(part)
		if len(part) == 0 {
			p.fail(p.posOf(prelude), "empty selector")
			continue
		}
		sel, err := parseCompound(part)
		if err != nil {
			p.errs = append(p.errs, err)
			continue
		}
		selectors = append(selectors, sel)
	}
	return selectors
}

// parseCompound parses tag, '*', '#id' and '.class' components. Combinators,
// attributes and pseudo-classes are rejected.
func parseCompound(tokens []Token) (Selector, error) {
	var sel Selector
	i := 0
	switch {
	case tokens[0].Kind == TokenIdent:
		sel.TagName = strings.ToLower(tokens[0].Value)
		i++
	case isPunct(tokens[0], "*"):
		sel.TagName = "*"
		i++
	}
	for i < len(tokens) {
		tok := tokens[i]
		switch {
		case tok.Kind == TokenHash:
			if sel.ID != "" {
				return Selector{}, &SyntaxError{Pos: tok.Pos, Msg: "selector names two ids"}
			}
			sel.ID = tok.Value[1:]
			i++
		case isPunct(tok, ".") && i+1 < len(tokens) && tokens[i+1].Kind == TokenIdent:
			sel.Classes = append(sel.Classes, tokens[i+1].Value)
			i += 2
		case tok.Kind == TokenWhitespace, isPunct(tok, ">"), isPunct(tok, "+"), isPunct(tok, "~"):
			return Selector{}, &SyntaxError{Pos: tok.Pos, Msg: "combinators are not supported"}
		default:
			return Selector{}, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("unsupported selector component %q", tok.Value)}
		}
	}
	if !sel.IsValid() {
		return Selector{}, &SyntaxError{Pos: tokens[0].Pos, Msg: "empty selector"}
	}
	return sel, nil
}

// parseDeclarations splits a block on top-level ';'. A malformed declaration
// is dropped on its own.
func (p *Parser) parseDeclarations(block []Token) []Declaration {
	var decls []Declaration
	for _, part := range splitTokens(block, ";") {
		part = trimWhitespace(part)
		if len(part) == 0 {
			continue
		}
		if part[0].Kind != TokenIdent {
			p.fail(part[0].Pos, fmt.Sprintf("expected property name, got %q", part[0].Value))
			continue
		}
		i := 1
		for i < len(part) && part[i].Kind == TokenWhitespace {
			i++
		}
		if i >= len(part) || !isPunct(part[i], ":") {
			p.fail(part[0].Pos, fmt.Sprintf("expected ':' after %q", part[0].Value))
			continue
		}
		value, important := assembleValue(part[i+1:])
		if value == "" {
			p.fail(part[0].Pos, fmt.Sprintf("empty value for %q", part[0].Value))
			continue
		}
		decls = append(decls, Declaration{
			Property:  Property(strings.ToLower(part[0].Value)),
			Value:     Value(value),
			Important: important,
		})
	}
	return decls
}

// assembleValue joins value tokens, collapsing whitespace and stripping a
// trailing !important.
func assembleValue(tokens []Token) (string, bool) {
	tokens = trimWhitespace(tokens)
	important := false
	if n := len(tokens); n >= 2 && tokens[n-1].Kind == TokenIdent && strings.EqualFold(tokens[n-1].Value, "important") {
		j := n - 2
		for j >= 0 && tokens[j].Kind == TokenWhitespace {
			j--
		}
		if j >= 0 && isPunct(tokens[j], "!") {
			important = true
			tokens = trimWhitespace(tokens[:j])
		}
	}
	var b strings.Builder
	for _, t := range tokens {
		if t.Kind == TokenWhitespace {
			b.WriteByte(' ')
			continue
		}
		b.WriteString(t.Value)
	}
	return strings.TrimSpace(b.String()), important
}

// splitTokens splits on a punctuation token outside of parentheses and brackets.
func splitTokens(tokens []Token, sep string) [][]Token {
	var parts [][]Token
	depth, start := 0, 0
	for i, t := range tokens {
		switch {
		case isPunct(t, "("), isPunct(t, "["):
			depth++
		case isPunct(t, ")"), isPunct(t, "]"):
			if depth > 0 {
				depth--
			}
		case depth == 0 && isPunct(t, sep):
			parts = append(parts, tokens[start:i])
			start = i + 1
		}
	}
	return append(parts, tokens[start:])
}

func trimWhitespace(tokens []Token) []Token {
	for len(tokens) > 0 && tokens[0].Kind == TokenWhitespace {
		tokens = tokens[1:]
	}
	for len(tokens) > 0 && tokens[len(tokens)-1].Kind == TokenWhitespace {
		tokens = tokens[:len(tokens)-1]
	}
	return tokens
}

func isPunct(t Token, v string) bool {
	return t.Kind == TokenPunct && t.Value == v
}

// --- Token cursor helpers ---

func (p *Parser) eof() bool {
	return p.pos >= len(p.tokens)
}

func (p *Parser) peek() Token {
	if p.eof() {
		return Token{Kind: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) next() Token {
	t := p.peek()
	if !p.eof() {
		p.pos++
	}
	return t
}

func (p *Parser) skipWhitespace() {
	for !p.eof() && p.tokens[p.pos].Kind == TokenWhitespace {
		p.pos++
	}
}

func (p *Parser) posOf(tokens []Token) Position {
	if len(tokens) > 0 {
		return tokens[0].Pos
	}
	return p.peek().Pos
}

func (p *Parser) fail(pos Position, msg string) {
	p.errs = append(p.errs, &SyntaxError{Pos: pos, Msg: msg})
}
