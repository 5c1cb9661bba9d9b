// internal/browser/parser/tokens.go
package parser

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// TokenKind classifies a lexical token of style-sheet text.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenWhitespace
	TokenComment
	TokenIdent
	TokenHash
	TokenNumber
	TokenDimension
	TokenPercentage
	TokenString
	TokenAtKeyword
	TokenPunct
	TokenOther
)

var tokenKindNames = [...]string{
	TokenEOF:        "EOF",
	TokenWhitespace: "Whitespace",
	TokenComment:    "Comment",
	TokenIdent:      "Ident",
	TokenHash:       "Hash",
	TokenNumber:     "Number",
	TokenDimension:  "Dimension",
	TokenPercentage: "Percentage",
	TokenString:     "String",
	TokenAtKeyword:  "AtKeyword",
	TokenPunct:      "Punct",
	TokenOther:      "Other",
}

func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(tokenKindNames) {
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
	return tokenKindNames[k]
}

// Position locates a token in its source.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is one lexical unit. Value holds the raw source text.
type Token struct {
	Kind  TokenKind
	Value string
	Pos   Position
}

// Tokenizer turns raw style-sheet text into a token stream.
type Tokenizer interface {
	Tokenize(src string) ([]Token, error)
}

// The rule order matters: the first pattern that matches wins.
var cssLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
	{Name: "Whitespace", Pattern: `[ \t\r\n\f]+`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"|'(?:\\.|[^'\\])*'`},
	{Name: "AtKeyword", Pattern: `@-?[A-Za-z_][A-Za-z0-9_-]*`},
	{Name: "Hash", Pattern: `#[A-Za-z0-9_-]+`},
	{Name: "Percentage", Pattern: `[+-]?(?:\d+\.?\d*|\.\d+)%`},
	{Name: "Dimension", Pattern: `[+-]?(?:\d+\.?\d*|\.\d+)[A-Za-z]+`},
	{Name: "Number", Pattern: `[+-]?(?:\d+\.?\d*|\.\d+)`},
	{Name: "Ident", Pattern: `-{0,2}[A-Za-z_][A-Za-z0-9_-]*`},
	{Name: "Punct", Pattern: `[{}():;,.>+~*\[\]=!/|^$]`},
	{Name: "Other", Pattern: `.`},
})

var lexerKinds = func() map[lexer.TokenType]TokenKind {
	kinds := map[string]TokenKind{
		"Comment":    TokenComment,
		"Whitespace": TokenWhitespace,
		"String":     TokenString,
		"AtKeyword":  TokenAtKeyword,
		"Hash":       TokenHash,
		"Percentage": TokenPercentage,
		"Dimension":  TokenDimension,
		"Number":     TokenNumber,
		"Ident":      TokenIdent,
		"Punct":      TokenPunct,
		"Other":      TokenOther,
	}
	out := make(map[lexer.TokenType]TokenKind, len(kinds))
	for name, typ := range cssLexer.Symbols() {
		if k, ok := kinds[name]; ok {
			out[typ] = k
		}
	}
	return out
}()

type lexTokenizer struct{}

// NewTokenizer returns the default tokenizer.
func NewTokenizer() Tokenizer {
	return lexTokenizer{}
}

func (lexTokenizer) Tokenize(src string) ([]Token, error) {
	lex, err := cssLexer.LexString("", src)
	if err != nil {
		return nil, fmt.Errorf("could not start lexer: %w", err)
	}
	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	tokens := make([]Token, 0, len(raw))
	for _, t := range raw {
		if t.EOF() {
			break
		}
		kind, ok := lexerKinds[t.Type]
		if !ok {
			kind = TokenOther
		}
		tokens = append(tokens, Token{
			Kind:  kind,
			Value: t.Value,
			Pos:   Position{Offset: t.Pos.Offset, Line: t.Pos.Line, Column: t.Pos.Column},
		})
	}
	return tokens, nil
}
