// Package js wraps the tdewolff JavaScript lexer with byte-offset
// tracking and regular-expression disambiguation so the transform
// passes can work over (token, span) pairs of the original source.
package js

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	tjs "github.com/tdewolff/parse/v2/js"
)

// Token is a single lexical token with its byte span in the source.
type Token struct {
	Type  tjs.TokenType
	Text  string
	Start int
	End   int
}

// Is reports whether the token's text equals s. Keywords and
// punctuators are matched by text so the reader does not depend on
// the lexer's token-type taxonomy for them.
func (t Token) Is(s string) bool { return t.Text == s }

// IsSpace reports whether the token is whitespace or a comment.
func (t Token) IsSpace() bool {
	switch t.Type {
	case tjs.WhitespaceToken, tjs.LineTerminatorToken, tjs.CommentToken, tjs.CommentLineTerminatorToken:
		return true
	}
	return false
}

// IdentShaped reports whether s has the shape of an identifier
// (including keywords, which share that shape).
func IdentShaped(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		case r > 127:
		default:
			return false
		}
	}
	return reservedWords[s] == false
}

var reservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true,
	"const": true, "continue": true, "debugger": true, "default": true,
	"delete": true, "do": true, "else": true, "enum": true,
	"export": true, "extends": true, "false": true, "finally": true,
	"for": true, "function": true, "if": true, "import": true,
	"in": true, "instanceof": true, "new": true, "null": true,
	"return": true, "super": true, "switch": true, "this": true,
	"throw": true, "true": true, "try": true, "typeof": true,
	"var": true, "void": true, "while": true, "with": true,
}

// keywords after which a '/' begins a regular expression, not division.
var exprKeywords = map[string]bool{
	"return": true, "typeof": true, "instanceof": true, "in": true,
	"of": true, "new": true, "delete": true, "void": true, "case": true,
	"do": true, "else": true, "throw": true, "yield": true, "await": true,
}

// Reader walks a JavaScript source string token by token.
type Reader struct {
	in   *parse.Input
	lex  *tjs.Lexer
	prev Token // last significant token
	err  error
}

// NewReader returns a reader over src.
func NewReader(src string) *Reader {
	in := parse.NewInputString(src)
	return &Reader{in: in, lex: tjs.NewLexer(in)}
}

// Next returns the next token. ok is false at end of input or on a
// lexer error; check Err afterwards.
func (r *Reader) Next() (Token, bool) {
	if r.err != nil {
		return Token{}, false
	}
	tt, data := r.lex.Next()
	if tt == tjs.ErrorToken {
		if err := r.lex.Err(); err != nil && !errors.Is(err, io.EOF) {
			r.err = fmt.Errorf("lexing source: %w", err)
		}
		return Token{}, false
	}
	end := r.in.Offset()
	tok := Token{Type: tt, Text: string(data), Start: end - len(data), End: end}

	// The lexer cannot tell division from a regular expression start
	// without grammar context; re-lex when '/' sits at an expression
	// position.
	if (tok.Text == "/" || tok.Text == "/=") && r.regexAllowed() {
		tt, data = r.lex.RegExp()
		if tt == tjs.ErrorToken {
			r.err = fmt.Errorf("lexing regular expression at offset %d: %w", tok.Start, r.lex.Err())
			return Token{}, false
		}
		end = r.in.Offset()
		tok = Token{Type: tt, Text: string(data), Start: end - len(data), End: end}
	}
	if !tok.IsSpace() {
		r.prev = tok
	}
	return tok, true
}

// NextSignificant returns the next non-space, non-comment token.
func (r *Reader) NextSignificant() (Token, bool) {
	for {
		tok, ok := r.Next()
		if !ok {
			return tok, false
		}
		if !tok.IsSpace() {
			return tok, true
		}
	}
}

// Err returns the first lexer error, or nil at a clean end of input.
func (r *Reader) Err() error { return r.err }

func (r *Reader) regexAllowed() bool {
	p := r.prev
	if p.Text == "" {
		return true
	}
	switch p.Type {
	case tjs.StringToken, tjs.RegExpToken, tjs.TemplateToken, tjs.TemplateEndToken:
		return false
	}
	if p.Text == ")" || p.Text == "]" {
		return false
	}
	if c := p.Text[0]; c >= '0' && c <= '9' {
		return false
	}
	if reservedWords[p.Text] {
		return exprKeywords[p.Text]
	}
	if IdentShaped(p.Text) {
		return false
	}
	return true
}

// Unquote strips the surrounding quotes from a string literal token
// and resolves the escape sequences relevant to module specifiers.
func Unquote(lit string) string {
	if len(lit) >= 2 && (lit[0] == '"' || lit[0] == '\'') {
		lit = lit[1 : len(lit)-1]
	}
	if !strings.ContainsRune(lit, '\\') {
		return lit
	}
	var b strings.Builder
	for i := 0; i < len(lit); i++ {
		if lit[i] == '\\' && i+1 < len(lit) {
			i++
		}
		b.WriteByte(lit[i])
	}
	return b.String()
}
