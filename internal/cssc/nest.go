package cssc

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// rule is one node of the nested stylesheet tree: a selector or
// at-rule prelude with its declarations and nested child rules.
type rule struct {
	prelude  string // "" for the synthetic root
	atRule   bool
	decls    []string
	children []*rule
}

// parseRules tokenizes src with the CSS lexer and builds the nesting
// tree. Selector-vs-declaration is decided by the terminator: a
// buffer closed by '{' was a prelude, one closed by ';' or '}' a
// declaration.
func parseRules(src string) (*rule, error) {
	root := &rule{}
	stack := []*rule{root}
	lexer := css.NewLexer(parse.NewInputString(src))
	var buf strings.Builder

	appendText := func(text string) {
		if buf.Len() == 0 && text == " " {
			return
		}
		if text == " " && strings.HasSuffix(buf.String(), " ") {
			return
		}
		buf.WriteString(text)
	}
	flushDecl := func() {
		if d := cleanDecl(buf.String()); d != "" {
			top := stack[len(stack)-1]
			top.decls = append(top.decls, d)
		}
		buf.Reset()
	}

	for {
		tt, text := lexer.Next()
		switch tt {
		case css.ErrorToken:
			if err := lexer.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("css: %w", err)
			}
			flushDecl()
			if len(stack) != 1 {
				return nil, fmt.Errorf("css: unclosed block")
			}
			return root, nil
		case css.WhitespaceToken:
			appendText(" ")
		case css.CommentToken:
			// dropped from output
		case css.LeftBraceToken:
			prelude := strings.TrimSpace(buf.String())
			buf.Reset()
			if prelude == "" {
				return nil, fmt.Errorf("css: block with empty selector")
			}
			child := &rule{prelude: prelude, atRule: strings.HasPrefix(prelude, "@")}
			top := stack[len(stack)-1]
			top.children = append(top.children, child)
			stack = append(stack, child)
		case css.RightBraceToken:
			flushDecl()
			if len(stack) == 1 {
				return nil, fmt.Errorf("css: unbalanced '}'")
			}
			stack = stack[:len(stack)-1]
		case css.SemicolonToken:
			flushDecl()
		default:
			appendText(string(text))
		}
	}
}

// cleanDecl trims a declaration and tightens the gap around its
// property colon.
func cleanDecl(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if i := strings.Index(s, ":"); i >= 0 {
		s = strings.TrimSpace(s[:i]) + ":" + strings.TrimSpace(s[i+1:])
	}
	return s
}

// conditional at-rules thread the parent selector into their block;
// anything else (@keyframes, @font-face, ...) keeps its body verbatim
// and is emitted as its own top-level block.
var nestTransparent = map[string]bool{
	"@media":     true,
	"@supports":  true,
	"@layer":     true,
	"@container": true,
}

func atRuleName(prelude string) string {
	if i := strings.IndexAny(prelude, " \t("); i >= 0 {
		return prelude[:i]
	}
	return prelude
}

// emit writes the flattened form of the rule. Declarations are closed
// into their own block before children are emitted, so nested rules
// and hoistable at-rules always land at the top level of the output.
func (n *rule) emit(b *strings.Builder, parent string) {
	if n.atRule {
		if nestTransparent[atRuleName(n.prelude)] {
			b.WriteString(n.prelude)
			b.WriteByte('{')
			if len(n.decls) > 0 && parent != "" {
				writeBlock(b, parent, n.decls)
			}
			for _, c := range n.children {
				c.emit(b, parent)
			}
			b.WriteByte('}')
			return
		}
		n.emitRaw(b)
		return
	}
	sel := joinSelector(parent, n.prelude)
	if len(n.decls) > 0 {
		writeBlock(b, sel, n.decls)
	}
	for _, c := range n.children {
		c.emit(b, sel)
	}
}

// emitRaw reproduces an opaque at-rule block without selector
// rewriting (keyframe frames must keep their own selectors).
func (n *rule) emitRaw(b *strings.Builder) {
	b.WriteString(n.prelude)
	b.WriteByte('{')
	for _, d := range n.decls {
		b.WriteString(d)
		b.WriteByte(';')
	}
	for _, c := range n.children {
		c.emitRaw(b)
	}
	b.WriteByte('}')
}

func writeBlock(b *strings.Builder, sel string, decls []string) {
	b.WriteString(sel)
	b.WriteByte('{')
	for _, d := range decls {
		b.WriteString(d)
		b.WriteByte(';')
	}
	b.WriteByte('}')
}

// joinSelector combines a parent selector with a nested prelude:
// '&' substitutes the parent; otherwise the parent applies as a
// descendant. Comma lists on either side distribute.
func joinSelector(parent, sel string) string {
	if parent == "" {
		return sel
	}
	ref := parent
	if strings.Contains(parent, ",") {
		ref = ":is(" + parent + ")"
	}
	parts := splitTop(sel, ',')
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if strings.Contains(p, "&") {
			parts[i] = strings.ReplaceAll(p, "&", ref)
		} else {
			parts[i] = ref + " " + p
		}
	}
	return strings.Join(parts, ",")
}

// splitTop splits on sep outside of parentheses and brackets.
func splitTop(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
