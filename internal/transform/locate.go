package transform

import (
	"fmt"

	tjs "github.com/tdewolff/parse/v2/js"

	"github.com/zcss/zcss/internal/js"
)

// LocateTemplates walks the token stream and returns every
// tagged-template site whose tag is one of the recognized local
// identifiers, in source order (outer before inner for nested
// templates). The declared name is inferred from the immediately
// preceding declaration context:
//
//	const box = css`...`   → "box"
//	{ key: css`...` }      → "key"
//	anything else          → anonymous
//
// The name only sticks when the template is the entire initializer or
// property value; a site used as a sub-expression stays anonymous.
func LocateTemplates(src string, bindings map[string]Role) ([]*TemplateSite, error) {
	var (
		sites []*TemplateSite
		stack []*TemplateSite // open templates; nil frame for untagged
		ring  [4]js.Token     // last significant tokens, ring[0] most recent
		await *TemplateSite   // named site waiting for its statement to close
	)
	r := js.NewReader(src)
	for {
		tok, ok := r.Next()
		if !ok {
			break
		}
		if await != nil {
			await = confirmName(await, tok)
		}
		if tok.IsSpace() {
			continue
		}
		switch tok.Type {
		case tjs.TemplateToken:
			if site := taggedSite(ring, bindings, tok); site != nil {
				site.End = tok.End
				site.RawText = src[site.TplStart:site.End]
				sites = append(sites, site)
				if site.Name != "" {
					await = site
				}
			}
		case tjs.TemplateStartToken:
			site := taggedSite(ring, bindings, tok)
			if site != nil {
				site.Interps = 1
				sites = append(sites, site)
			}
			stack = append(stack, site)
		case tjs.TemplateMiddleToken:
			if len(stack) > 0 {
				if site := stack[len(stack)-1]; site != nil {
					site.Interps++
				}
			}
		case tjs.TemplateEndToken:
			if len(stack) > 0 {
				site := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if site != nil {
					site.End = tok.End
					site.RawText = src[site.TplStart:site.End]
					if site.Name != "" {
						await = site
					}
				}
			}
		}
		ring[3], ring[2], ring[1], ring[0] = ring[2], ring[1], ring[0], tok
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("unterminated template literal")
	}
	return sites, nil
}

// confirmName keeps a site's declared name only while the token after
// the closing backtick still closes the declaration: the template must
// be the whole initializer or property value, not a sub-expression.
// End of input also closes it.
func confirmName(site *TemplateSite, tok js.Token) *TemplateSite {
	switch {
	case tok.Type == tjs.LineTerminatorToken, tok.Type == tjs.CommentLineTerminatorToken:
		return nil
	case tok.IsSpace():
		return site // keep waiting
	case tok.Is(";"), tok.Is(","), tok.Is("}"):
		return nil
	default:
		site.Name = ""
		return nil
	}
}

// taggedSite returns a new site when the token preceding the template
// is a recognized tag identifier (and not a member access), with the
// declared name taken from the surrounding declaration shape.
func taggedSite(ring [4]js.Token, bindings map[string]Role, tpl js.Token) *TemplateSite {
	tag := ring[0]
	role, isTag := bindings[tag.Text]
	if !isTag || !js.IdentShaped(tag.Text) {
		return nil
	}
	if ring[1].Is(".") {
		return nil // obj.css`...` is not the imported tag
	}
	site := &TemplateSite{
		Span:     Span{Start: tag.Start},
		TplStart: tpl.Start,
		Role:     role,
	}
	switch {
	// const name = css`...` — initializer is exactly this template.
	case ring[1].Is("=") && js.IdentShaped(ring[2].Text) &&
		(ring[3].Is("const") || ring[3].Is("let") || ring[3].Is("var")):
		site.Name = ring[2].Text
	// { name: css`...` } — property value is exactly this template.
	case ring[1].Is(":") && js.IdentShaped(ring[2].Text) &&
		(ring[3].Is("{") || ring[3].Is(",")):
		site.Name = ring[2].Text
	}
	return site
}
