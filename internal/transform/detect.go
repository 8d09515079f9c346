package transform

import (
	"strings"

	tjs "github.com/tdewolff/parse/v2/js"

	"github.com/zcss/zcss/internal/js"
)

// recognized style-tag export names.
const (
	tagCSS  = "css"
	tagSCSS = "scss"
)

// DetectImports finds local identifiers bound to the style tags via
// named imports of stylePkg. It also records the statement span of
// every import from stylePkg so the rewriter can delete them, whether
// or not the statement's bindings end up used.
func DetectImports(src, stylePkg string) (Imports, error) {
	im := Imports{Bindings: map[string]Role{}}
	r := js.NewReader(src)
	for {
		tok, ok := r.NextSignificant()
		if !ok {
			break
		}
		if !tok.Is("import") {
			continue
		}
		start := tok.Start
		clause, specifier, specEnd, ok := readImportClause(r)
		if !ok {
			continue // dynamic import, import.meta, or malformed
		}
		if js.Unquote(specifier) != stylePkg {
			continue
		}
		for local, imported := range namedImports(clause) {
			switch imported {
			case tagCSS:
				im.Bindings[local] = RoleCSS
			case tagSCSS:
				im.Bindings[local] = RoleSCSS
			}
		}
		im.Spans = append(im.Spans, Span{Start: start, End: statementEnd(src, specEnd)})
	}
	if err := r.Err(); err != nil {
		return im, err
	}
	return im, nil
}

// readImportClause consumes tokens up to the module specifier string.
// ok is false when the construct is not a static import declaration.
func readImportClause(r *js.Reader) (clause []js.Token, specifier string, specEnd int, ok bool) {
	depth := 0
	for {
		t, more := r.NextSignificant()
		if !more {
			return nil, "", 0, false
		}
		if len(clause) == 0 && depth == 0 && (t.Is("(") || t.Is(".")) {
			return nil, "", 0, false
		}
		switch {
		case t.Is("{"):
			depth++
		case t.Is("}"):
			depth--
		case t.Type == tjs.StringToken && depth == 0:
			return clause, t.Text, t.End, true
		case t.Is(";"):
			return nil, "", 0, false
		}
		clause = append(clause, t)
	}
}

// namedImports extracts local→imported pairs from the brace part of
// an import clause. The map is keyed by local name: the same exported
// tag may be bound under several aliases in one statement, and every
// alias must survive.
func namedImports(clause []js.Token) map[string]string {
	pairs := map[string]string{}
	depth := 0
	var group []string
	flush := func() {
		if len(group) == 0 {
			return
		}
		imported := js.Unquote(group[0])
		local := imported
		if len(group) == 3 && group[1] == "as" {
			local = group[2]
		}
		pairs[local] = imported
		group = nil
	}
	for _, t := range clause {
		switch {
		case t.Is("{"):
			depth++
		case t.Is("}"):
			depth--
			flush()
		case depth > 0 && t.Is(","):
			flush()
		case depth > 0:
			group = append(group, t.Text)
		}
	}
	return pairs
}

// statementEnd extends the span past an optional trailing semicolon
// and one line break so deletion does not leave blank lines behind.
func statementEnd(src string, end int) int {
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	if end < len(src) && src[end] == ';' {
		end++
	}
	if strings.HasPrefix(src[end:], "\r\n") {
		return end + 2
	}
	if end < len(src) && src[end] == '\n' {
		end++
	}
	return end
}
