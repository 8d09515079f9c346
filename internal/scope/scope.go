// Package scope collects outer-scope bindings for a source file: the
// top-level literal constants an interpolation may reference, plus
// inert stand-ins for the style tags themselves. It is the default
// implementation of the transform's outer-scope collaborator; hosts
// with a real module graph can substitute their own.
package scope

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	tjs "github.com/tdewolff/parse/v2/js"

	"github.com/zcss/zcss/internal/js"
)

const defaultMaxDepth = 8

// Resolver gathers bindings through an injected file reader.
type Resolver struct {
	// Read loads a file by path. Required when FollowImports is set.
	Read func(path string) ([]byte, error)
	// StylePackage is the specifier whose imports are bound to dummy
	// tag functions so collection does not fail on them.
	StylePackage string
	// FollowImports enables resolving relative (and listed package)
	// imports for their exported literal constants.
	FollowImports bool
	// Packages are bare specifiers to resolve rather than treat as
	// external.
	Packages []string
	// MaxDepth bounds transitive import following; 0 means default.
	MaxDepth int
}

// dummyTag stands in for a style tag during binding collection; the
// real tags never run, so any call yields an inert placeholder.
func dummyTag(...any) string { return "" }

// Bindings returns the outer-scope environment for the file at path
// with source src.
func (r *Resolver) Bindings(ctx context.Context, path, src string) (map[string]any, error) {
	env := map[string]any{}
	seen := map[string]bool{normPath(path): true}
	if err := r.collect(ctx, path, src, env, seen, 0, false); err != nil {
		return nil, err
	}
	return env, nil
}

func (r *Resolver) collect(ctx context.Context, path, src string, env map[string]any, seen map[string]bool, depth int, exportedOnly bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rd := js.NewReader(src)
	braces := 0
	var ring [5]js.Token // ring[0] most recent
	for {
		tok, ok := rd.NextSignificant()
		if !ok {
			break
		}
		switch {
		case tok.Is("{"):
			braces++
		case tok.Is("}"):
			if braces > 0 {
				braces--
			}
		case braces == 0 && tok.Is("import"):
			if err := r.handleImport(ctx, rd, path, env, seen, depth); err != nil {
				return err
			}
			continue
		case braces == 0:
			if name, val, isBinding := literalBinding(ring, tok, exportedOnly); isBinding {
				env[name] = val
			}
		}
		ring[4], ring[3], ring[2], ring[1], ring[0] = ring[3], ring[2], ring[1], ring[0], tok
	}
	return rd.Err()
}

// literalBinding matches (export)? const|let|var name = <literal>.
func literalBinding(ring [5]js.Token, tok js.Token, exportedOnly bool) (string, any, bool) {
	val, isLit := literalValue(tok)
	if !isLit {
		return "", nil, false
	}
	if !ring[0].Is("=") || !js.IdentShaped(ring[1].Text) {
		return "", nil, false
	}
	if !ring[2].Is("const") && !ring[2].Is("let") && !ring[2].Is("var") {
		return "", nil, false
	}
	if exportedOnly && !ring[3].Is("export") {
		return "", nil, false
	}
	return ring[1].Text, val, true
}

func literalValue(tok js.Token) (any, bool) {
	switch {
	case tok.Type == tjs.StringToken:
		return js.Unquote(tok.Text), true
	case tok.Type == tjs.TemplateToken:
		t := strings.TrimSuffix(strings.TrimPrefix(tok.Text, "`"), "`")
		if strings.Contains(t, "${") {
			return nil, false
		}
		return t, true
	case tok.Is("true"):
		return true, true
	case tok.Is("false"):
		return false, true
	case tok.Text != "" && (tok.Text[0] >= '0' && tok.Text[0] <= '9'):
		lit := strings.ReplaceAll(tok.Text, "_", "")
		if i, err := strconv.ParseInt(lit, 0, 64); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(lit, 64); err == nil {
			return f, true
		}
	}
	return nil, false
}

// handleImport parses one import statement and binds what it can:
// style-package imports get dummy tags; followable modules contribute
// their exported literal constants.
func (r *Resolver) handleImport(ctx context.Context, rd *js.Reader, importer string, env map[string]any, seen map[string]bool, depth int) error {
	clause, specifier, ok := readClause(rd)
	if !ok {
		return nil
	}
	spec := js.Unquote(specifier)
	names := clauseNames(clause)

	if spec == r.StylePackage {
		for _, n := range names {
			env[n.local] = dummyTag
		}
		return nil
	}
	if !r.FollowImports || depth >= r.maxDepth() {
		return nil
	}
	relative := strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
	if !relative && !r.includesPackage(spec) {
		return nil
	}
	target, data, ok := r.readModule(importer, spec, relative)
	if !ok || seen[normPath(target)] {
		return nil
	}
	seen[normPath(target)] = true

	exports := map[string]any{}
	if err := r.collect(ctx, target, string(data), exports, seen, depth+1, true); err != nil {
		return err
	}
	for _, n := range names {
		if v, found := exports[n.imported]; found {
			env[n.local] = v
		}
	}
	return nil
}

type importedName struct {
	imported string
	local    string
}

func readClause(rd *js.Reader) (clause []js.Token, specifier string, ok bool) {
	depth := 0
	for {
		t, more := rd.NextSignificant()
		if !more {
			return nil, "", false
		}
		if len(clause) == 0 && depth == 0 && (t.Is("(") || t.Is(".")) {
			return nil, "", false
		}
		switch {
		case t.Is("{"):
			depth++
		case t.Is("}"):
			depth--
		case t.Type == tjs.StringToken && depth == 0:
			return clause, t.Text, true
		case t.Is(";"):
			return nil, "", false
		}
		clause = append(clause, t)
	}
}

// clauseNames lists the local bindings an import clause introduces,
// including a default import.
func clauseNames(clause []js.Token) []importedName {
	var names []importedName
	depth := 0
	var group []string
	flush := func() {
		if len(group) == 0 {
			return
		}
		n := importedName{imported: js.Unquote(group[0]), local: js.Unquote(group[0])}
		if len(group) == 3 && group[1] == "as" {
			n.local = group[2]
		}
		names = append(names, n)
		group = nil
	}
	for i, t := range clause {
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
		case depth == 0 && js.IdentShaped(t.Text) && t.Text != "from" && t.Text != "type":
			// default import binds the module's default export
			if i == 0 {
				names = append(names, importedName{imported: "default", local: t.Text})
			}
		}
	}
	return names
}

var moduleExts = []string{"", ".js", ".ts", ".mjs", ".jsx", ".tsx"}

func (r *Resolver) readModule(importer, spec string, relative bool) (string, []byte, bool) {
	if r.Read == nil {
		return "", nil, false
	}
	dir := filepath.Dir(importer)
	var bases []string
	if relative {
		bases = append(bases, filepath.Join(dir, filepath.FromSlash(spec)))
	} else {
		// walk up towards the root looking for a vendor copy
		for d := dir; ; d = filepath.Dir(d) {
			bases = append(bases, filepath.Join(d, "node_modules", filepath.FromSlash(spec)))
			if d == filepath.Dir(d) {
				break
			}
		}
	}
	for _, base := range bases {
		for _, ext := range moduleExts {
			if data, err := r.Read(base + ext); err == nil {
				return base + ext, data, true
			}
		}
		for _, ext := range moduleExts[1:] {
			p := filepath.Join(base, "index"+ext)
			if data, err := r.Read(p); err == nil {
				return p, data, true
			}
		}
	}
	return "", nil, false
}

func (r *Resolver) includesPackage(spec string) bool {
	for _, p := range r.Packages {
		if spec == p || strings.HasPrefix(spec, p+"/") {
			return true
		}
	}
	return false
}

func (r *Resolver) maxDepth() int {
	if r.MaxDepth > 0 {
		return r.MaxDepth
	}
	return defaultMaxDepth
}

func normPath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
