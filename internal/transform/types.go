// Package transform implements the per-file pipeline that turns
// css/scss tagged-template declarations into static stylesheet
// entries and rewrites each template site to its generated class
// name.
package transform

// Role identifies which style tag a binding or template site uses.
type Role int

const (
	RoleCSS Role = iota
	RoleSCSS
)

func (r Role) String() string {
	if r == RoleSCSS {
		return "scss"
	}
	return "css"
}

// Ext returns the stylesheet extension for the role's dialect.
func (r Role) Ext() string { return r.String() }

// Span is a half-open byte range [Start, End) in the original source.
type Span struct {
	Start int
	End   int
}

// Imports is the result of import detection for one file.
type Imports struct {
	// Bindings maps local identifier names to the style-tag role they
	// were imported as. Aliased imports bind the role under the alias.
	Bindings map[string]Role
	// Spans are the statement spans of every style-package import,
	// kept for deletion by the rewriter.
	Spans []Span
}

// Empty reports whether the file binds no recognized style tags, in
// which case the rest of the pipeline is skipped.
func (im Imports) Empty() bool { return len(im.Bindings) == 0 }

// TemplateSite is one tagged-template occurrence, ordered by source
// position.
type TemplateSite struct {
	// Span covers the tag identifier through the closing backtick and
	// is what the rewriter replaces with the class-name literal.
	Span
	// TplStart is the offset of the opening backtick; RawText is
	// src[TplStart:End] including delimiters and interpolation
	// markers.
	TplStart int
	Role     Role
	// Name is the declared name inferred from the syntactic parent,
	// or "" when the site is anonymous.
	Name    string
	RawText string
	Interps int
}

// Entry is a stylesheet registered under a virtual path.
type Entry struct {
	Path string
	CSS  string
}

// Result is the outcome of transforming one file.
type Result struct {
	Code    string
	Map     []byte
	Entries []Entry
	Sites   int
	Changed bool
}
