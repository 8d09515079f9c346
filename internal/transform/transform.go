package transform

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/zcss/zcss/internal/cssc"
	"github.com/zcss/zcss/internal/sourcemap"
)

// DefaultTagPackage is the module specifier the style tags are
// imported from.
const DefaultTagPackage = "zcss"

// Options control the per-file transform.
type Options struct {
	TagPackage          string
	EvaluateExpressions bool
	NoSpecificityGuard  bool
	SourceMaps          bool
}

func (o Options) withDefaults() Options {
	if o.TagPackage == "" {
		o.TagPackage = DefaultTagPackage
	}
	return o
}

// OuterScope lazily supplies the outer-scope bindings for a file. It
// is invoked at most once per file, the first time a site with
// interpolations needs evaluation; the result is cached for the
// file's remaining sites.
type OuterScope func(ctx context.Context) (map[string]any, error)

// File runs the whole pipeline on one source file. A file binding no
// style tags, or binding them but containing no template sites, is
// returned unmodified with no entries — the cheap common case. Any
// failure inside one site aborts the file's transform; no partial
// rewrite is ever produced.
func File(ctx context.Context, filePath, src string, opts Options, outer OuterScope) (*Result, error) {
	opts = opts.withDefaults()

	lo, hi := ScriptRegion(filePath, src)
	script := src[lo:hi]

	imports, err := DetectImports(script, opts.TagPackage)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	if imports.Empty() {
		return &Result{Code: src}, nil
	}
	sites, err := LocateTemplates(script, imports.Bindings)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	if len(sites) == 0 {
		return &Result{Code: src}, nil
	}
	// spans were produced against the script region; edits apply to
	// the whole file
	if lo > 0 {
		for i := range imports.Spans {
			imports.Spans[i].Start += lo
			imports.Spans[i].End += lo
		}
		for _, site := range sites {
			site.Start += lo
			site.End += lo
			site.TplStart += lo
		}
	}

	var (
		outerCache  map[string]any
		outerLoaded bool
	)
	loadOuter := func() (map[string]any, error) {
		if outerLoaded {
			return outerCache, nil
		}
		if outer != nil {
			m, err := outer(ctx)
			if err != nil {
				return nil, err
			}
			outerCache = m
		}
		outerLoaded = true
		return outerCache, nil
	}

	res := &Result{Sites: len(sites), Changed: true}
	classBindings := map[string]string{} // declared name → selector reference
	var edits []edit
	var importLines []string
	dir := path.Dir(filepath.ToSlash(filePath))

	for i, site := range sites {
		body, err := siteBody(site, opts, loadOuter, classBindings)
		if err != nil {
			return nil, fmt.Errorf("%s: site %d (%s): %w", filePath, i+1, siteLabel(site), err)
		}
		dialect := cssc.Plain
		if site.Role == RoleSCSS {
			dialect = cssc.SCSS
		}
		out, err := cssc.Compile(body, site.Name, dialect)
		if err != nil {
			return nil, fmt.Errorf("%s: site %d (%s): %w", filePath, i+1, siteLabel(site), err)
		}

		edits = append(edits, edit{Span: site.Span, Text: `"` + out.ClassName + `"`})

		// Registration order is discovery order: only later sites in
		// this file may compose against the binding.
		if site.Name != "" {
			sel := "." + out.ClassName
			if !opts.NoSpecificityGuard {
				sel = ":where(" + sel + ")"
			}
			classBindings[site.Name] = sel
		}

		name := strings.ToLower(out.ClassName) + ".zcss." + site.Role.Ext()
		importLines = append(importLines, `import "./`+name+`";`)
		res.Entries = append(res.Entries, Entry{Path: path.Join(dir, name), CSS: out.CSS})
	}

	for _, span := range imports.Spans {
		edits = append(edits, edit{Span: span})
	}
	if len(importLines) > 0 {
		pos := importInsertPos(filePath, src)
		edits = append(edits, edit{
			Span: Span{Start: pos, End: pos},
			Text: strings.Join(importLines, "\n") + "\n",
		})
	}

	var sm *sourcemap.Builder
	if opts.SourceMaps {
		sm = sourcemap.New(filepath.Base(filePath), filepath.ToSlash(filePath))
	}
	code, err := applyEdits(src, edits, sm)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	res.Code = code
	if sm != nil {
		m, err := sm.JSON(src, code)
		if err != nil {
			return nil, fmt.Errorf("%s: source map: %w", filePath, err)
		}
		res.Map = m
	}
	return res, nil
}

// siteBody produces the resolved CSS body for a site. Evaluation only
// happens when the site interpolates and evaluation is enabled;
// otherwise the literal text passes through unchanged.
func siteBody(site *TemplateSite, opts Options, loadOuter func() (map[string]any, error), classBindings map[string]string) (string, error) {
	if site.Interps == 0 || !opts.EvaluateExpressions {
		return Literal(site.RawText), nil
	}
	outer, err := loadOuter()
	if err != nil {
		return "", err
	}
	return ResolveTemplate(site.RawText, LayerEnv(outer, classBindings))
}

func siteLabel(site *TemplateSite) string {
	if site.Name != "" {
		return site.Name
	}
	return cssc.PlaceholderPrefix
}
