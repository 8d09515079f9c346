package zcss

import (
	"context"
	"os"

	"github.com/zcss/zcss/internal/scope"
	"github.com/zcss/zcss/internal/transform"
)

// Options configure a build session. Start from DefaultOptions and
// override.
type Options struct {
	// TagPackage is the module specifier the css/scss tags are
	// imported from.
	TagPackage string
	// EvaluateExpressions enables resolving interpolations; when off,
	// template text passes through literally.
	EvaluateExpressions bool
	// ResolveImports enables inlining outer-scope bindings from
	// relative imports. Forced on when ResolvePackages is non-empty
	// and evaluation is enabled.
	ResolveImports bool
	// ResolvePackages lists bare package specifiers to resolve rather
	// than treat as external during binding collection.
	ResolvePackages []string
	// NoSpecificityGuard disables wrapping registered selector
	// references in :where().
	NoSpecificityGuard bool
	// SourceMaps enables source map output for rewritten files.
	SourceMaps bool
	// ReadFile loads files during binding collection; defaults to
	// os.ReadFile.
	ReadFile func(string) ([]byte, error)
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		TagPackage:          transform.DefaultTagPackage,
		EvaluateExpressions: true,
	}
}

func (o Options) normalized() Options {
	if o.TagPackage == "" {
		o.TagPackage = transform.DefaultTagPackage
	}
	if len(o.ResolvePackages) > 0 && o.EvaluateExpressions {
		o.ResolveImports = true
	}
	if o.ReadFile == nil {
		o.ReadFile = os.ReadFile
	}
	return o
}

// Session owns the stylesheet registry for one build and exposes the
// host module-graph contract: resolve, load, and the pass lifecycle.
type Session struct {
	opts     Options
	registry *Registry
	scope    *scope.Resolver
}

// NewSession creates a session with its own empty registry.
func NewSession(opts Options) *Session {
	opts = opts.normalized()
	return &Session{
		opts:     opts,
		registry: NewRegistry(),
		scope: &scope.Resolver{
			Read:          opts.ReadFile,
			StylePackage:  opts.TagPackage,
			FollowImports: opts.ResolveImports,
			Packages:      opts.ResolvePackages,
		},
	}
}

// Registry exposes the session's registry.
func (s *Session) Registry() *Registry { return s.registry }

// BuildStart clears the registry at the start of a build pass.
func (s *Session) BuildStart() { s.registry.Clear() }

// BuildEnd clears the registry at the end of a build pass.
func (s *Session) BuildEnd() { s.registry.Clear() }

// ResolveID implements the host resolution hook.
func (s *Session) ResolveID(specifier, importer string) (string, bool) {
	return s.registry.ResolveID(specifier, importer)
}

// Load implements the host load hook.
func (s *Session) Load(id string) (string, bool) {
	return s.registry.Load(id)
}

// TransformFile runs the transform pipeline on one file and registers
// the produced stylesheet entries. Ineligible files and files without
// style-tag imports come back unchanged and register nothing.
func (s *Session) TransformFile(ctx context.Context, path string, src []byte) (*transform.Result, error) {
	if !Eligible(path) {
		return &transform.Result{Code: string(src)}, nil
	}
	outer := func(ctx context.Context) (map[string]any, error) {
		lo, hi := transform.ScriptRegion(path, string(src))
		return s.scope.Bindings(ctx, path, string(src[lo:hi]))
	}
	res, err := transform.File(ctx, path, string(src), transform.Options{
		TagPackage:          s.opts.TagPackage,
		EvaluateExpressions: s.opts.EvaluateExpressions,
		NoSpecificityGuard:  s.opts.NoSpecificityGuard,
		SourceMaps:          s.opts.SourceMaps,
	}, outer)
	if err != nil {
		return nil, err
	}
	for _, e := range res.Entries {
		s.registry.Put(e.Path, e.CSS)
	}
	return res, nil
}
