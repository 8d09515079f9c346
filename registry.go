package zcss

import (
	"path"
	"strings"
	"sync"
)

// Registry is the session-scoped store of virtual stylesheet entries,
// keyed by normalized slash paths. Concurrent single-key writes are
// safe; two files producing byte-identical resolved CSS register
// equivalent content under the same key, so last-write-wins is the
// intended de-duplication, not a race.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[string]string{}}
}

// Put registers CSS text under a virtual path.
func (r *Registry) Put(virtualPath, css string) {
	r.mu.Lock()
	r.entries[normKey(virtualPath)] = css
	r.mu.Unlock()
}

// Load returns the registered CSS for a resolved virtual id. ok is
// false for unknown ids — never stale or synthesized content — so the
// host falls back to normal resolution.
func (r *Registry) Load(id string) (css string, ok bool) {
	r.mu.RLock()
	css, ok = r.entries[normKey(id)]
	r.mu.RUnlock()
	return css, ok
}

// ResolveID normalizes a specifier against the registry's keys and
// returns the matching virtual id, or ok=false to decline.
func (r *Registry) ResolveID(specifier, importer string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, cand := range candidates(specifier, importer) {
		if _, found := r.entries[cand]; found {
			return cand, true
		}
	}
	return "", false
}

// Clear drops every entry; called at build-pass start and end.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.entries = map[string]string{}
	r.mu.Unlock()
}

// Len reports the number of registered entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Snapshot copies the current entries, for materialization.
func (r *Registry) Snapshot() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.entries))
	for k, v := range r.entries {
		out[k] = v
	}
	return out
}

func candidates(specifier, importer string) []string {
	spec := strings.ReplaceAll(specifier, "\\", "/")
	cands := []string{normKey(spec)}
	if importer != "" && (strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")) {
		dir := path.Dir(strings.ReplaceAll(importer, "\\", "/"))
		cands = append(cands, normKey(path.Join(dir, spec)))
	}
	return cands
}

func normKey(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	return strings.TrimPrefix(p, "./")
}
