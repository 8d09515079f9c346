package transform

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zcss/zcss/internal/sourcemap"
)

// edit replaces src[Start:End) with Text; Start == End inserts.
type edit struct {
	Span
	Text string
}

// applyEdits rewrites src and records segment mappings into sm (which
// may be nil). Edits must not overlap.
func applyEdits(src string, edits []edit, sm *sourcemap.Builder) (string, error) {
	// zero-length inserts sort before a replacement starting at the
	// same offset, so injected imports precede a deleted statement
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].Start != edits[j].Start {
			return edits[i].Start < edits[j].Start
		}
		return edits[i].End < edits[j].End
	})
	var b strings.Builder
	pos := 0
	for _, e := range edits {
		if e.Start < pos || e.End > len(src) || e.End < e.Start {
			return "", fmt.Errorf("rewrite: overlapping or out-of-range edit at %d..%d", e.Start, e.End)
		}
		copySegment(&b, src, pos, e.Start, sm)
		if sm != nil {
			sm.Add(b.Len(), e.Start)
		}
		b.WriteString(e.Text)
		pos = e.End
	}
	copySegment(&b, src, pos, len(src), sm)
	return b.String(), nil
}

// copySegment copies src[from:to) into b, mapping the segment start
// and every line start it contains.
func copySegment(b *strings.Builder, src string, from, to int, sm *sourcemap.Builder) {
	if from >= to {
		return
	}
	if sm != nil {
		sm.Add(b.Len(), from)
		for i := from; i < to; i++ {
			if src[i] == '\n' && i+1 < to {
				sm.Add(b.Len()+(i+1-from), i+1)
			}
		}
	}
	b.WriteString(src[from:to])
}

// ScriptRegion returns the [start, end) slice of src that holds the
// file's script code: the first <script> element body for markup
// files, the frontmatter fence body for astro, the whole file for
// plain script sources. Markup outside the region is not JavaScript
// and must never reach the lexer.
func ScriptRegion(path, src string) (int, int) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svelte", ".vue", ".html":
		i := strings.Index(src, "<script")
		if i < 0 {
			return 0, 0
		}
		j := strings.IndexByte(src[i:], '>')
		if j < 0 {
			return 0, 0
		}
		start := i + j + 1
		if k := strings.Index(src[start:], "</script"); k >= 0 {
			return start, start + k
		}
		return start, len(src)
	case ".astro":
		if !strings.HasPrefix(src, "---") {
			return 0, 0
		}
		j := strings.IndexByte(src, '\n')
		if j < 0 {
			return 0, 0
		}
		start := j + 1
		if k := strings.Index(src[start:], "\n---"); k >= 0 {
			return start, start + k + 1
		}
		return start, len(src)
	default:
		return 0, len(src)
	}
}

// importInsertPos picks where injected stylesheet imports go: file
// start for plain script sources, after the opening script tag (or
// frontmatter fence) for markup-script sources.
func importInsertPos(path, src string) int {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svelte", ".vue", ".html":
		if i := strings.Index(src, "<script"); i >= 0 {
			if j := strings.IndexByte(src[i:], '>'); j >= 0 {
				pos := i + j + 1
				if pos < len(src) && src[pos] == '\n' {
					pos++
				}
				return pos
			}
		}
		return 0
	case ".astro":
		// imports belong inside the frontmatter fence
		if strings.HasPrefix(src, "---") {
			if j := strings.IndexByte(src, '\n'); j >= 0 {
				return j + 1
			}
		}
		return 0
	default:
		return 0
	}
}
