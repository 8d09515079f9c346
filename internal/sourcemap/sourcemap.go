// Package sourcemap builds minimal source map v3 documents for
// rewritten sources. Only offset-to-offset segment mappings are
// emitted; names are not tracked.
package sourcemap

import (
	"encoding/json"
	"sort"
	"strings"
)

const base64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// Builder accumulates (generated offset, source offset) pairs while
// edits are applied and renders them as a v3 map.
type Builder struct {
	file     string
	source   string
	segments []segment
}

type segment struct {
	genOff int
	srcOff int
}

// New returns a builder for a generated file derived from source.
func New(file, source string) *Builder {
	return &Builder{file: file, source: source}
}

// Add records that generated offset genOff corresponds to source
// offset srcOff.
func (b *Builder) Add(genOff, srcOff int) {
	b.segments = append(b.segments, segment{genOff: genOff, srcOff: srcOff})
}

type mapV3 struct {
	Version        int      `json:"version"`
	File           string   `json:"file"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// JSON renders the collected segments against the source and
// generated contents.
func (b *Builder) JSON(srcContent, genContent string) ([]byte, error) {
	genLines := lineStarts(genContent)
	srcLines := lineStarts(srcContent)

	segs := append([]segment(nil), b.segments...)
	// stable: the first segment recorded for an offset wins
	sort.SliceStable(segs, func(i, j int) bool { return segs[i].genOff < segs[j].genOff })

	var m strings.Builder
	genLine := 0
	prevGenCol, prevSrcLine, prevSrcCol := 0, 0, 0
	first := true
	lastGenOff := -1
	for _, s := range segs {
		if s.genOff == lastGenOff {
			continue
		}
		lastGenOff = s.genOff
		gl, gc := lineCol(genLines, s.genOff)
		sl, sc := lineCol(srcLines, s.srcOff)
		for genLine < gl {
			m.WriteByte(';')
			genLine++
			prevGenCol = 0
			first = true
		}
		if !first {
			m.WriteByte(',')
		}
		first = false
		writeVLQ(&m, gc-prevGenCol)
		writeVLQ(&m, 0) // single source
		writeVLQ(&m, sl-prevSrcLine)
		writeVLQ(&m, sc-prevSrcCol)
		prevGenCol, prevSrcLine, prevSrcCol = gc, sl, sc
	}

	return json.Marshal(mapV3{
		Version:        3,
		File:           b.file,
		Sources:        []string{b.source},
		SourcesContent: []string{srcContent},
		Names:          []string{},
		Mappings:       m.String(),
	})
}

func writeVLQ(b *strings.Builder, v int) {
	u := uint(v) << 1
	if v < 0 {
		u = uint(-v)<<1 | 1
	}
	for {
		d := u & 0x1f
		u >>= 5
		if u != 0 {
			d |= 0x20
		}
		b.WriteByte(base64Chars[d])
		if u == 0 {
			return
		}
	}
}

// lineStarts returns the byte offset of the start of each line.
func lineStarts(s string) []int {
	starts := []int{0}
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func lineCol(starts []int, off int) (line, col int) {
	line = sort.Search(len(starts), func(i int) bool { return starts[i] > off }) - 1
	return line, off - starts[line]
}
