// Package cssc compiles a resolved CSS body into a selector-scoped
// stylesheet with a deterministic, content-addressed class name.
package cssc

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Dialect selects the nesting pass applied to a template body.
type Dialect int

const (
	Plain Dialect = iota // CSS nesting, flattened
	SCSS                 // SCSS syntax: // comments, same nesting rules
)

// PlaceholderPrefix is used when a site has no declared name.
const PlaceholderPrefix = "zc"

const hashLen = 8

// Output is the compiled stylesheet and its generated class name.
type Output struct {
	CSS       string
	ClassName string
}

// Compile partitions out at-rule directives, hashes the trimmed body,
// wraps the remainder in the generated class selector and flattens
// all nesting. The hash input is the body exactly as resolved,
// directive lines included, so the class name depends only on
// content, never on file path or declared name.
func Compile(body, prefix string, d Dialect) (Output, error) {
	trimmed := strings.TrimSpace(body)
	class := SanitizePrefix(prefix) + "-" + ClassHash(trimmed)

	work := trimmed
	if d == SCSS {
		work = stripLineComments(work)
	}
	directives, rest := partitionDirectives(work)

	root, err := parseRules(rest)
	if err != nil {
		return Output{}, err
	}
	wrapper := &rule{prelude: "." + class, decls: root.decls, children: root.children}

	var b strings.Builder
	for _, dir := range directives {
		b.WriteString(dir)
		b.WriteByte('\n')
	}
	wrapper.emit(&b, "")
	return Output{CSS: b.String(), ClassName: class}, nil
}

// ClassHash returns the deterministic content hash of a trimmed CSS
// body: xxhash64 rendered in base36. Identical bodies anywhere in a
// build produce identical names; distinct bodies are assumed
// hash-distinct.
func ClassHash(body string) string {
	s := strconv.FormatUint(xxhash.Sum64String(body), 36)
	if len(s) > hashLen {
		return s[:hashLen]
	}
	for len(s) < hashLen {
		s = "0" + s
	}
	return s
}

// SanitizePrefix maps a declared name onto CSS class identifier
// characters, falling back to the placeholder for anonymous sites.
func SanitizePrefix(name string) string {
	if name == "" {
		return PlaceholderPrefix
	}
	b := []byte(name)
	for i, c := range b {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9', c == '_', c == '-':
		default:
			b[i] = '-'
		}
	}
	s := string(b)
	if s[0] >= '0' && s[0] <= '9' {
		s = "_" + s
	}
	return s
}

// directive at-rules that must precede any rule in the output; the
// downstream grammar rejects them after a ruleset.
var directiveNames = []string{"@charset", "@use", "@forward", "@import"}

// partitionDirectives pulls directive lines out of the body,
// preserving their relative order; everything else stays in place.
func partitionDirectives(body string) (directives []string, rest string) {
	var kept []string
	for _, line := range strings.Split(body, "\n") {
		t := strings.TrimSpace(line)
		if isDirectiveLine(t) {
			if !strings.HasSuffix(t, ";") {
				t += ";"
			}
			directives = append(directives, t)
			continue
		}
		kept = append(kept, line)
	}
	return directives, strings.Join(kept, "\n")
}

func isDirectiveLine(t string) bool {
	for _, name := range directiveNames {
		if !strings.HasPrefix(t, name) {
			continue
		}
		if len(t) == len(name) {
			return true
		}
		switch t[len(name)] {
		case ' ', '\t', '"', '\'', '(', ';':
			return true
		}
	}
	return false
}
