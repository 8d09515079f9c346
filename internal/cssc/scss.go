package cssc

import "strings"

// stripLineComments removes SCSS '//' comments up to end of line,
// leaving strings and block comments intact. The CSS lexer does not
// accept silent comments, so they are erased before tokenizing.
func stripLineComments(src string) string {
	if !strings.Contains(src, "//") {
		return src
	}
	var b strings.Builder
	b.Grow(len(src))
	var inStr byte
	inBlock := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case inBlock:
			b.WriteByte(c)
			if c == '*' && i+1 < len(src) && src[i+1] == '/' {
				b.WriteByte('/')
				i++
				inBlock = false
			}
		case inStr != 0:
			b.WriteByte(c)
			if c == '\\' && i+1 < len(src) {
				b.WriteByte(src[i+1])
				i++
			} else if c == inStr {
				inStr = 0
			}
		case c == '"' || c == '\'':
			inStr = c
			b.WriteByte(c)
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			if i < len(src) {
				b.WriteByte('\n')
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			inBlock = true
			b.WriteString("/*")
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
