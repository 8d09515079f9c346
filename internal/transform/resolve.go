package transform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	tjs "github.com/tdewolff/parse/v2/js"

	"github.com/zcss/zcss/internal/js"
)

// EvalEnv is the binding environment an interpolation is evaluated
// against. Evaluation is delegated to expr-lang over a closed
// expression grammar; environments carry only data and side-effect
// free functions, so evaluation is deterministic and unreferenced
// bindings are never touched.
type EvalEnv map[string]any

// LayerEnv builds the evaluation environment for a site: generated
// class bindings are overlaid on the outer-scope bindings so that a
// class binding shadows an outer binding of the same name. The
// precedence is a correctness requirement: style composition must
// reference the generated selector, not an unrelated outer variable.
func LayerEnv(outer map[string]any, classes map[string]string) EvalEnv {
	env := make(EvalEnv, len(outer)+len(classes))
	for k, v := range outer {
		env[k] = v
	}
	for k, v := range classes {
		env[k] = v
	}
	return env
}

// ResolveTemplate turns a template's raw text (with delimiters and
// interpolation markers) into plain CSS text by evaluating each
// interpolation against env. Any failure is returned with the
// offending expression text and is fatal for the file's transform.
func ResolveTemplate(raw string, env EvalEnv) (string, error) {
	chunks, exprs, err := SplitTemplate(raw)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for i, chunk := range chunks {
		b.WriteString(chunk)
		if i < len(exprs) {
			val, err := evalExpr(exprs[i], env)
			if err != nil {
				return "", err
			}
			b.WriteString(val)
		}
	}
	return b.String(), nil
}

// Literal returns the template's literal text minus delimiters, used
// when a site has no interpolations or evaluation is disabled.
func Literal(raw string) string {
	raw = strings.TrimPrefix(raw, "`")
	raw = strings.TrimSuffix(raw, "`")
	return unescapeChunk(raw)
}

// SplitTemplate splits a raw template literal into its literal chunks
// and interpolation expression sources: chunks[0] ${exprs[0]}
// chunks[1] ... chunks[n]. len(chunks) == len(exprs)+1.
func SplitTemplate(raw string) (chunks, exprs []string, err error) {
	r := js.NewReader(raw)
	tok, ok := r.Next()
	if !ok {
		return nil, nil, fmt.Errorf("empty template text")
	}
	switch tok.Type {
	case tjs.TemplateToken:
		return []string{cookChunk(tok.Text)}, nil, nil
	case tjs.TemplateStartToken:
	default:
		return nil, nil, fmt.Errorf("template text does not start with a template literal")
	}
	chunks = append(chunks, cookChunk(tok.Text))
	depth := 1
	exprStart := tok.End
	for {
		t, more := r.Next()
		if !more {
			if err := r.Err(); err != nil {
				return nil, nil, err
			}
			return nil, nil, fmt.Errorf("unterminated template literal")
		}
		switch t.Type {
		case tjs.TemplateStartToken:
			depth++
		case tjs.TemplateMiddleToken:
			if depth == 1 {
				exprs = append(exprs, raw[exprStart:t.Start])
				chunks = append(chunks, cookChunk(t.Text))
				exprStart = t.End
			}
		case tjs.TemplateEndToken:
			depth--
			if depth == 0 {
				exprs = append(exprs, raw[exprStart:t.Start])
				chunks = append(chunks, cookChunk(t.Text))
				return chunks, exprs, nil
			}
		}
	}
}

// cookChunk strips the template delimiters surrounding a literal
// chunk token: `...${ or }...${ or }...` or `...`.
func cookChunk(text string) string {
	if strings.HasPrefix(text, "`") || strings.HasPrefix(text, "}") {
		text = text[1:]
	}
	if strings.HasSuffix(text, "${") {
		text = text[:len(text)-2]
	} else if strings.HasSuffix(text, "`") {
		text = text[:len(text)-1]
	}
	return unescapeChunk(text)
}

// unescapeChunk resolves the escapes authors need inside CSS template
// text; other sequences pass through untouched.
func unescapeChunk(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '`', '$', '\\':
				b.WriteByte(s[i+1])
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func evalExpr(src string, env EvalEnv) (string, error) {
	code := strings.TrimSpace(src)
	prg, err := expr.Compile(code, expr.Env(map[string]any(env)))
	if err != nil {
		return "", fmt.Errorf("compiling expression ${%s}: %w", code, err)
	}
	out, err := expr.Run(prg, map[string]any(env))
	if err != nil {
		return "", fmt.Errorf("evaluating expression ${%s}: %w", code, err)
	}
	return stringify(out, code)
}

// stringify renders an evaluation result the way template
// interpolation would; anything without a text form is an error.
func stringify(v any, code string) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10), nil
		}
		return strconv.FormatFloat(val, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("expression ${%s} evaluated to %T, want string", code, v)
	}
}
