package transform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cssOnly = map[string]Role{"css": RoleCSS}

func TestLocateTemplates(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		bindings  map[string]Role
		wantNames []string // declared name per site, in source order
	}{
		{
			name:      "const declaration",
			src:       "const box = css`color: red;`;",
			bindings:  cssOnly,
			wantNames: []string{"box"},
		},
		{
			name:      "let and var declarations",
			src:       "let a = css`x`; var b = css`y`;",
			bindings:  cssOnly,
			wantNames: []string{"a", "b"},
		},
		{
			name:      "object property",
			src:       "const styles = { box: css`color: red;`, row: css`display: flex;` };",
			bindings:  cssOnly,
			wantNames: []string{"box", "row"},
		},
		{
			name:      "call argument is anonymous",
			src:       "render(css`color: red;`);",
			bindings:  cssOnly,
			wantNames: []string{""},
		},
		{
			name:      "export const declaration",
			src:       "export const box = css`color: red;`;",
			bindings:  cssOnly,
			wantNames: []string{"box"},
		},
		{
			name:      "initializer sub-expression stays anonymous",
			src:       "const w = css`a` + y;",
			bindings:  cssOnly,
			wantNames: []string{""},
		},
		{
			name:      "interpolated sub-expression stays anonymous",
			src:       "const w = css`w: ${x};` + suffix;",
			bindings:  cssOnly,
			wantNames: []string{""},
		},
		{
			name:      "method call on the template stays anonymous",
			src:       "const w = css`a`.toUpperCase();",
			bindings:  cssOnly,
			wantNames: []string{""},
		},
		{
			name:      "name survives end of input",
			src:       "const box = css`color: red;`",
			bindings:  cssOnly,
			wantNames: []string{"box"},
		},
		{
			name:      "name survives a bare line break",
			src:       "const box = css`color: red;`\nrender()",
			bindings:  cssOnly,
			wantNames: []string{"box"},
		},
		{
			name:      "member access is not the tag",
			src:       "const a = obj.css`color: red;`;",
			bindings:  cssOnly,
			wantNames: nil,
		},
		{
			name:      "untagged template ignored",
			src:       "const a = `color: red;`;",
			bindings:  cssOnly,
			wantNames: nil,
		},
		{
			name:      "unbound identifier ignored",
			src:       "const a = styled`color: red;`;",
			bindings:  cssOnly,
			wantNames: nil,
		},
		{
			name:      "aliased binding recognized",
			src:       "const a = style`color: red;`;",
			bindings:  map[string]Role{"style": RoleCSS},
			wantNames: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sites, err := LocateTemplates(tt.src, tt.bindings)
			require.NoError(t, err)
			var names []string
			for _, s := range sites {
				names = append(names, s.Name)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestLocateTemplates_SpansAndRawText(t *testing.T) {
	src := "const box = css`color: red;`;"
	sites, err := LocateTemplates(src, cssOnly)
	require.NoError(t, err)
	require.Len(t, sites, 1)

	site := sites[0]
	assert.Equal(t, "css`color: red;`", src[site.Start:site.End],
		"span covers the tag through the closing backtick")
	assert.Equal(t, "`color: red;`", site.RawText)
	assert.Equal(t, 0, site.Interps)
	assert.Equal(t, RoleCSS, site.Role)
}

func TestLocateTemplates_InterpolationCount(t *testing.T) {
	src := "const a = css`w: ${x}px; h: ${y}px; c: ${z};`;"
	sites, err := LocateTemplates(src, cssOnly)
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, 3, sites[0].Interps)
	assert.True(t, strings.HasPrefix(sites[0].RawText, "`w:"))
	assert.True(t, strings.HasSuffix(sites[0].RawText, "`"))
}

func TestLocateTemplates_NestedTemplates(t *testing.T) {
	// The inner tagged template sits inside the outer's interpolation;
	// sites come back in source order, outer first.
	src := "const outer = css`${css`color: red;`} span { margin: 0; }`;"
	sites, err := LocateTemplates(src, cssOnly)
	require.NoError(t, err)
	require.Len(t, sites, 2)
	assert.Equal(t, "outer", sites[0].Name)
	assert.Equal(t, 1, sites[0].Interps)
	assert.Equal(t, "", sites[1].Name)
	assert.Equal(t, 0, sites[1].Interps)
	assert.Less(t, sites[0].Start, sites[1].Start)
}

func TestLocateTemplates_RolePerBinding(t *testing.T) {
	src := "const a = css`x`; const b = scss`y`;"
	sites, err := LocateTemplates(src, map[string]Role{"css": RoleCSS, "scss": RoleSCSS})
	require.NoError(t, err)
	require.Len(t, sites, 2)
	assert.Equal(t, RoleCSS, sites[0].Role)
	assert.Equal(t, RoleSCSS, sites[1].Role)
}
