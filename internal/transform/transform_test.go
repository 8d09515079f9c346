package transform

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zcss/zcss/internal/cssc"
)

func class(name, body string) string {
	return name + "-" + cssc.ClassHash(body)
}

func TestFile_BasicRewrite(t *testing.T) {
	src := "import { css } from \"zcss\";\nconst box = css`color: red;`;\n"
	res, err := File(context.Background(), "src/App.tsx", src, Options{EvaluateExpressions: true}, nil)
	require.NoError(t, err)

	c := class("box", "color: red;")
	assert.True(t, res.Changed)
	assert.Equal(t, 1, res.Sites)
	assert.Equal(t,
		"import \"./"+c+".zcss.css\";\nconst box = \""+c+"\";\n",
		res.Code)

	require.Len(t, res.Entries, 1)
	assert.Equal(t, "src/"+c+".zcss.css", res.Entries[0].Path)
	assert.Equal(t, "."+c+"{color:red;}", res.Entries[0].CSS)
}

func TestFile_NoStyleImport(t *testing.T) {
	src := "import React from \"react\";\nconst a = 1;\n"
	res, err := File(context.Background(), "src/App.tsx", src, Options{}, nil)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, src, res.Code)
	assert.Empty(t, res.Entries)
}

func TestFile_ImportWithoutSites(t *testing.T) {
	src := "import { css } from \"zcss\";\nconst a = 1;\n"
	res, err := File(context.Background(), "src/App.tsx", src, Options{}, nil)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, src, res.Code, "file is left untouched when nothing is transformed")
}

func TestFile_Composition(t *testing.T) {
	src := "import { css } from \"zcss\";\n" +
		"const box = css`color: red;`;\n" +
		"const link = css`${box} span { color: blue; }`;\n"
	res, err := File(context.Background(), "src/App.tsx", src, Options{EvaluateExpressions: true}, nil)
	require.NoError(t, err)

	c1 := class("box", "color: red;")
	body2 := ":where(." + c1 + ") span { color: blue; }"
	c2 := class("link", body2)

	require.Len(t, res.Entries, 2)
	assert.Equal(t, "."+c1+"{color:red;}", res.Entries[0].CSS)
	assert.Equal(t, "."+c2+" :where(."+c1+") span{color:blue;}", res.Entries[1].CSS)

	assert.Contains(t, res.Code, "const box = \""+c1+"\";")
	assert.Contains(t, res.Code, "const link = \""+c2+"\";")
	assert.True(t, strings.HasPrefix(res.Code,
		"import \"./"+c1+".zcss.css\";\nimport \"./"+c2+".zcss.css\";\n"))
}

func TestFile_CompositionWithoutGuard(t *testing.T) {
	src := "import { css } from \"zcss\";\n" +
		"const box = css`color: red;`;\n" +
		"const link = css`${box} span { color: blue; }`;\n"
	res, err := File(context.Background(), "src/App.tsx", src,
		Options{EvaluateExpressions: true, NoSpecificityGuard: true}, nil)
	require.NoError(t, err)

	c1 := class("box", "color: red;")
	require.Len(t, res.Entries, 2)
	assert.Contains(t, res.Entries[1].CSS, " ."+c1+" span{color:blue;}")
	assert.NotContains(t, res.Entries[1].CSS, ":where(")
}

func TestFile_OuterScopeBindings(t *testing.T) {
	calls := 0
	outer := func(context.Context) (map[string]any, error) {
		calls++
		return map[string]any{"accent": "#f00"}, nil
	}
	src := "import { css } from \"zcss\";\n" +
		"const a = css`color: ${accent};`;\n" +
		"const b = css`background: ${accent};`;\n"
	res, err := File(context.Background(), "src/App.tsx", src, Options{EvaluateExpressions: true}, outer)
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "outer scope is collected once per file")
	require.Len(t, res.Entries, 2)
	assert.Contains(t, res.Entries[0].CSS, "{color:#f00;}")
	assert.Contains(t, res.Entries[1].CSS, "{background:#f00;}")
}

func TestFile_OuterScopeNotLoadedWithoutInterpolations(t *testing.T) {
	calls := 0
	outer := func(context.Context) (map[string]any, error) {
		calls++
		return nil, nil
	}
	src := "import { css } from \"zcss\";\nconst a = css`color: red;`;\n"
	_, err := File(context.Background(), "src/App.tsx", src, Options{EvaluateExpressions: true}, outer)
	require.NoError(t, err)
	assert.Equal(t, 0, calls)
}

func TestFile_ClassBindingShadowsOuter(t *testing.T) {
	outer := func(context.Context) (map[string]any, error) {
		return map[string]any{"box": "outer-value"}, nil
	}
	src := "import { css } from \"zcss\";\n" +
		"const box = css`color: red;`;\n" +
		"const link = css`${box} { color: blue; }`;\n"
	res, err := File(context.Background(), "src/App.tsx", src, Options{EvaluateExpressions: true}, outer)
	require.NoError(t, err)

	c1 := class("box", "color: red;")
	require.Len(t, res.Entries, 2)
	assert.Contains(t, res.Entries[1].CSS, ":where(."+c1+")",
		"the generated binding wins over the outer one")
}

func TestFile_DuplicateAliasRewritesEverySite(t *testing.T) {
	src := "import { css, css as c } from \"zcss\";\n" +
		"const a = css`color: red;`;\n" +
		"const b = c`color: blue;`;\n"
	res, err := File(context.Background(), "src/App.tsx", src, Options{EvaluateExpressions: true}, nil)
	require.NoError(t, err)

	ca := class("a", "color: red;")
	cb := class("b", "color: blue;")
	assert.Equal(t,
		"import \"./"+ca+".zcss.css\";\nimport \"./"+cb+".zcss.css\";\n"+
			"const a = \""+ca+"\";\nconst b = \""+cb+"\";\n",
		res.Code, "no tagged site may survive once the import is deleted")
	assert.Len(t, res.Entries, 2)
}

func TestFile_AnonymousSite(t *testing.T) {
	src := "import { css } from \"zcss\";\nrender(css`color: red;`);\n"
	res, err := File(context.Background(), "src/App.tsx", src, Options{EvaluateExpressions: true}, nil)
	require.NoError(t, err)

	c := class("zc", "color: red;")
	assert.Contains(t, res.Code, "render(\""+c+"\");")
}

func TestFile_SubExpressionSiteUsesPlaceholder(t *testing.T) {
	src := "import { css } from \"zcss\";\nconst w = css`color: red;` + extra;\n"
	res, err := File(context.Background(), "src/App.tsx", src, Options{EvaluateExpressions: true}, nil)
	require.NoError(t, err)

	// The template is only part of the initializer, so the declared
	// name is not trusted for the class prefix.
	c := class("zc", "color: red;")
	assert.Contains(t, res.Code, "const w = \""+c+"\" + extra;")
}

func TestFile_SCSSDialect(t *testing.T) {
	src := "import { scss } from \"zcss\";\nconst a = scss`// note\ncolor: red;`;\n"
	res, err := File(context.Background(), "src/App.tsx", src, Options{EvaluateExpressions: true}, nil)
	require.NoError(t, err)

	c := class("a", "// note\ncolor: red;")
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "src/"+c+".zcss.scss", res.Entries[0].Path)
	assert.Equal(t, "."+c+"{color:red;}", res.Entries[0].CSS)
	assert.Contains(t, res.Code, "import \"./"+c+".zcss.scss\";")
}

func TestFile_EvaluationDisabledPassesThrough(t *testing.T) {
	src := "import { css } from \"zcss\";\nconst a = css`color: ${x};`;\n"
	res, err := File(context.Background(), "src/App.tsx", src, Options{}, nil)
	require.NoError(t, err)

	// The literal text, marker included, is hashed as-is.
	c := class("a", "color: ${x};")
	assert.Contains(t, res.Code, "const a = \""+c+"\";")
}

func TestFile_SiteErrorAbortsFile(t *testing.T) {
	src := "import { css } from \"zcss\";\nconst a = css`color: ${missing};`;\n"
	_, err := File(context.Background(), "src/App.tsx", src, Options{EvaluateExpressions: true}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "src/App.tsx")
	assert.Contains(t, err.Error(), "site 1 (a)")
	assert.Contains(t, err.Error(), "missing")
}

func TestFile_CustomTagPackage(t *testing.T) {
	src := "import { css } from \"@acme/styled\";\nconst a = css`color: red;`;\n"

	res, err := File(context.Background(), "src/App.tsx", src, Options{TagPackage: "@acme/styled"}, nil)
	require.NoError(t, err)
	assert.True(t, res.Changed)

	res, err = File(context.Background(), "src/App.tsx", src, Options{}, nil)
	require.NoError(t, err)
	assert.False(t, res.Changed, "default package does not match")
}

func TestFile_SvelteImportPlacement(t *testing.T) {
	src := "<script>\nimport { css } from \"zcss\";\nconst box = css`color: red;`;\n</script>\n<div></div>\n"
	res, err := File(context.Background(), "src/App.svelte", src, Options{EvaluateExpressions: true}, nil)
	require.NoError(t, err)

	c := class("box", "color: red;")
	assert.Equal(t,
		"<script>\nimport \"./"+c+".zcss.css\";\nconst box = \""+c+"\";\n</script>\n<div></div>\n",
		res.Code)
}

func TestFile_AstroImportPlacement(t *testing.T) {
	src := "---\nimport { css } from \"zcss\";\nconst box = css`color: red;`;\n---\n<div></div>\n"
	res, err := File(context.Background(), "src/App.astro", src, Options{EvaluateExpressions: true}, nil)
	require.NoError(t, err)

	c := class("box", "color: red;")
	assert.Equal(t,
		"---\nimport \"./"+c+".zcss.css\";\nconst box = \""+c+"\";\n---\n<div></div>\n",
		res.Code)
}

func TestScriptRegion(t *testing.T) {
	tests := []struct {
		name string
		path string
		src  string
		want string // the extracted region
	}{
		{
			name: "plain script is the whole file",
			path: "src/a.ts",
			src:  "const a = 1;\n",
			want: "const a = 1;\n",
		},
		{
			name: "svelte script body",
			path: "src/App.svelte",
			src:  "<script lang=\"ts\">\nconst a = 1;\n</script>\n<div></div>\n",
			want: "\nconst a = 1;\n",
		},
		{
			name: "markup without script is empty",
			path: "src/App.vue",
			src:  "<template><div>hi</div></template>\n",
			want: "",
		},
		{
			name: "astro frontmatter body",
			path: "src/App.astro",
			src:  "---\nconst a = 1;\n---\n<div></div>\n",
			want: "const a = 1;\n",
		},
		{
			name: "astro without frontmatter is empty",
			path: "src/App.astro",
			src:  "<div></div>\n",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := ScriptRegion(tt.path, tt.src)
			assert.Equal(t, tt.want, tt.src[lo:hi])
		})
	}
}

func TestFile_MarkupOutsideScriptNeverLexed(t *testing.T) {
	// The template body would break a JavaScript lexer: closing tags
	// read like regular expressions and the apostrophe like an open
	// string.
	src := "<script>\nimport { css } from \"zcss\";\nconst box = css`color: red;`;\n</script>\n" +
		"<template>\n<div class=\"x\">don't / won't</div>\n</template>\n"
	res, err := File(context.Background(), "src/App.vue", src, Options{EvaluateExpressions: true}, nil)
	require.NoError(t, err)

	c := class("box", "color: red;")
	assert.Contains(t, res.Code, "const box = \""+c+"\";")
	assert.Contains(t, res.Code, "<div class=\"x\">don't / won't</div>")
}

func TestFile_MarkupWithoutImportIsIdentity(t *testing.T) {
	tests := []struct {
		name string
		path string
		src  string
	}{
		{
			name: "svelte without style import",
			path: "src/Plain.svelte",
			src:  "<script>\nlet n = 0;\n</script>\n<button on:click={() => n++}>{n}</button>\n",
		},
		{
			name: "html without script element",
			path: "src/index.html",
			src:  "<!DOCTYPE html>\n<body><p>it's fine</p></body>\n",
		},
		{
			name: "astro markup only",
			path: "src/Hero.astro",
			src:  "<section><h1>hi / there</h1></section>\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := File(context.Background(), tt.path, tt.src, Options{}, nil)
			require.NoError(t, err)
			assert.False(t, res.Changed)
			assert.Equal(t, tt.src, res.Code)
		})
	}
}

func TestFile_SourceMap(t *testing.T) {
	src := "import { css } from \"zcss\";\nconst box = css`color: red;`;\n"
	res, err := File(context.Background(), "src/App.tsx", src,
		Options{EvaluateExpressions: true, SourceMaps: true}, nil)
	require.NoError(t, err)
	require.NotNil(t, res.Map)

	var m struct {
		Version  int      `json:"version"`
		File     string   `json:"file"`
		Sources  []string `json:"sources"`
		Mappings string   `json:"mappings"`
	}
	require.NoError(t, json.Unmarshal(res.Map, &m))
	assert.Equal(t, 3, m.Version)
	assert.Equal(t, "App.tsx", m.File)
	assert.Equal(t, []string{"src/App.tsx"}, m.Sources)
	assert.NotEmpty(t, m.Mappings)
}

func TestFile_Deterministic(t *testing.T) {
	src := "import { css } from \"zcss\";\nconst box = css`color: red;`;\n"
	a, err := File(context.Background(), "src/A.tsx", src, Options{EvaluateExpressions: true}, nil)
	require.NoError(t, err)
	b, err := File(context.Background(), "src/B.tsx", src, Options{EvaluateExpressions: true}, nil)
	require.NoError(t, err)

	// Same content in a different file: same class, same stylesheet.
	assert.Equal(t, a.Code, b.Code)
	assert.Equal(t, a.Entries[0].CSS, b.Entries[0].CSS)
}
