package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectImports(t *testing.T) {
	tests := []struct {
		name         string
		src          string
		wantBindings map[string]Role
		wantSpans    int
	}{
		{
			name:         "css only",
			src:          `import { css } from "zcss";`,
			wantBindings: map[string]Role{"css": RoleCSS},
			wantSpans:    1,
		},
		{
			name:         "both tags one statement",
			src:          `import { css, scss } from "zcss";`,
			wantBindings: map[string]Role{"css": RoleCSS, "scss": RoleSCSS},
			wantSpans:    1,
		},
		{
			name:         "aliased import binds the alias",
			src:          `import { css as style } from "zcss";`,
			wantBindings: map[string]Role{"style": RoleCSS},
			wantSpans:    1,
		},
		{
			name:         "same tag under two locals",
			src:          `import { css, css as c } from "zcss";`,
			wantBindings: map[string]Role{"css": RoleCSS, "c": RoleCSS},
			wantSpans:    1,
		},
		{
			name:         "single quotes",
			src:          `import { scss } from 'zcss';`,
			wantBindings: map[string]Role{"scss": RoleSCSS},
			wantSpans:    1,
		},
		{
			name:         "two statements",
			src:          "import { css } from \"zcss\";\nimport { scss as s } from \"zcss\";",
			wantBindings: map[string]Role{"css": RoleCSS, "s": RoleSCSS},
			wantSpans:    2,
		},
		{
			name:         "other package ignored",
			src:          `import { css } from "other-lib";`,
			wantBindings: map[string]Role{},
			wantSpans:    0,
		},
		{
			name:         "unrecognized names ignored",
			src:          `import { keyframes } from "zcss";`,
			wantBindings: map[string]Role{},
			wantSpans:    1,
		},
		{
			name:         "side-effect import still deleted",
			src:          `import "zcss";`,
			wantBindings: map[string]Role{},
			wantSpans:    1,
		},
		{
			name:         "dynamic import ignored",
			src:          `const m = import("zcss");`,
			wantBindings: map[string]Role{},
			wantSpans:    0,
		},
		{
			name:         "import.meta ignored",
			src:          `const u = import.meta.url;`,
			wantBindings: map[string]Role{},
			wantSpans:    0,
		},
		{
			name:         "mixed with unrelated imports",
			src:          "import React from \"react\";\nimport { css } from \"zcss\";\nimport x from \"./x\";",
			wantBindings: map[string]Role{"css": RoleCSS},
			wantSpans:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			im, err := DetectImports(tt.src, "zcss")
			require.NoError(t, err)
			assert.Equal(t, tt.wantBindings, im.Bindings)
			assert.Len(t, im.Spans, tt.wantSpans)
		})
	}
}

func TestDetectImports_CustomPackage(t *testing.T) {
	src := `import { css } from "@acme/styled";`
	im, err := DetectImports(src, "@acme/styled")
	require.NoError(t, err)
	assert.Equal(t, map[string]Role{"css": RoleCSS}, im.Bindings)

	im, err = DetectImports(src, "zcss")
	require.NoError(t, err)
	assert.True(t, im.Empty())
}

func TestDetectImports_SpanCoversStatement(t *testing.T) {
	src := "const a = 1;\nimport { css } from \"zcss\";\nconst b = 2;\n"
	im, err := DetectImports(src, "zcss")
	require.NoError(t, err)
	require.Len(t, im.Spans, 1)

	span := im.Spans[0]
	assert.Equal(t, "import { css } from \"zcss\";\n", src[span.Start:span.End],
		"span includes the trailing semicolon and line break")
}

func TestStatementEnd(t *testing.T) {
	src := `import { css } from "zcss"  ;` + "\r\nnext"
	end := statementEnd(src, len(`import { css } from "zcss"`))
	assert.Equal(t, "next", src[end:], "consumes spaces, semicolon and CRLF")
}
