package zcss

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_PutLoad(t *testing.T) {
	r := NewRegistry()
	r.Put("src/box-1a2b3c4d.zcss.css", ".box-1a2b3c4d{color:red;}")

	css, ok := r.Load("src/box-1a2b3c4d.zcss.css")
	require.True(t, ok)
	assert.Equal(t, ".box-1a2b3c4d{color:red;}", css)

	_, ok = r.Load("src/unknown.zcss.css")
	assert.False(t, ok, "unknown ids decline instead of synthesizing content")
}

func TestRegistry_KeyNormalization(t *testing.T) {
	r := NewRegistry()
	r.Put("./src/a.zcss.css", "a")

	css, ok := r.Load("src/a.zcss.css")
	require.True(t, ok)
	assert.Equal(t, "a", css)

	_, ok = r.Load(`src\a.zcss.css`)
	assert.True(t, ok, "backslash paths normalize to the same key")
}

func TestRegistry_ResolveID(t *testing.T) {
	r := NewRegistry()
	r.Put("src/components/box-1a2b3c4d.zcss.css", "x")

	tests := []struct {
		name      string
		specifier string
		importer  string
		wantID    string
		wantOK    bool
	}{
		{
			name:      "relative to importer",
			specifier: "./box-1a2b3c4d.zcss.css",
			importer:  "src/components/App.svelte",
			wantID:    "src/components/box-1a2b3c4d.zcss.css",
			wantOK:    true,
		},
		{
			name:      "parent-relative",
			specifier: "../components/box-1a2b3c4d.zcss.css",
			importer:  "src/pages/Index.tsx",
			wantID:    "src/components/box-1a2b3c4d.zcss.css",
			wantOK:    true,
		},
		{
			name:      "already resolved",
			specifier: "src/components/box-1a2b3c4d.zcss.css",
			importer:  "",
			wantID:    "src/components/box-1a2b3c4d.zcss.css",
			wantOK:    true,
		},
		{
			name:      "unknown declines",
			specifier: "./missing.zcss.css",
			importer:  "src/components/App.svelte",
			wantOK:    false,
		},
		{
			name:      "non-virtual specifier declines",
			specifier: "react",
			importer:  "src/components/App.svelte",
			wantOK:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := r.ResolveID(tt.specifier, tt.importer)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantID, id)
			}
		})
	}
}

func TestRegistry_ClearAndLen(t *testing.T) {
	r := NewRegistry()
	r.Put("a.css", "a")
	r.Put("b.css", "b")
	assert.Equal(t, 2, r.Len())

	r.Clear()
	assert.Equal(t, 0, r.Len())
	_, ok := r.Load("a.css")
	assert.False(t, ok)
}

func TestRegistry_SnapshotIsACopy(t *testing.T) {
	r := NewRegistry()
	r.Put("a.css", "a")

	snap := r.Snapshot()
	snap["a.css"] = "mutated"
	snap["b.css"] = "new"

	css, ok := r.Load("a.css")
	require.True(t, ok)
	assert.Equal(t, "a", css)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_LastWriteWins(t *testing.T) {
	r := NewRegistry()
	r.Put("a.css", "first")
	r.Put("a.css", "second")

	css, _ := r.Load("a.css")
	assert.Equal(t, "second", css)
	assert.Equal(t, 1, r.Len())
}
