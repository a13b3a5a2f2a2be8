package crunch

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashBytes(t *testing.T) {
	// FNV-1a 64 reference values.
	assert.Equal(t, uint64(0xcbf29ce484222325), HashBytes(nil))
	assert.Equal(t, uint64(0xaf63dc4c8601ec8c), HashBytes([]byte("a")))
}

func TestCombine(t *testing.T) {
	assert.Equal(t, uint64(5+0x9e3779b9), Combine(0, 5))
	assert.NotEqual(t, Combine(1, 5), Combine(2, 5))

	// Order of contributors matters.
	a := HashString(HashString(0, "x"), "y")
	b := HashString(HashString(0, "y"), "x")
	assert.NotEqual(t, a, b)
}

func TestHashFiles_SortedTraversal(t *testing.T) {
	dir := t.TempDir()
	// Written out of name order; hashing must still visit a before b.
	writePng(t, filepath.Join(dir, "b.png"), fillImage(2, 2, color.NRGBA{G: 0xff, A: 0xff}))
	writePng(t, filepath.Join(dir, "sub", "c.png"), fillImage(2, 2, color.NRGBA{B: 0xff, A: 0xff}))
	writePng(t, filepath.Join(dir, "a.png"), fillImage(2, 2, color.NRGBA{R: 0xff, A: 0xff}))

	got, err := HashFiles(7, dir)
	require.NoError(t, err)

	want := uint64(7)
	for _, name := range []string{"a.png", "b.png", filepath.Join("sub", "c.png")} {
		want, err = HashFile(want, filepath.Join(dir, name))
		require.NoError(t, err)
	}
	assert.Equal(t, want, got)
}

func TestLoadSaveHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atlas.hash")

	_, ok := LoadHash(path)
	assert.False(t, ok)

	require.NoError(t, SaveHash(1234567890123456789, path))

	// Persisted as decimal ASCII.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1234567890123456789", string(data))

	hash, ok := LoadHash(path)
	require.True(t, ok)
	assert.Equal(t, uint64(1234567890123456789), hash)
}

func TestLoadHash_Garbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atlas.hash")
	require.NoError(t, os.WriteFile(path, []byte("not a number"), 0644))

	_, ok := LoadHash(path)
	assert.False(t, ok)
}
