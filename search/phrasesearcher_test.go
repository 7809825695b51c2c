package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhraseSearcherFindsLineHits(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"),
		[]byte("nothing here\nthe needle is on line two\nand needle again\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.txt"),
		[]byte("needle\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.txt"),
		[]byte("no hits at all\n"), 0o644))

	hits := NewPhraseSearcher(dir, "needle").Search()
	require.Len(t, hits, 2)

	byPath := map[string]FileHit{}
	for _, hit := range hits {
		byPath[hit.Path] = hit
	}

	a := byPath[filepath.Join(dir, "a.txt")]
	require.Len(t, a.LineHits, 2)
	assert.Equal(t, 2, a.LineHits[0].LineNumber)
	assert.Equal(t, "the needle is on line two", a.LineHits[0].Line)
	assert.Equal(t, 3, a.LineHits[1].LineNumber)

	b := byPath[filepath.Join(dir, "sub", "b.txt")]
	require.Len(t, b.LineHits, 1)
	assert.Equal(t, 1, b.LineHits[0].LineNumber)
}

func TestPhraseSearcherNoHits(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("plain\n"), 0o644))

	hits := NewPhraseSearcher(dir, "absent").Search()
	assert.Empty(t, hits)
}

func TestPhraseSearcherSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "only-dirs", "deeper"), 0o755))

	hits := NewPhraseSearcher(dir, "x").Search()
	assert.Empty(t, hits)
}
