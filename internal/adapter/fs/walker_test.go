package fs

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codechunk/internal/domain"
)

func TestWalker_Walk(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"main.go",
		"pkg/util/strings.go",
		"pkg/util/strings_test.go",
		"web/app.tsx",
		"web/node_modules/react/index.js",
		"docs/guide.md",
		"contracts/Token.sol",
	} {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	}

	w := NewWalker(
		[]string{"**/*.go", "**/*.tsx", "**/*.js", "**/*.md"},
		[]string{"**/node_modules/**", "**/*_test.go"},
	)
	files, err := w.Walk(root)
	require.NoError(t, err)

	var rels []string
	langs := make(map[string]domain.Language)
	for _, f := range files {
		rel, err := filepath.Rel(root, f.Path)
		require.NoError(t, err)
		rel = filepath.ToSlash(rel)
		rels = append(rels, rel)
		langs[rel] = f.Language
		assert.Equal(t, int64(1), f.Size)
	}
	sort.Strings(rels)
	assert.Equal(t, []string{"main.go", "pkg/util/strings.go", "web/app.tsx"}, rels)
	assert.Equal(t, domain.LangTypeScript, langs["web/app.tsx"])
}

func TestWalker_Match(t *testing.T) {
	w := NewWalker(nil, []string{"vendor/**"})

	assert.True(t, w.Match("a/b/c.py"))
	assert.True(t, w.Match("lib.rs"))
	assert.False(t, w.Match("vendor/x/y.go"))
	assert.False(t, w.Match("notes.txt"))
}

func TestReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0600))

	var r Reader
	text, err := r.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "x = 1\n", text)

	require.NoError(t, r.WriteFile(path, "x = 2\n"))
	text, err = r.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x = 2\n", text)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, err = r.Load(filepath.Join(t.TempDir(), "missing.py"))
	assert.Error(t, err)
}
