package tree_test

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/pathfs/pkg/pathfs/core"
	"github.com/arthur-debert/pathfs/pkg/pathfs/filesystem"
	"github.com/arthur-debert/pathfs/pkg/pathfs/paths"
	"github.com/arthur-debert/pathfs/pkg/pathfs/tree"
)

// sampleTree builds /root with a file a, a directory b holding c, and a
// link d pointing at b.
func sampleTree(t *testing.T) *filesystem.MemFS {
	t.Helper()
	m := filesystem.NewMemFS()
	require.NoError(t, m.MkdirAll("/root/b", 0o755))
	require.NoError(t, m.WriteFile("/root/a", []byte("a"), 0o644))
	require.NoError(t, m.WriteFile("/root/b/c", []byte("c"), 0o644))
	require.NoError(t, m.Symlink("b", "/root/d"))
	return m
}

func TestListTreeOnHostKeepsDirectoryLinksAsLeaves(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "b"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b", "c"), nil, 0o644))
	require.NoError(t, os.Symlink("b", filepath.Join(dir, "d")))

	w := tree.NewWalker(filesystem.NewOSFileSystem(), paths.Native, zerolog.Nop())
	list, err := w.ListTree(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "a", "b", "b/c", "d"}, list)
}

func TestEntriesClassifiesChildren(t *testing.T) {
	m := sampleTree(t)
	require.NoError(t, m.Symlink("a", "/root/e"))
	require.NoError(t, m.Symlink("missing", "/root/f"))

	w := tree.NewWalker(m, paths.Posix, zerolog.Nop())
	entries, err := w.Entries("/root")
	require.NoError(t, err)
	assert.Equal(t, []tree.Entry{
		{Path: "", Kind: tree.Directory},
		{Path: "a", Kind: tree.File},
		{Path: "b", Kind: tree.Directory},
		{Path: "b/c", Kind: tree.File},
		{Path: "d", Kind: tree.SymlinkToDirectory},
		{Path: "e", Kind: tree.File},
		{Path: "f", Kind: tree.File},
	}, entries)
}

func TestListDirectoryTree(t *testing.T) {
	m := sampleTree(t)
	require.NoError(t, m.MkdirAll("/root/b/deep/er", 0o755))

	w := tree.NewWalker(m, paths.Posix, zerolog.Nop())
	list, err := w.ListDirectoryTree("/root")
	require.NoError(t, err)
	assert.Equal(t, []string{"", "b", "b/deep", "b/deep/er", "d"}, list)
}

func TestListTreeEmptyMeansWorkingDirectory(t *testing.T) {
	m := sampleTree(t)
	require.NoError(t, m.Chdir("/root"))

	w := tree.NewWalker(m, paths.Posix, zerolog.Nop())
	fromEmpty, err := w.ListTree("")
	require.NoError(t, err)
	fromRoot, err := w.ListTree("/root")
	require.NoError(t, err)
	assert.Equal(t, fromRoot, fromEmpty)
}

func TestListTreeErrors(t *testing.T) {
	m := sampleTree(t)
	w := tree.NewWalker(m, paths.Posix, zerolog.Nop())

	_, err := w.ListTree("/root/a")
	assert.True(t, errors.Is(err, core.NotADirectory))

	_, err = w.ListTree("/nope")
	assert.True(t, errors.Is(err, core.NotFound))
}

func TestMatch(t *testing.T) {
	m := sampleTree(t)
	require.NoError(t, m.WriteFile("/root/b/notes.md", nil, 0o644))
	w := tree.NewWalker(m, paths.Posix, zerolog.Nop())

	tests := []struct {
		pattern string
		want    []string
	}{
		{"*", []string{"a", "b", "d"}},
		{"**/c", []string{"b/c"}},
		{"**/*.md", []string{"b/notes.md"}},
		{"b/*", []string{"b/c", "b/notes.md"}},
		{"zzz", nil},
	}
	for _, tc := range tests {
		t.Run(tc.pattern, func(t *testing.T) {
			got, err := w.Match("/root", tc.pattern)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := w.Match("/root", "[")
	assert.True(t, errors.Is(err, core.InvalidPath))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "file", tree.File.String())
	assert.Equal(t, "directory", tree.Directory.String())
	assert.Equal(t, "symlink-to-directory", tree.SymlinkToDirectory.String())
}
