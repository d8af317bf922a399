//go:build unix

package filesystem_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/pathfs/pkg/pathfs/filesystem"
)

func TestOSFileSystemUmaskIsRestored(t *testing.T) {
	osfs := filesystem.NewOSFileSystem()

	first, ok := osfs.Umask()
	require.True(t, ok)
	second, ok := osfs.Umask()
	require.True(t, ok)
	assert.Equal(t, first, second)
}

func TestOSFileSystemChmodKeepsSpecialBits(t *testing.T) {
	dir := t.TempDir()
	osfs := filesystem.NewOSFileSystem()
	name := filepath.Join(dir, "sticky")
	require.NoError(t, osfs.Mkdir(name, 0o755))

	require.NoError(t, osfs.Chmod(name, 0o1777))
	id, err := osfs.Identify(name)
	require.NoError(t, err)
	assert.Equal(t, filesystem.ModeDir|0o1777, id.Mode)
}

func TestOSFileSystemReadDirNamesAndCopy(t *testing.T) {
	dir := t.TempDir()
	osfs := filesystem.NewOSFileSystem()
	for _, name := range []string{"b", "a", "c"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o640))
	}

	names, err := osfs.ReadDirNames(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names)

	dst := filepath.Join(dir, "copy")
	require.NoError(t, osfs.CopyFile(filepath.Join(dir, "a"), dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))

	src, err := osfs.Identify(filepath.Join(dir, "a"))
	require.NoError(t, err)
	cp, err := osfs.Identify(dst)
	require.NoError(t, err)
	assert.False(t, src.SameFile(cp))
	assert.Equal(t, src.Device, cp.Device)

	assert.Error(t, osfs.CopyFile(dir, filepath.Join(dir, "dir-copy")))
}

func TestOSFileSystemCanonical(t *testing.T) {
	dir := t.TempDir()
	osfs := filesystem.NewOSFileSystem()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "real"), 0o755))
	require.NoError(t, os.Symlink("real", filepath.Join(dir, "link")))

	want, err := filepath.EvalSymlinks(filepath.Join(dir, "real"))
	require.NoError(t, err)
	got, err := osfs.Canonical(filepath.Join(dir, "link"))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
