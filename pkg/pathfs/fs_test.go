package pathfs_test

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/pathfs/pkg/pathfs"
	"github.com/arthur-debert/pathfs/pkg/pathfs/core"
	"github.com/arthur-debert/pathfs/pkg/pathfs/filesystem"
	"github.com/arthur-debert/pathfs/pkg/pathfs/permissions"
)

func newFS(t *testing.T, opts ...pathfs.Option) (*pathfs.FS, *filesystem.MemFS) {
	t.Helper()
	mem := filesystem.NewMemFS()
	require.NoError(t, mem.MkdirAll("/home/u/b", 0o755))
	require.NoError(t, mem.WriteFile("/home/u/a.txt", []byte("hello"), 0o644))
	require.NoError(t, mem.WriteFile("/home/u/b/c", []byte("c"), 0o644))
	require.NoError(t, mem.Symlink("b", "/home/u/d"))
	require.NoError(t, mem.Chdir("/home/u"))

	var buf bytes.Buffer
	opts = append([]pathfs.Option{pathfs.WithLogger(pathfs.NewTestLogger(&buf, 0))}, opts...)
	return pathfs.New(mem, opts...), mem
}

func TestDefaultPermissionsComeFromUmask(t *testing.T) {
	f, _ := newFS(t)
	assert.Equal(t, uint32(0o755), f.DefaultPermissions().ToNumber())

	mem := filesystem.NewMemFS()
	mem.SetUmask(0o077, true)
	assert.Equal(t, uint32(0o700), pathfs.New(mem).DefaultPermissions().ToNumber())

	mem.SetUmask(0, false)
	assert.Equal(t, permissions.FallbackMode, pathfs.New(mem).DefaultPermissions().ToNumber())

	custom := permissions.FromMode(0o750)
	assert.Equal(t, custom, pathfs.New(mem, pathfs.WithDefaultPermissions(custom)).DefaultPermissions())
}

func TestPathOperationsUseWorkingDirectory(t *testing.T) {
	f, _ := newFS(t)

	wd, err := f.WorkingDirectory()
	require.NoError(t, err)
	assert.Equal(t, "/home/u/", wd)

	abs, err := f.Absolute("x/../y")
	require.NoError(t, err)
	assert.Equal(t, "/home/u/y", abs)

	rel, err := f.Relative("/home/u/b/c")
	require.NoError(t, err)
	assert.Equal(t, "b/c", rel)

	rel, err = f.Relative("b/c", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "../a.txt", rel)

	require.NoError(t, f.ChangeWorkingDirectory("/home"))
	rel, err = f.Relative("/home/u/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "u/a.txt", rel)

	err = f.ChangeWorkingDirectory("/missing")
	assert.True(t, errors.Is(err, core.NotFound))
}

func TestMetadata(t *testing.T) {
	f, mem := newFS(t)

	assert.True(t, f.Exists("a.txt"))
	assert.False(t, f.Exists("nope"))
	assert.True(t, f.IsFile("a.txt"))
	assert.False(t, f.IsFile("b"))
	assert.True(t, f.IsDirectory("d"))
	assert.True(t, f.IsLink("d"))
	assert.False(t, f.IsLink("b"))
	assert.True(t, f.IsReadable("a.txt"))
	assert.True(t, f.IsWritable("a.txt"))

	size, err := f.Size("a.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)

	_, err = f.Size("nope")
	assert.True(t, errors.Is(err, core.NotFound))

	mtime := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, f.Touch("a.txt", mtime))
	got, err := f.LastModified("a.txt")
	require.NoError(t, err)
	assert.True(t, mtime.Equal(got))

	same, err := f.Same("d/c", "b/c")
	require.NoError(t, err)
	assert.True(t, same)
	same, err = f.Same("a.txt", "b/c")
	require.NoError(t, err)
	assert.False(t, same)

	sameFS, err := f.SameFilesystem("a.txt", "/")
	require.NoError(t, err)
	assert.True(t, sameFS)

	owner, err := f.Owner("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "user", owner)

	require.NoError(t, mem.Chown("a.txt", -1, 4242))
	group, err := f.Group("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "4242", group)

	names, err := f.List(".")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b", "d"}, names)

	_, err = f.List("a.txt")
	assert.True(t, errors.Is(err, core.NotADirectory))
}

func TestChangePermissionsPreservesSpecialBits(t *testing.T) {
	f, mem := newFS(t)
	require.NoError(t, mem.Chmod("a.txt", 0o4755))

	require.NoError(t, f.ChangePermissions("a.txt", permissions.FromMode(0o640)))
	mode, err := f.Mode("a.txt")
	require.NoError(t, err)
	assert.Equal(t, filesystem.ModeRegular|0o4640, mode)

	no := false
	require.NoError(t, f.UpdatePermissions("a.txt", permissions.Partial{Owner: &permissions.PartialRole{Write: &no}}))
	p, err := f.Permissions("a.txt")
	require.NoError(t, err)
	assert.Equal(t, uint32(0o440), p.ToNumber())
	mode, err = f.Mode("a.txt")
	require.NoError(t, err)
	assert.Equal(t, filesystem.ModeRegular|0o4440, mode)
}

func TestOwnershipChanges(t *testing.T) {
	f, mem := newFS(t)
	mem.SetIdentity(0, 0)
	mem.AddUser(42, "alice")
	mem.AddGroup(7, "staff")

	require.NoError(t, f.ChangeOwner("a.txt", "alice"))
	require.NoError(t, f.ChangeGroup("a.txt", "staff"))
	id, err := mem.Identify("a.txt")
	require.NoError(t, err)
	assert.Equal(t, 42, id.UID)
	assert.Equal(t, 7, id.GID)

	require.NoError(t, f.ChangeOwner("a.txt", "1000"))
	owner, err := f.Owner("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "user", owner)

	err = f.ChangeOwner("a.txt", "nobody-here")
	assert.True(t, errors.Is(err, core.InvalidPath))
}

func TestMutations(t *testing.T) {
	f, mem := newFS(t)

	require.NoError(t, f.MakeDirectory("new", nil))
	p, err := f.Permissions("new")
	require.NoError(t, err)
	assert.Equal(t, uint32(0o755), p.ToNumber())

	private := permissions.FromMode(0o700)
	require.NoError(t, f.MakeDirectory("private", &private))
	p, err = f.Permissions("private")
	require.NoError(t, err)
	assert.Equal(t, uint32(0o700), p.ToNumber())

	err = f.MakeDirectory("new", nil)
	assert.True(t, errors.Is(err, core.AlreadyExists))

	require.NoError(t, f.Copy("a.txt", "new/a.txt"))
	data, err := mem.ReadFile("new/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	err = f.Copy("b", "b2")
	assert.True(t, errors.Is(err, core.IsADirectory))

	require.NoError(t, f.Move("new/a.txt", "moved.txt"))
	assert.False(t, f.Exists("new/a.txt"))
	assert.True(t, f.IsFile("moved.txt"))

	require.NoError(t, f.SymbolicLink("moved.txt", "link"))
	target, err := f.ReadLink("link")
	require.NoError(t, err)
	assert.Equal(t, "moved.txt", target)

	_, err = f.ReadLink("moved.txt")
	assert.True(t, errors.Is(err, core.InvalidPath))

	require.NoError(t, f.HardLink("moved.txt", "hard"))
	same, err := f.Same("hard", "moved.txt")
	require.NoError(t, err)
	assert.True(t, same)

	err = f.Remove("b")
	assert.True(t, errors.Is(err, core.IsADirectory))
	require.NoError(t, f.Remove("link"))
	assert.True(t, f.Exists("moved.txt"))

	err = f.RemoveDirectory("moved.txt")
	assert.True(t, errors.Is(err, core.NotADirectory))
	err = f.RemoveDirectory("b")
	assert.True(t, errors.Is(err, core.RemoveFailed))
	require.NoError(t, f.RemoveDirectory("new"))

	require.NoError(t, f.Touch("fresh", time.Time{}))
	assert.True(t, f.IsFile("fresh"))
}

func TestTreeOperations(t *testing.T) {
	f, _ := newFS(t, pathfs.WithConcurrency(3))

	list, err := f.ListTree("")
	require.NoError(t, err)
	assert.Equal(t, []string{"", "a.txt", "b", "b/c", "d"}, list)

	dirs, err := f.ListDirectoryTree(".")
	require.NoError(t, err)
	assert.Equal(t, []string{"", "b", "d"}, dirs)

	require.NoError(t, f.MakeTree("x/y"))
	require.NoError(t, f.CopyTree(".", "/backup"))
	copied, err := f.ListTree("/backup")
	require.NoError(t, err)
	assert.Equal(t, []string{"", "a.txt", "b", "b/c", "d", "x", "x/y"}, copied)

	target, err := f.ReadLink("/backup/d")
	require.NoError(t, err)
	assert.Equal(t, "b", target)

	require.NoError(t, f.RemoveTree("/backup"))
	assert.False(t, f.Exists("/backup"))

	matches, err := f.Match(".", "**/c")
	require.NoError(t, err)
	assert.Equal(t, []string{"b/c"}, matches)
}

func TestParseMode(t *testing.T) {
	o, err := pathfs.ParseMode("rb+")
	require.NoError(t, err)
	assert.Equal(t, pathfs.OpenOptions{Read: true, Binary: true, Update: true}, o)

	_, err = pathfs.ParseMode("rz")
	assert.True(t, errors.Is(err, core.UnsupportedOption))
}

func TestOptionsFromMap(t *testing.T) {
	o, err := pathfs.OptionsFromMap(map[string]any{"write": true, "charset": "utf-8"})
	require.NoError(t, err)
	assert.Equal(t, pathfs.OpenOptions{Write: true, Charset: "utf-8"}, o)

	_, err = pathfs.OptionsFromMap(map[string]any{"truncate": true})
	assert.True(t, errors.Is(err, core.UnsupportedOption))

	_, err = pathfs.OptionsFromMap(map[string]any{"read": "yes"})
	assert.True(t, errors.Is(err, core.UnsupportedOption))
}

func TestOpenFlags(t *testing.T) {
	tests := []struct {
		name string
		opts pathfs.OpenOptions
		want int
	}{
		{"default reads", pathfs.OpenOptions{}, os.O_RDONLY},
		{"write truncates", pathfs.OpenOptions{Write: true}, os.O_WRONLY | os.O_CREATE | os.O_TRUNC},
		{"append", pathfs.OpenOptions{Append: true}, os.O_WRONLY | os.O_CREATE | os.O_APPEND},
		{"update", pathfs.OpenOptions{Read: true, Update: true}, os.O_RDWR},
		{"exclusive", pathfs.OpenOptions{Write: true, Exclusive: true}, os.O_WRONLY | os.O_CREATE | os.O_TRUNC | os.O_EXCL},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.opts.Flags())
		})
	}
}

func TestOpen(t *testing.T) {
	f, _ := newFS(t)

	w, err := f.Open("out.txt", pathfs.OpenOptions{Write: true})
	require.NoError(t, err)
	_, err = io.WriteString(w, "written")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := f.Open("out.txt", pathfs.OpenOptions{})
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "written", string(data))

	c, err := f.Open("d/c", pathfs.OpenOptions{Canonical: true})
	require.NoError(t, err)
	info, err := c.Stat()
	require.NoError(t, err)
	assert.Equal(t, "c", info.Name())
	require.NoError(t, c.Close())

	_, err = f.Open("missing", pathfs.OpenOptions{})
	assert.True(t, errors.Is(err, core.NotFound))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}
