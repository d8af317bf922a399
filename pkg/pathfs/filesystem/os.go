package filesystem

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"syscall"
	"time"
)

var errIsDir error = syscall.EISDIR

// OSFileSystem implements Provider on top of the host operating system.
// Names are interpreted the way the os package does: relative names are
// relative to the process working directory.
type OSFileSystem struct{}

// NewOSFileSystem returns the host provider.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

var _ Provider = (*OSFileSystem)(nil)

func (osfs *OSFileSystem) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (osfs *OSFileSystem) Lstat(name string) (fs.FileInfo, error) {
	return os.Lstat(name)
}

// ReadDirNames implements MetadataProvider. os.ReadDir sorts by name.
func (osfs *OSFileSystem) ReadDirNames(name string) ([]string, error) {
	entries, err := os.ReadDir(name)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

func (osfs *OSFileSystem) Canonical(name string) (string, error) {
	resolved, err := filepath.EvalSymlinks(name)
	if err != nil {
		return "", err
	}
	return filepath.Abs(resolved)
}

func (osfs *OSFileSystem) Mkdir(name string, perm fs.FileMode) error {
	return os.Mkdir(name, perm)
}

func (osfs *OSFileSystem) MkdirAll(name string, perm fs.FileMode) error {
	return os.MkdirAll(name, perm)
}

func (osfs *OSFileSystem) Remove(name string) error {
	return os.Remove(name)
}

func (osfs *OSFileSystem) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

func (osfs *OSFileSystem) Symlink(target, link string) error {
	return os.Symlink(target, link)
}

func (osfs *OSFileSystem) Link(oldname, newname string) error {
	return os.Link(oldname, newname)
}

func (osfs *OSFileSystem) Readlink(name string) (string, error) {
	return os.Readlink(name)
}

// CopyFile implements MutationProvider. A new dst gets the permission bits
// of src.
func (osfs *OSFileSystem) CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return &fs.PathError{Op: "copy", Path: src, Err: errIsDir}
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy from %s to %s: %w", src, dst, err)
	}
	return out.Close()
}

func (osfs *OSFileSystem) Chown(name string, uid, gid int) error {
	return os.Chown(name, uid, gid)
}

func (osfs *OSFileSystem) Chtimes(name string, mtime time.Time) error {
	return os.Chtimes(name, mtime, mtime)
}

func (osfs *OSFileSystem) OpenFile(name string, flag int, perm fs.FileMode) (File, error) {
	return os.OpenFile(name, flag, perm)
}

func (osfs *OSFileSystem) Getwd() (string, error) {
	return os.Getwd()
}

func (osfs *OSFileSystem) Chdir(dir string) error {
	return os.Chdir(dir)
}

func (osfs *OSFileSystem) Separator() byte {
	return filepath.Separator
}

func (osfs *OSFileSystem) LookupUser(uid int) (string, bool) {
	u, err := user.LookupId(strconv.Itoa(uid))
	if err != nil {
		return "", false
	}
	return u.Username, true
}

func (osfs *OSFileSystem) LookupGroup(gid int) (string, bool) {
	g, err := user.LookupGroupId(strconv.Itoa(gid))
	if err != nil {
		return "", false
	}
	return g.Name, true
}

func (osfs *OSFileSystem) UserID(name string) (int, bool) {
	u, err := user.Lookup(name)
	if err != nil {
		return 0, false
	}
	id, err := strconv.Atoi(u.Uid)
	return id, err == nil
}

func (osfs *OSFileSystem) GroupID(name string) (int, bool) {
	g, err := user.LookupGroup(name)
	if err != nil {
		return 0, false
	}
	id, err := strconv.Atoi(g.Gid)
	return id, err == nil
}
