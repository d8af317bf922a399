package filesystem

import (
	"io"
	"io/fs"
	"os"
	"time"
)

// AccessMode selects the access check performed by MetadataProvider.Access.
type AccessMode int

const (
	AccessRead AccessMode = 1 << iota
	AccessWrite
)

// File is an open handle returned by MutationProvider.OpenFile.
type File interface {
	io.Reader
	io.Writer
	io.Closer
	Stat() (fs.FileInfo, error)
}

// Identity is the stat record of a filesystem entry. Mode holds the raw
// POSIX mode including the file type and setuid/setgid/sticky bits.
type Identity struct {
	Mode   uint32
	UID    int
	GID    int
	Device uint64
	Inode  uint64

	info fs.FileInfo
}

// SameFile reports whether a and b describe the same filesystem entry.
func (a Identity) SameFile(b Identity) bool {
	if a.Inode != 0 && b.Inode != 0 {
		return a.Device == b.Device && a.Inode == b.Inode
	}
	if a.info != nil && b.info != nil {
		return os.SameFile(a.info, b.info)
	}
	return false
}

// MetadataProvider answers read-only questions about entries.
type MetadataProvider interface {
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	Identify(name string) (Identity, error)
	// ReadDirNames returns the names of the children of a directory in
	// lexical order.
	ReadDirNames(name string) ([]string, error)
	Access(name string, mode AccessMode) error
	// Canonical returns the absolute path of name with every symbolic link
	// resolved.
	Canonical(name string) (string, error)
}

// MutationProvider changes the filesystem.
type MutationProvider interface {
	Mkdir(name string, perm fs.FileMode) error
	MkdirAll(name string, perm fs.FileMode) error
	Remove(name string) error
	Rename(oldpath, newpath string) error
	Symlink(target, link string) error
	Link(oldname, newname string) error
	Readlink(name string) (string, error)
	// CopyFile copies the bytes of src into dst, truncating dst if it exists.
	CopyFile(src, dst string) error
	// Chmod sets the raw POSIX mode bits of name, including setuid, setgid
	// and sticky.
	Chmod(name string, mode uint32) error
	// Chown changes ownership. An id of -1 leaves that id unchanged.
	Chown(name string, uid, gid int) error
	Chtimes(name string, mtime time.Time) error
	OpenFile(name string, flag int, perm fs.FileMode) (File, error)
}

// EnvironmentProvider exposes process state that path operations depend on.
type EnvironmentProvider interface {
	Getwd() (string, error)
	Chdir(dir string) error
	Separator() byte
	// Umask returns the process file mode creation mask. ok is false when
	// the platform has no such concept.
	Umask() (mask int, ok bool)
	LookupUser(uid int) (string, bool)
	LookupGroup(gid int) (string, bool)
	UserID(name string) (int, bool)
	GroupID(name string) (int, bool)
}

// Provider is the complete set of collaborators pathfs needs.
type Provider interface {
	MetadataProvider
	MutationProvider
	EnvironmentProvider
}
