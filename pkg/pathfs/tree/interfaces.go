//go:generate mockgen -destination=./mocks/fs.go . FS
package tree

import "io/fs"

// FS is the part of the filesystem provider the tree engine uses.
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadDirNames(name string) ([]string, error)
	MkdirAll(name string, perm fs.FileMode) error
	Remove(name string) error
	Symlink(target, link string) error
	Readlink(name string) (string, error)
	CopyFile(src, dst string) error
}

// Kind classifies an entry produced by the walker.
type Kind int

const (
	File Kind = iota
	Directory
	SymlinkToDirectory
)

func (k Kind) String() string {
	switch k {
	case Directory:
		return "directory"
	case SymlinkToDirectory:
		return "symlink-to-directory"
	}
	return "file"
}

// Entry is a path relative to the walked root together with its Kind.
// The root itself is the entry with an empty Path.
type Entry struct {
	Path string
	Kind Kind
}
