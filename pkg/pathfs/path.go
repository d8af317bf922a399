package pathfs

import (
	"time"

	"github.com/arthur-debert/pathfs/pkg/pathfs/permissions"
	"github.com/arthur-debert/pathfs/pkg/pathfs/tree"
)

// Path is an immutable path string bound to a FS. Methods that compute a
// new path return a new Path; the rest delegate to the FS.
type Path struct {
	fs   *FS
	path string
}

// Path joins parts into a Path.
func (f *FS) Path(parts ...string) Path {
	return Path{fs: f, path: f.Join(parts...)}
}

func (p Path) with(s string) Path { return Path{fs: p.fs, path: s} }

func (p Path) String() string { return p.path }

// FS returns the filesystem p is bound to.
func (p Path) FS() *FS { return p.fs }

// Join appends parts to p.
func (p Path) Join(parts ...string) Path {
	return p.with(p.fs.Join(append([]string{p.path}, parts...)...))
}

// Resolve resolves parts against p.
func (p Path) Resolve(parts ...string) Path {
	return p.with(p.fs.Resolve(append([]string{p.path}, parts...)...))
}

// To returns the relative path from p to target.
func (p Path) To(target string) (Path, error) {
	rel, err := p.fs.Relative(p.path, target)
	return p.with(rel), err
}

// From returns the relative path from source to p.
func (p Path) From(source string) (Path, error) {
	rel, err := p.fs.Relative(source, p.path)
	return p.with(rel), err
}

// Relative returns the path from the working directory to p.
func (p Path) Relative() (Path, error) {
	rel, err := p.fs.Relative(p.path)
	return p.with(rel), err
}

func (p Path) Absolute() (Path, error) {
	abs, err := p.fs.Absolute(p.path)
	return p.with(abs), err
}

func (p Path) Canonical() (Path, error) {
	c, err := p.fs.Canonical(p.path)
	return p.with(c), err
}

func (p Path) Normal() Path             { return p.with(p.fs.Normal(p.path)) }
func (p Path) Base(ext string) Path     { return p.with(p.fs.Base(p.path, ext)) }
func (p Path) Directory() Path          { return p.with(p.fs.Directory(p.path)) }
func (p Path) Extension() string        { return p.fs.Extension(p.path) }
func (p Path) Split() []string          { return p.fs.Split(p.path) }
func (p Path) IsAbsolute() bool         { return p.fs.IsAbsolute(p.path) }
func (p Path) IsRelative() bool         { return p.fs.IsRelative(p.path) }
func (p Path) Exists() bool             { return p.fs.Exists(p.path) }
func (p Path) IsFile() bool             { return p.fs.IsFile(p.path) }
func (p Path) IsDirectory() bool        { return p.fs.IsDirectory(p.path) }
func (p Path) IsLink() bool             { return p.fs.IsLink(p.path) }
func (p Path) IsReadable() bool         { return p.fs.IsReadable(p.path) }
func (p Path) IsWritable() bool         { return p.fs.IsWritable(p.path) }
func (p Path) MakeTree() error          { return p.fs.MakeTree(p.path) }
func (p Path) RemoveTree() error        { return p.fs.RemoveTree(p.path) }
func (p Path) Remove() error            { return p.fs.Remove(p.path) }
func (p Path) Touch(t time.Time) error  { return p.fs.Touch(p.path, t) }
func (p Path) CopyTree(to string) error { return p.fs.CopyTree(p.path, to) }
func (p Path) Copy(to string) error     { return p.fs.Copy(p.path, to) }
func (p Path) Move(to string) error     { return p.fs.Move(p.path, to) }

func (p Path) Size() (int64, error)             { return p.fs.Size(p.path) }
func (p Path) LastModified() (time.Time, error) { return p.fs.LastModified(p.path) }
func (p Path) List() ([]string, error)          { return p.fs.List(p.path) }
func (p Path) ListTree() ([]string, error)      { return p.fs.ListTree(p.path) }
func (p Path) Entries() ([]tree.Entry, error)   { return p.fs.Entries(p.path) }

func (p Path) ListDirectoryTree() ([]string, error) {
	return p.fs.ListDirectoryTree(p.path)
}

func (p Path) Permissions() (permissions.Permissions, error) {
	return p.fs.Permissions(p.path)
}

func (p Path) ChangePermissions(perm permissions.Permissions) error {
	return p.fs.ChangePermissions(p.path, perm)
}

// ListPaths returns the children of p as Paths, in lexical order.
func (p Path) ListPaths() ([]Path, error) {
	names, err := p.fs.List(p.path)
	if err != nil {
		return nil, err
	}
	out := make([]Path, len(names))
	for i, name := range names {
		out[i] = p.Join(name)
	}
	return out, nil
}
