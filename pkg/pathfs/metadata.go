package pathfs

import (
	"io/fs"
	"strconv"
	"time"

	"github.com/arthur-debert/pathfs/pkg/pathfs/core"
	"github.com/arthur-debert/pathfs/pkg/pathfs/filesystem"
	"github.com/arthur-debert/pathfs/pkg/pathfs/permissions"
)

// Exists reports whether path names an entry, following links.
func (f *FS) Exists(path string) bool {
	_, err := f.provider.Stat(path)
	return err == nil
}

// IsFile reports whether path is a regular file, following links.
func (f *FS) IsFile(path string) bool {
	info, err := f.provider.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsDirectory reports whether path is a directory, following links.
func (f *FS) IsDirectory(path string) bool {
	info, err := f.provider.Stat(path)
	return err == nil && info.IsDir()
}

// IsLink reports whether path itself is a symbolic link.
func (f *FS) IsLink(path string) bool {
	info, err := f.provider.Lstat(path)
	return err == nil && info.Mode()&fs.ModeSymlink != 0
}

func (f *FS) IsReadable(path string) bool {
	return f.provider.Access(path, filesystem.AccessRead) == nil
}

func (f *FS) IsWritable(path string) bool {
	return f.provider.Access(path, filesystem.AccessWrite) == nil
}

// Size returns the size of path in bytes.
func (f *FS) Size(path string) (int64, error) {
	info, err := f.provider.Stat(path)
	if err != nil {
		return 0, core.Wrap(err, core.NotFound, "size", path)
	}
	return info.Size(), nil
}

// LastModified returns the modification time of path.
func (f *FS) LastModified(path string) (time.Time, error) {
	info, err := f.provider.Stat(path)
	if err != nil {
		return time.Time{}, core.Wrap(err, core.NotFound, "last modified", path)
	}
	return info.ModTime(), nil
}

func (f *FS) identify(op, path string) (filesystem.Identity, error) {
	id, err := f.provider.Identify(path)
	if err != nil {
		return filesystem.Identity{}, core.Wrap(err, core.NotFound, op, path)
	}
	return id, nil
}

// Same reports whether a and b are the same filesystem entry.
func (f *FS) Same(a, b string) (bool, error) {
	idA, err := f.identify("same", a)
	if err != nil {
		return false, err
	}
	idB, err := f.identify("same", b)
	if err != nil {
		return false, err
	}
	return idA.SameFile(idB), nil
}

// SameFilesystem reports whether a and b live on the same device.
func (f *FS) SameFilesystem(a, b string) (bool, error) {
	idA, err := f.identify("same filesystem", a)
	if err != nil {
		return false, err
	}
	idB, err := f.identify("same filesystem", b)
	if err != nil {
		return false, err
	}
	return idA.Device == idB.Device, nil
}

// Owner returns the name of the user owning path, or the numeric uid when
// the user has no name.
func (f *FS) Owner(path string) (string, error) {
	id, err := f.identify("owner", path)
	if err != nil {
		return "", err
	}
	if name, ok := f.provider.LookupUser(id.UID); ok {
		return name, nil
	}
	return strconv.Itoa(id.UID), nil
}

// Group returns the name of the group owning path, or the numeric gid.
func (f *FS) Group(path string) (string, error) {
	id, err := f.identify("group", path)
	if err != nil {
		return "", err
	}
	if name, ok := f.provider.LookupGroup(id.GID); ok {
		return name, nil
	}
	return strconv.Itoa(id.GID), nil
}

// Permissions returns the permission bits of path.
func (f *FS) Permissions(path string) (permissions.Permissions, error) {
	id, err := f.identify("permissions", path)
	if err != nil {
		return permissions.Permissions{}, err
	}
	return permissions.FromMode(id.Mode), nil
}

// Mode returns the raw POSIX mode of path, including type and special bits.
func (f *FS) Mode(path string) (uint32, error) {
	id, err := f.identify("mode", path)
	if err != nil {
		return 0, err
	}
	return id.Mode, nil
}

// List returns the names of the children of a directory in lexical order.
func (f *FS) List(path string) ([]string, error) {
	names, err := f.provider.ReadDirNames(path)
	if err != nil {
		return nil, core.Wrap(err, core.NotFound, "list", path)
	}
	return names, nil
}
