//go:build !unix

package filesystem

import (
	"io/fs"
	"os"
)

// Umask implements EnvironmentProvider. There is no umask outside unix.
func (osfs *OSFileSystem) Umask() (int, bool) {
	return 0, false
}

// Identify implements MetadataProvider. Ownership is not available and
// identity comparison falls back to os.SameFile.
func (osfs *OSFileSystem) Identify(name string) (Identity, error) {
	info, err := os.Stat(name)
	if err != nil {
		return Identity{}, err
	}
	return Identity{Mode: RawMode(info.Mode()), UID: -1, GID: -1, info: info}, nil
}

// Access implements MetadataProvider by opening the file. Write access is
// derived from the permission bits.
func (osfs *OSFileSystem) Access(name string, mode AccessMode) error {
	info, err := os.Stat(name)
	if err != nil {
		return err
	}
	if mode&AccessWrite != 0 && info.Mode().Perm()&0o200 == 0 {
		return &fs.PathError{Op: "access", Path: name, Err: fs.ErrPermission}
	}
	if mode&AccessRead != 0 && !info.IsDir() {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		return f.Close()
	}
	return nil
}

func (osfs *OSFileSystem) Chmod(name string, mode uint32) error {
	return os.Chmod(name, FileMode(mode))
}
