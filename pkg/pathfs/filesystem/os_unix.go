//go:build unix

package filesystem

import (
	"io/fs"
	"sync"

	"golang.org/x/sys/unix"
)

// umask is process-wide; reading it requires setting it.
var umaskMu sync.Mutex

// Umask implements EnvironmentProvider. The mask is restored before
// returning.
func (osfs *OSFileSystem) Umask() (int, bool) {
	umaskMu.Lock()
	defer umaskMu.Unlock()
	old := unix.Umask(0o022)
	unix.Umask(old)
	return old, true
}

func (osfs *OSFileSystem) Identify(name string) (Identity, error) {
	var st unix.Stat_t
	if err := unix.Stat(name, &st); err != nil {
		return Identity{}, &fs.PathError{Op: "stat", Path: name, Err: err}
	}
	return Identity{
		Mode:   uint32(st.Mode),
		UID:    int(st.Uid),
		GID:    int(st.Gid),
		Device: uint64(st.Dev), //nolint:unconvert
		Inode:  uint64(st.Ino), //nolint:unconvert
	}, nil
}

func (osfs *OSFileSystem) Access(name string, mode AccessMode) error {
	var bits uint32
	if mode&AccessRead != 0 {
		bits |= unix.R_OK
	}
	if mode&AccessWrite != 0 {
		bits |= unix.W_OK
	}
	if err := unix.Access(name, bits); err != nil {
		return &fs.PathError{Op: "access", Path: name, Err: err}
	}
	return nil
}

func (osfs *OSFileSystem) Chmod(name string, mode uint32) error {
	if err := unix.Chmod(name, mode&0o7777); err != nil {
		return &fs.PathError{Op: "chmod", Path: name, Err: err}
	}
	return nil
}
