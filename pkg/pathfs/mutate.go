package pathfs

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/arthur-debert/pathfs/pkg/pathfs/core"
	"github.com/arthur-debert/pathfs/pkg/pathfs/permissions"
)

// MakeDirectory creates a single directory. A nil perm uses the default
// permissions.
func (f *FS) MakeDirectory(path string, perm *permissions.Permissions) error {
	p := f.defaults
	if perm != nil {
		p = *perm
	}
	if err := f.provider.Mkdir(path, p.FileMode()); err != nil {
		return core.Wrap(err, core.CreateFailed, "make directory", path)
	}
	f.logger.Debug().Str("path", path).Str("mode", p.String()).Msg("created directory")
	return nil
}

// RemoveDirectory removes an empty directory.
func (f *FS) RemoveDirectory(path string) error {
	info, err := f.provider.Lstat(path)
	if err != nil {
		return core.Wrap(err, core.RemoveFailed, "remove directory", path)
	}
	if !info.IsDir() {
		return core.NewError(core.NotADirectory, "remove directory", path, nil)
	}
	if err := f.provider.Remove(path); err != nil {
		return core.NewError(core.RemoveFailed, "remove directory", path, err)
	}
	f.logger.Debug().Str("path", path).Msg("removed directory")
	return nil
}

// Remove removes a file or a link. Directories are refused.
func (f *FS) Remove(path string) error {
	info, err := f.provider.Lstat(path)
	if err != nil {
		return core.Wrap(err, core.RemoveFailed, "remove", path)
	}
	if info.IsDir() {
		return core.NewError(core.IsADirectory, "remove", path, nil)
	}
	if err := f.provider.Remove(path); err != nil {
		return core.Wrap(err, core.RemoveFailed, "remove", path)
	}
	f.logger.Debug().Str("path", path).Msg("removed")
	return nil
}

// Move renames from to to.
func (f *FS) Move(from, to string) error {
	if err := f.provider.Rename(from, to); err != nil {
		return core.Wrap(err, core.CreateFailed, "move", from)
	}
	f.logger.Debug().Str("from", from).Str("to", to).Msg("moved")
	return nil
}

// Copy copies the bytes of a single file. Use CopyTree for directories.
func (f *FS) Copy(from, to string) error {
	info, err := f.provider.Stat(from)
	if err != nil {
		return core.Wrap(err, core.CopyFailed, "copy", from)
	}
	if info.IsDir() {
		return core.NewError(core.IsADirectory, "copy", from, nil)
	}
	if err := f.provider.CopyFile(from, to); err != nil {
		return core.Wrap(err, core.CopyFailed, "copy", from)
	}
	f.logger.Debug().Str("from", from).Str("to", to).Msg("copied file")
	return nil
}

// Touch sets the modification time of path to mtime, or to now when mtime
// is zero. A missing file is created empty.
func (f *FS) Touch(path string, mtime time.Time) error {
	if mtime.IsZero() {
		mtime = time.Now()
	}
	if !f.Exists(path) {
		h, err := f.provider.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0o666)
		if err != nil {
			return core.Wrap(err, core.CreateFailed, "touch", path)
		}
		if err := h.Close(); err != nil {
			return core.Wrap(err, core.CreateFailed, "touch", path)
		}
	}
	if err := f.provider.Chtimes(path, mtime); err != nil {
		return core.Wrap(err, core.CreateFailed, "touch", path)
	}
	return nil
}

// SymbolicLink creates link pointing at target. target is stored as given.
func (f *FS) SymbolicLink(target, link string) error {
	if err := f.provider.Symlink(target, link); err != nil {
		return core.Wrap(err, core.CreateFailed, "symlink", link)
	}
	f.logger.Debug().Str("link", link).Str("target", target).Msg("created link")
	return nil
}

// HardLink creates link as another name for existing.
func (f *FS) HardLink(existing, link string) error {
	if err := f.provider.Link(existing, link); err != nil {
		return core.Wrap(err, core.CreateFailed, "link", link)
	}
	return nil
}

// ReadLink returns the target string of a symbolic link.
func (f *FS) ReadLink(path string) (string, error) {
	target, err := f.provider.Readlink(path)
	if err != nil {
		return "", core.Wrap(err, core.InvalidPath, "read link", path)
	}
	return target, nil
}

// ChangePermissions replaces the permission bits of path. The file type
// and the setuid, setgid and sticky bits are kept.
func (f *FS) ChangePermissions(path string, p permissions.Permissions) error {
	id, err := f.identify("change permissions", path)
	if err != nil {
		return err
	}
	mode := p.ApplyTo(id.Mode)
	if err := f.provider.Chmod(path, mode&0o7777); err != nil {
		return core.Wrap(err, core.PermissionDenied, "change permissions", path)
	}
	f.logger.Debug().Str("path", path).Str("mode", p.String()).Msg("changed permissions")
	return nil
}

// UpdatePermissions merges p over the current permissions of path.
func (f *FS) UpdatePermissions(path string, p permissions.Partial) error {
	current, err := f.Permissions(path)
	if err != nil {
		return err
	}
	return f.ChangePermissions(path, permissions.Merge(current, p))
}

// ChangeOwner sets the owning user of path. owner is a user name or a
// numeric uid.
func (f *FS) ChangeOwner(path, owner string) error {
	uid, ok := f.provider.UserID(owner)
	if !ok {
		n, err := strconv.Atoi(owner)
		if err != nil {
			return core.NewError(core.InvalidPath, "change owner", path, fmt.Errorf("unknown user %q", owner))
		}
		uid = n
	}
	if err := f.provider.Chown(path, uid, -1); err != nil {
		return core.Wrap(err, core.PermissionDenied, "change owner", path)
	}
	return nil
}

// ChangeGroup sets the owning group of path. group is a group name or a
// numeric gid.
func (f *FS) ChangeGroup(path, group string) error {
	gid, ok := f.provider.GroupID(group)
	if !ok {
		n, err := strconv.Atoi(group)
		if err != nil {
			return core.NewError(core.InvalidPath, "change group", path, fmt.Errorf("unknown group %q", group))
		}
		gid = n
	}
	if err := f.provider.Chown(path, -1, gid); err != nil {
		return core.Wrap(err, core.PermissionDenied, "change group", path)
	}
	return nil
}
