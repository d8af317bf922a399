package filesystem

import "io/fs"

// POSIX file type and special bits as stored in st_mode.
const (
	ModeTypeMask uint32 = 0o170000
	ModeDir      uint32 = 0o040000
	ModeRegular  uint32 = 0o100000
	ModeSymlink  uint32 = 0o120000
	ModeSetuid   uint32 = 0o4000
	ModeSetgid   uint32 = 0o2000
	ModeSticky   uint32 = 0o1000
)

// RawMode converts an fs.FileMode to its POSIX st_mode encoding.
func RawMode(m fs.FileMode) uint32 {
	raw := uint32(m.Perm())
	switch {
	case m&fs.ModeDir != 0:
		raw |= ModeDir
	case m&fs.ModeSymlink != 0:
		raw |= ModeSymlink
	case m.IsRegular():
		raw |= ModeRegular
	}
	if m&fs.ModeSetuid != 0 {
		raw |= ModeSetuid
	}
	if m&fs.ModeSetgid != 0 {
		raw |= ModeSetgid
	}
	if m&fs.ModeSticky != 0 {
		raw |= ModeSticky
	}
	return raw
}

// FileMode converts a POSIX st_mode value to an fs.FileMode.
func FileMode(raw uint32) fs.FileMode {
	m := fs.FileMode(raw & 0o777)
	switch raw & ModeTypeMask {
	case ModeDir:
		m |= fs.ModeDir
	case ModeSymlink:
		m |= fs.ModeSymlink
	}
	if raw&ModeSetuid != 0 {
		m |= fs.ModeSetuid
	}
	if raw&ModeSetgid != 0 {
		m |= fs.ModeSetgid
	}
	if raw&ModeSticky != 0 {
		m |= fs.ModeSticky
	}
	return m
}
