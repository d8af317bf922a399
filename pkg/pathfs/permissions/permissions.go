// Package permissions models POSIX read/write/execute bits for the owner,
// group and other roles.
package permissions

import (
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/arthur-debert/pathfs/pkg/pathfs/core"
)

// FallbackMode is used as the default permission set when the process
// umask cannot be determined.
const FallbackMode uint32 = 0o755

// Role holds the three permission flags of one role.
type Role struct {
	Read    bool
	Write   bool
	Execute bool
}

// Permissions holds the flags of the owner, group and other roles.
type Permissions struct {
	Owner Role
	Group Role
	Other Role
}

func roleFromBits(bits uint32) Role {
	return Role{
		Read:    bits&0o4 != 0,
		Write:   bits&0o2 != 0,
		Execute: bits&0o1 != 0,
	}
}

func (r Role) bits() uint32 {
	var b uint32
	if r.Read {
		b |= 0o4
	}
	if r.Write {
		b |= 0o2
	}
	if r.Execute {
		b |= 0o1
	}
	return b
}

func (r Role) String() string {
	out := []byte("---")
	if r.Read {
		out[0] = 'r'
	}
	if r.Write {
		out[1] = 'w'
	}
	if r.Execute {
		out[2] = 'x'
	}
	return string(out)
}

// FromMode decodes the low nine bits of mode. Higher bits are ignored.
func FromMode(mode uint32) Permissions {
	return Permissions{
		Owner: roleFromBits(mode >> 6 & 0o7),
		Group: roleFromBits(mode >> 3 & 0o7),
		Other: roleFromBits(mode & 0o7),
	}
}

// FromFileMode decodes the permission bits of an fs.FileMode.
func FromFileMode(mode fs.FileMode) Permissions {
	return FromMode(uint32(mode.Perm()))
}

// ToNumber encodes p as a value in [0, 0o777].
func (p Permissions) ToNumber() uint32 {
	return p.Owner.bits()<<6 | p.Group.bits()<<3 | p.Other.bits()
}

// FileMode returns p as an fs.FileMode permission value.
func (p Permissions) FileMode() fs.FileMode {
	return fs.FileMode(p.ToNumber())
}

// ApplyTo replaces the permission bits of current with p, keeping the
// file type and special bits.
func (p Permissions) ApplyTo(current uint32) uint32 {
	return current&^0o777 | p.ToNumber()
}

// String renders p in the symbolic "rwxr-xr-x" form.
func (p Permissions) String() string {
	return p.Owner.String() + p.Group.String() + p.Other.String()
}

// Octal renders p as a four digit octal string such as "0755".
func (p Permissions) Octal() string {
	return fmt.Sprintf("%04o", p.ToNumber())
}

// Parse accepts an octal number ("755", "0755", "0o755") or a nine
// character symbolic string ("rwxr-xr-x").
func Parse(s string) (Permissions, error) {
	s = strings.TrimSpace(s)
	if len(s) == 9 && strings.Trim(s, "rwx-") == "" {
		return parseSymbolic(s)
	}
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0o"), "0O")
	n, err := strconv.ParseUint(digits, 8, 32)
	if err != nil || n > 0o777 {
		return Permissions{}, core.NewError(core.InvalidPath, "parse permissions", s, err)
	}
	return FromMode(uint32(n)), nil
}

func parseSymbolic(s string) (Permissions, error) {
	var roles [3]Role
	for i := range roles {
		chunk := s[i*3 : i*3+3]
		if (chunk[0] != 'r' && chunk[0] != '-') || (chunk[1] != 'w' && chunk[1] != '-') || (chunk[2] != 'x' && chunk[2] != '-') {
			return Permissions{}, core.NewError(core.InvalidPath, "parse permissions", s, nil)
		}
		roles[i] = Role{Read: chunk[0] == 'r', Write: chunk[1] == 'w', Execute: chunk[2] == 'x'}
	}
	return Permissions{Owner: roles[0], Group: roles[1], Other: roles[2]}, nil
}
