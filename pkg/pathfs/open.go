package pathfs

import (
	"fmt"
	"os"
	"sort"

	"github.com/arthur-debert/pathfs/pkg/pathfs/core"
	"github.com/arthur-debert/pathfs/pkg/pathfs/filesystem"
)

// OpenOptions selects how Open opens a file. With none of Read, Write,
// Append or Update set the file is opened for reading. Binary and Charset
// are carried for callers that layer text decoding on top of the handle.
type OpenOptions struct {
	Read      bool
	Write     bool
	Append    bool
	Update    bool
	Binary    bool
	Exclusive bool
	Canonical bool
	Charset   string
}

// ParseMode converts a mode string such as "rb", "w+" or "ax" into options:
// r read, w write, a append, + update, b binary, x exclusive, c canonical.
func ParseMode(mode string) (OpenOptions, error) {
	var o OpenOptions
	for _, c := range mode {
		switch c {
		case 'r':
			o.Read = true
		case 'w':
			o.Write = true
		case 'a':
			o.Append = true
		case '+':
			o.Update = true
		case 'b':
			o.Binary = true
		case 'x':
			o.Exclusive = true
		case 'c':
			o.Canonical = true
		default:
			return OpenOptions{}, core.NewError(core.UnsupportedOption, "parse mode", mode, fmt.Errorf("unsupported mode character %q", c))
		}
	}
	return o, nil
}

// OptionsFromMap converts a key/value option set. Keys other than read,
// write, append, update, binary, exclusive, canonical and charset are
// rejected. charset takes a string, every other key a bool.
func OptionsFromMap(m map[string]any) (OpenOptions, error) {
	var o OpenOptions
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := m[k]
		if k == "charset" {
			s, ok := v.(string)
			if !ok {
				return OpenOptions{}, core.NewError(core.UnsupportedOption, "open options", k, fmt.Errorf("charset must be a string, got %T", v))
			}
			o.Charset = s
			continue
		}
		target := o.flag(k)
		if target == nil {
			return OpenOptions{}, core.NewError(core.UnsupportedOption, "open options", k, fmt.Errorf("unsupported option %q", k))
		}
		b, ok := v.(bool)
		if !ok {
			return OpenOptions{}, core.NewError(core.UnsupportedOption, "open options", k, fmt.Errorf("%s must be a bool, got %T", k, v))
		}
		*target = b
	}
	return o, nil
}

func (o *OpenOptions) flag(key string) *bool {
	switch key {
	case "read":
		return &o.Read
	case "write":
		return &o.Write
	case "append":
		return &o.Append
	case "update":
		return &o.Update
	case "binary":
		return &o.Binary
	case "exclusive":
		return &o.Exclusive
	case "canonical":
		return &o.Canonical
	}
	return nil
}

// Flags returns the os.OpenFile flags for o.
func (o OpenOptions) Flags() int {
	read := o.Read || (!o.Write && !o.Append && !o.Update)
	write := o.Write || o.Append || o.Update

	var flag int
	switch {
	case read && write:
		flag = os.O_RDWR
	case write:
		flag = os.O_WRONLY
	default:
		flag = os.O_RDONLY
	}
	if o.Write || o.Append {
		flag |= os.O_CREATE
	}
	if o.Write && !o.Append && !o.Update {
		flag |= os.O_TRUNC
	}
	if o.Append {
		flag |= os.O_APPEND
	}
	if o.Exclusive {
		flag |= os.O_CREATE | os.O_EXCL
	}
	return flag
}

// Open opens path with o. With o.Canonical set, links in path are resolved
// first.
func (f *FS) Open(path string, o OpenOptions) (filesystem.File, error) {
	if o.Canonical {
		c, err := f.Canonical(path)
		if err != nil {
			return nil, err
		}
		path = c
	}
	h, err := f.provider.OpenFile(path, o.Flags(), 0o666)
	if err != nil {
		return nil, core.Wrap(err, core.NotFound, "open", path)
	}
	return h, nil
}
