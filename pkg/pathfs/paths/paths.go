// Package paths implements the syntactic path algebra used by pathfs:
// splitting, joining, resolving and relativising path strings.
//
// Nothing in this package touches the filesystem. Paths are never rejected;
// malformed input degrades to a best-effort result (for example ".." above a
// relative start is kept literally). Functions that need the working directory
// take it as an argument.
package paths

import (
	"path/filepath"
	"strings"
)

// Syntax describes the path conventions of a platform. The forward slash is
// accepted as a separator under every Syntax; Separator is used for output.
type Syntax struct {
	Separator byte
}

var (
	// Posix uses "/" as separator and root.
	Posix = Syntax{Separator: '/'}
	// Windows uses "\" as separator and recognises drive ("C:\") and UNC ("\\") roots.
	Windows = Syntax{Separator: '\\'}
	// Native is the syntax of the host platform.
	Native = Syntax{Separator: filepath.Separator}
)

// IsSeparator reports whether c separates path segments.
func (s Syntax) IsSeparator(c byte) bool {
	return c == '/' || c == s.Separator
}

func (s Syntax) windows() bool {
	return s.Separator == '\\'
}

func (s Syntax) sep() string {
	return string(s.Separator)
}

// splitAll splits on every separator, keeping empty segments.
func (s Syntax) splitAll(path string) []string {
	parts := make([]string, 0, strings.Count(path, "/")+strings.Count(path, s.sep())+1)
	start := 0
	for i := 0; i < len(path); i++ {
		if s.IsSeparator(path[i]) {
			parts = append(parts, path[start:i])
			start = i + 1
		}
	}
	return append(parts, path[start:])
}

// Split returns the segments of path. An empty path has no segments.
func (s Syntax) Split(path string) []string {
	if path == "" {
		return []string{}
	}
	return s.splitAll(path)
}

// Join concatenates the non-empty arguments with the separator. The result
// is not normalized: Join("..", "foo") is "../foo".
func (s Syntax) Join(elems ...string) string {
	kept := make([]string, 0, len(elems))
	for _, e := range elems {
		if e != "" {
			kept = append(kept, e)
		}
	}
	return strings.Join(kept, s.sep())
}

// IsAbsolute reports whether path starts with a root marker.
func (s Syntax) IsAbsolute(path string) bool {
	if path == "" {
		return false
	}
	if !s.windows() {
		return s.IsSeparator(path[0])
	}
	if len(path) >= 3 && isDriveLetter(path[0]) && path[1] == ':' && s.IsSeparator(path[2]) {
		return true
	}
	return s.isUNC(path)
}

// IsRelative is the negation of IsAbsolute.
func (s Syntax) IsRelative(path string) bool {
	return !s.IsAbsolute(path)
}

func (s Syntax) isUNC(path string) bool {
	return s.windows() && len(path) >= 2 && s.IsSeparator(path[0]) && s.IsSeparator(path[1])
}

func isDriveLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Resolve walks from an empty location to each path in turn. An absolute
// path (or one starting with a separator) discards everything before it.
// The last segment of every path is a leaf that the next path replaces, so
// Resolve("/a/b", "c") is "/a/c" while Resolve("/a/b/", "c") is "/a/b/c".
// "." segments are dropped and ".." cancels the previous segment where
// possible; above a root it is dropped, on a relative path it is kept.
// Blank arguments are ignored, and so is a result that is only a blank
// leaf. Resolve is idempotent.
func (s Syntax) Resolve(paths ...string) string {
	var (
		root     string
		elements []string
		leaf     string
	)
	for _, path := range paths {
		if strings.TrimSpace(path) == "" {
			continue
		}
		parts := s.splitAll(path)
		switch {
		case s.isUNC(path):
			root = s.sep() + s.sep()
			parts = parts[2:]
			elements = nil
		case s.IsAbsolute(path) || s.IsSeparator(path[0]):
			root = parts[0] + s.sep()
			parts = parts[1:]
			elements = nil
		}

		leaf = parts[len(parts)-1]
		parts = parts[:len(parts)-1]
		if leaf == "." || leaf == ".." {
			parts = append(parts, leaf)
			leaf = ""
		}

		for _, part := range parts {
			switch part {
			case "", ".":
			case "..":
				if len(elements) > 0 && elements[len(elements)-1] != ".." {
					elements = elements[:len(elements)-1]
				} else if root == "" {
					elements = append(elements, part)
				}
			default:
				elements = append(elements, part)
			}
		}
	}

	joined := strings.Join(elements, s.sep())
	if joined != "" {
		leaf = s.sep() + leaf
	}
	out := root + joined + leaf
	if strings.TrimSpace(out) == "" {
		// A blank leaf alone would be ignored when resolved again.
		return ""
	}
	return out
}

// Normal removes "." and simplifies ".." segments wherever possible.
func (s Syntax) Normal(path string) string {
	return s.Resolve(path)
}

// Absolute resolves path against the working directory wd, which always
// denotes a directory.
func (s Syntax) Absolute(wd, path string) string {
	return s.Resolve(s.AsDirectory(wd), path)
}

// AsDirectory appends a trailing separator to a non-empty path that lacks one.
func (s Syntax) AsDirectory(path string) string {
	if path == "" || s.IsSeparator(path[len(path)-1]) {
		return path
	}
	return path + s.sep()
}

// Relative returns the path that leads from source to target by climbing
// to their common ancestor. The last segment of source is treated as a
// file, so the result is meant to be resolved against source's directory.
// With an empty target the result leads from wd to source instead.
// Identical absolute forms yield "".
func (s Syntax) Relative(wd, source, target string) string {
	if target == "" {
		target = source
		source = s.AsDirectory(wd)
	}
	src := s.Absolute(wd, source)
	dst := s.Absolute(wd, target)
	if src == dst {
		return ""
	}

	from := s.splitAll(src)
	to := s.splitAll(dst)
	from = from[:len(from)-1]
	for len(from) > 0 && len(to) > 0 && from[0] == to[0] {
		from = from[1:]
		to = to[1:]
	}

	out := make([]string, 0, len(from)+len(to))
	for range from {
		out = append(out, "..")
	}
	return strings.Join(append(out, to...), s.sep())
}

// Base returns the last segment of path. If ext is non-empty and the
// segment ends with it, ext is removed.
func (s Syntax) Base(path, ext string) string {
	parts := s.Split(path)
	if len(parts) == 0 {
		return ""
	}
	name := parts[len(parts)-1]
	if ext != "" && name != "" && strings.HasSuffix(name, ext) {
		return name[:len(name)-len(ext)]
	}
	return name
}

// Directory returns path without its last segment, or "." when there is
// no parent.
func (s Syntax) Directory(path string) string {
	p := s.collapse(path)
	prefix := s.prefixLength(p)
	idx := strings.LastIndexByte(p, s.Separator)
	if idx < prefix {
		if prefix > 0 && len(p) > prefix {
			return p[:prefix]
		}
		return "."
	}
	return p[:idx]
}

// Extension returns the suffix of the base name starting at its last dot.
// Leading dots do not count, so ".bashrc" has no extension.
func (s Syntax) Extension(path string) string {
	name := strings.TrimLeft(s.Base(path, ""), ".")
	if idx := strings.LastIndexByte(name, '.'); idx > 0 {
		return name[idx:]
	}
	return ""
}

// collapse rewrites separators to Separator, folds repeated separators and
// drops a trailing one. A leading UNC pair is kept.
func (s Syntax) collapse(path string) string {
	var b strings.Builder
	b.Grow(len(path))
	prev := false
	for i := 0; i < len(path); i++ {
		c := path[i]
		if !s.IsSeparator(c) {
			b.WriteByte(c)
			prev = false
			continue
		}
		if prev && !(s.windows() && i == 1) {
			continue
		}
		b.WriteByte(s.Separator)
		prev = true
	}
	out := b.String()
	for len(out) > s.prefixLength(out) && out[len(out)-1] == s.Separator {
		out = out[:len(out)-1]
	}
	return out
}

// prefixLength is the length of the root marker of a collapsed path.
func (s Syntax) prefixLength(p string) int {
	if p == "" {
		return 0
	}
	if !s.windows() {
		if p[0] == s.Separator {
			return 1
		}
		return 0
	}
	switch {
	case len(p) >= 2 && p[0] == s.Separator && p[1] == s.Separator:
		return 2
	case len(p) >= 2 && isDriveLetter(p[0]) && p[1] == ':':
		if len(p) >= 3 && p[2] == s.Separator {
			return 3
		}
		return 2
	case p[0] == s.Separator:
		return 1
	}
	return 0
}

// Split splits path using the host syntax.
func Split(path string) []string { return Native.Split(path) }

// Join joins non-empty elements using the host syntax.
func Join(elems ...string) string { return Native.Join(elems...) }

// Resolve resolves paths using the host syntax.
func Resolve(paths ...string) string { return Native.Resolve(paths...) }

// Normal normalizes path using the host syntax.
func Normal(path string) string { return Native.Normal(path) }

// Absolute resolves path against wd using the host syntax.
func Absolute(wd, path string) string { return Native.Absolute(wd, path) }

// Relative relativises target against source using the host syntax.
func Relative(wd, source, target string) string { return Native.Relative(wd, source, target) }

// Base returns the last segment of path using the host syntax.
func Base(path, ext string) string { return Native.Base(path, ext) }

// Directory returns the parent of path using the host syntax.
func Directory(path string) string { return Native.Directory(path) }

// Extension returns the extension of path using the host syntax.
func Extension(path string) string { return Native.Extension(path) }

// IsAbsolute reports whether path is absolute on the host.
func IsAbsolute(path string) bool { return Native.IsAbsolute(path) }

// IsRelative reports whether path is relative on the host.
func IsRelative(path string) bool { return Native.IsRelative(path) }
