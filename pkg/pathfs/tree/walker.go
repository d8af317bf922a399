package tree

import (
	"io/fs"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/pathfs/pkg/pathfs/core"
	"github.com/arthur-debert/pathfs/pkg/pathfs/paths"
)

// Walker enumerates directory trees depth first. Children are visited in
// the order ReadDirNames returns them, which providers keep lexical.
// Symbolic links, including links to directories, are reported as leaves
// and never followed.
type Walker struct {
	fs     FS
	syntax paths.Syntax
	logger zerolog.Logger
}

// NewWalker creates a walker over fsys. Paths it returns use the separator
// of syntax.
func NewWalker(fsys FS, syntax paths.Syntax, logger zerolog.Logger) *Walker {
	return &Walker{fs: fsys, syntax: syntax, logger: logger}
}

// Entries returns every entry below root, root itself first as "".
// An empty root means ".".
func (w *Walker) Entries(root string) ([]Entry, error) {
	if root == "" {
		root = "."
	}
	out := []Entry{{Path: "", Kind: Directory}}
	if err := w.collect(root, "", &out); err != nil {
		return nil, err
	}
	w.logger.Trace().Str("root", root).Int("entries", len(out)).Msg("walked tree")
	return out, nil
}

func (w *Walker) collect(dir, prefix string, out *[]Entry) error {
	names, err := w.fs.ReadDirNames(dir)
	if err != nil {
		return core.Wrap(err, core.NotFound, "list", dir)
	}
	for _, name := range names {
		full := w.syntax.Join(dir, name)
		rel := w.syntax.Join(prefix, name)
		kind, err := w.classify(full)
		if err != nil {
			return err
		}
		*out = append(*out, Entry{Path: rel, Kind: kind})
		if kind == Directory {
			if err := w.collect(full, rel, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Walker) classify(name string) (Kind, error) {
	linfo, err := w.fs.Lstat(name)
	if err != nil {
		return File, core.Wrap(err, core.NotFound, "lstat", name)
	}
	if linfo.Mode()&fs.ModeSymlink == 0 {
		if linfo.IsDir() {
			return Directory, nil
		}
		return File, nil
	}
	// A dangling link stays a plain leaf.
	info, err := w.fs.Stat(name)
	if err == nil && info.IsDir() {
		return SymlinkToDirectory, nil
	}
	return File, nil
}

// ListTree returns the relative path of every entry below root, starting
// with "" for root itself.
func (w *Walker) ListTree(root string) ([]string, error) {
	entries, err := w.Entries(root)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out, nil
}

// ListDirectoryTree is ListTree restricted to directories. Links to
// directories are included but not expanded.
func (w *Walker) ListDirectoryTree(root string) ([]string, error) {
	entries, err := w.Entries(root)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Kind != File {
			out = append(out, e.Path)
		}
	}
	return out, nil
}

// Match returns the entries of ListTree matching a doublestar pattern such
// as "**/*.go". Patterns always use "/" whatever the syntax. The root entry
// is never matched.
func (w *Walker) Match(root, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, core.NewError(core.InvalidPath, "match", pattern, doublestar.ErrBadPattern)
	}
	list, err := w.ListTree(root)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, p := range list[1:] {
		slashed := p
		if w.syntax.Separator != '/' {
			slashed = strings.ReplaceAll(p, string(w.syntax.Separator), "/")
		}
		ok, err := doublestar.Match(pattern, slashed)
		if err != nil {
			return nil, core.NewError(core.InvalidPath, "match", pattern, err)
		}
		if ok {
			out = append(out, p)
		}
	}
	return out, nil
}
