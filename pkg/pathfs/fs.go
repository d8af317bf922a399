// Package pathfs combines the path algebra, the permission model and the
// tree engine into a filesystem API bound to a single provider.
//
// Path strings are never validated against the filesystem. Operations that
// touch the filesystem return errors that match a core.Kind:
//
//	if errors.Is(err, core.NotFound) { ... }
package pathfs

import (
	"github.com/rs/zerolog"

	"github.com/arthur-debert/pathfs/pkg/pathfs/core"
	"github.com/arthur-debert/pathfs/pkg/pathfs/filesystem"
	"github.com/arthur-debert/pathfs/pkg/pathfs/paths"
	"github.com/arthur-debert/pathfs/pkg/pathfs/permissions"
	"github.com/arthur-debert/pathfs/pkg/pathfs/tree"
)

// FS is bound to one provider. The default permissions are computed once
// when FS is created. FS holds no other state; the working directory lives
// in the provider.
type FS struct {
	provider filesystem.Provider
	syntax   paths.Syntax
	defaults permissions.Permissions
	logger   zerolog.Logger
	walker   *tree.Walker
	mutator  *tree.Mutator
}

type options struct {
	logger      *zerolog.Logger
	defaults    *permissions.Permissions
	concurrency int
}

// Option configures New.
type Option func(*options)

// WithLogger sets the logger. The default is DefaultLogger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = &logger }
}

// WithDefaultPermissions overrides the permissions derived from the
// provider's umask.
func WithDefaultPermissions(p permissions.Permissions) Option {
	return func(o *options) { o.defaults = &p }
}

// WithConcurrency allows CopyTree to copy up to n siblings at once.
func WithConcurrency(n int) Option {
	return func(o *options) { o.concurrency = n }
}

// New binds a FS to provider.
func New(provider filesystem.Provider, opts ...Option) *FS {
	o := options{concurrency: 1}
	for _, opt := range opts {
		opt(&o)
	}

	logger := DefaultLogger()
	if o.logger != nil {
		logger = *o.logger
	}
	defaults := permissions.Default(provider)
	if o.defaults != nil {
		defaults = *o.defaults
	}
	syntax := paths.Syntax{Separator: provider.Separator()}

	logger.Debug().
		Str("defaults", defaults.String()).
		Int("concurrency", o.concurrency).
		Msg("filesystem bound")

	return &FS{
		provider: provider,
		syntax:   syntax,
		defaults: defaults,
		logger:   logger,
		walker:   tree.NewWalker(provider, syntax, logger),
		mutator:  tree.NewMutator(provider, syntax, defaults, logger, tree.WithConcurrency(o.concurrency)),
	}
}

// NewOS binds a FS to the host filesystem.
func NewOS(opts ...Option) *FS {
	return New(filesystem.NewOSFileSystem(), opts...)
}

// Provider returns the bound provider.
func (f *FS) Provider() filesystem.Provider { return f.provider }

// Syntax returns the path syntax of the provider.
func (f *FS) Syntax() paths.Syntax { return f.syntax }

// DefaultPermissions returns the permissions new directories receive.
func (f *FS) DefaultPermissions() permissions.Permissions { return f.defaults }

// Logger returns the logger.
func (f *FS) Logger() zerolog.Logger { return f.logger }

func (f *FS) Join(parts ...string) string    { return f.syntax.Join(parts...) }
func (f *FS) Split(path string) []string     { return f.syntax.Split(path) }
func (f *FS) Resolve(parts ...string) string { return f.syntax.Resolve(parts...) }
func (f *FS) Normal(path string) string      { return f.syntax.Normal(path) }
func (f *FS) Base(path, ext string) string   { return f.syntax.Base(path, ext) }
func (f *FS) Directory(path string) string   { return f.syntax.Directory(path) }
func (f *FS) Extension(path string) string   { return f.syntax.Extension(path) }
func (f *FS) IsAbsolute(path string) bool    { return f.syntax.IsAbsolute(path) }
func (f *FS) IsRelative(path string) bool    { return f.syntax.IsRelative(path) }

// WorkingDirectory returns the working directory with a trailing separator.
func (f *FS) WorkingDirectory() (string, error) {
	wd, err := f.provider.Getwd()
	if err != nil {
		return "", core.Wrap(err, core.NotFound, "getwd", "")
	}
	return f.syntax.AsDirectory(wd), nil
}

// ChangeWorkingDirectory sets the working directory. Callers serialize
// changes; the working directory is process state.
func (f *FS) ChangeWorkingDirectory(dir string) error {
	if err := f.provider.Chdir(dir); err != nil {
		return core.Wrap(err, core.NotFound, "chdir", dir)
	}
	f.logger.Debug().Str("dir", dir).Msg("changed working directory")
	return nil
}

// Absolute resolves path against the working directory.
func (f *FS) Absolute(path string) (string, error) {
	wd, err := f.WorkingDirectory()
	if err != nil {
		return "", err
	}
	return f.syntax.Absolute(wd, path), nil
}

// Relative returns the path leading from source to target. With no target
// it leads from the working directory to source.
func (f *FS) Relative(source string, target ...string) (string, error) {
	wd, err := f.WorkingDirectory()
	if err != nil {
		return "", err
	}
	t := ""
	if len(target) > 0 {
		t = target[0]
	}
	return f.syntax.Relative(wd, source, t), nil
}

// Canonical returns the absolute path of path with every link resolved.
func (f *FS) Canonical(path string) (string, error) {
	c, err := f.provider.Canonical(path)
	if err != nil {
		return "", core.Wrap(err, core.NotFound, "canonical", path)
	}
	return c, nil
}

// Entries lists the entries below root with their kinds.
func (f *FS) Entries(root string) ([]tree.Entry, error) { return f.walker.Entries(root) }

// ListTree lists every entry below root, root itself first as "".
func (f *FS) ListTree(root string) ([]string, error) { return f.walker.ListTree(root) }

// ListDirectoryTree lists the directories below root, root itself first
// as "".
func (f *FS) ListDirectoryTree(root string) ([]string, error) {
	return f.walker.ListDirectoryTree(root)
}

// Match lists the entries below root matching a doublestar pattern.
func (f *FS) Match(root, pattern string) ([]string, error) { return f.walker.Match(root, pattern) }

// MakeTree creates path and its missing parents.
func (f *FS) MakeTree(path string) error { return f.mutator.MakeTree(path) }

// CopyTree copies from to to, recreating links instead of following them.
func (f *FS) CopyTree(from, to string) error { return f.mutator.CopyTree(from, to) }

// RemoveTree removes path and, unless it is a link, everything below it.
func (f *FS) RemoveTree(path string) error { return f.mutator.RemoveTree(path) }
