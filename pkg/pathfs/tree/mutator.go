package tree

import (
	"io/fs"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/pathfs/pkg/pathfs/core"
	"github.com/arthur-debert/pathfs/pkg/pathfs/paths"
	"github.com/arthur-debert/pathfs/pkg/pathfs/permissions"
)

// Mutator creates, copies and removes directory trees.
//
// None of its operations are transactional. When CopyTree or RemoveTree
// fail partway, the entries already copied or removed stay that way.
type Mutator struct {
	fs     FS
	syntax paths.Syntax
	perm   permissions.Permissions
	logger zerolog.Logger
	slots  chan struct{}
}

// MutatorOption configures a Mutator.
type MutatorOption func(*Mutator)

// WithConcurrency lets CopyTree copy up to n sibling entries at once.
// Values below 2 keep copying sequential.
func WithConcurrency(n int) MutatorOption {
	return func(m *Mutator) {
		if n > 1 {
			m.slots = make(chan struct{}, n-1)
		} else {
			m.slots = nil
		}
	}
}

// NewMutator creates a mutator. Directories it creates get perm, subject
// to the umask.
func NewMutator(fsys FS, syntax paths.Syntax, perm permissions.Permissions, logger zerolog.Logger, opts ...MutatorOption) *Mutator {
	m := &Mutator{fs: fsys, syntax: syntax, perm: perm, logger: logger}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MakeTree creates path and any missing parents. It succeeds if path is
// already a directory.
func (m *Mutator) MakeTree(path string) error {
	if info, err := m.fs.Stat(path); err == nil && info.IsDir() {
		return nil
	}
	if err := m.fs.MkdirAll(path, m.perm.FileMode()); err != nil {
		m.logger.Warn().Err(err).Str("path", path).Msg("make tree failed")
		return core.NewError(core.CreateFailed, "make tree", path, err)
	}
	m.logger.Debug().Str("path", path).Str("mode", m.perm.String()).Msg("created directory")
	return nil
}

// CopyTree copies from to to. A directory is copied recursively; symbolic
// links below it are recreated with the same target string instead of
// being followed. Anything else is copied byte for byte, replacing to.
func (m *Mutator) CopyTree(from, to string) error {
	info, err := m.fs.Stat(from)
	if err != nil {
		m.logger.Warn().Err(err).Str("from", from).Msg("copy tree failed")
		return core.Wrap(err, core.CopyFailed, "copy tree", from)
	}
	return m.copyTree(from, to, info)
}

func (m *Mutator) copyTree(from, to string, info fs.FileInfo) error {
	if !info.IsDir() {
		if err := m.fs.CopyFile(from, to); err != nil {
			m.logger.Warn().Err(err).Str("from", from).Str("to", to).Msg("copy failed")
			return core.NewError(core.CopyFailed, "copy", from, err)
		}
		m.logger.Debug().Str("from", from).Str("to", to).Msg("copied file")
		return nil
	}

	if err := m.MakeTree(to); err != nil {
		return err
	}
	names, err := m.fs.ReadDirNames(from)
	if err != nil {
		m.logger.Warn().Err(err).Str("from", from).Msg("copy tree failed")
		return core.NewError(core.CopyFailed, "copy tree", from, err)
	}

	var (
		g         errgroup.Group
		inlineErr error
	)
	for _, name := range names {
		src, dst := m.syntax.Join(from, name), m.syntax.Join(to, name)
		if m.acquire() {
			g.Go(func() error {
				defer m.release()
				return m.copyEntry(src, dst)
			})
			continue
		}
		if inlineErr = m.copyEntry(src, dst); inlineErr != nil {
			break
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return inlineErr
}

func (m *Mutator) copyEntry(src, dst string) error {
	linfo, err := m.fs.Lstat(src)
	if err != nil {
		return core.NewError(core.CopyFailed, "copy", src, err)
	}
	if linfo.Mode()&fs.ModeSymlink == 0 {
		return m.copyTree(src, dst, linfo)
	}

	target, err := m.fs.Readlink(src)
	if err != nil {
		m.logger.Warn().Err(err).Str("from", src).Msg("read link failed")
		return core.NewError(core.CopyFailed, "read link", src, err)
	}
	if err := m.fs.Symlink(target, dst); err != nil {
		m.logger.Warn().Err(err).Str("to", dst).Str("target", target).Msg("link failed")
		return core.NewError(core.CopyFailed, "symlink", dst, err)
	}
	m.logger.Debug().Str("to", dst).Str("target", target).Msg("recreated link")
	return nil
}

// acquire reserves a slot for a concurrent copy without blocking, so a
// directory waiting on its children never starves them.
func (m *Mutator) acquire() bool {
	if m.slots == nil {
		return false
	}
	select {
	case m.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

func (m *Mutator) release() {
	<-m.slots
}

// RemoveTree removes path. A directory that is not a symbolic link is
// emptied depth first before being removed. The first failure aborts the
// operation and leaves the remaining entries in place.
func (m *Mutator) RemoveTree(path string) error {
	info, err := m.fs.Lstat(path)
	if err != nil {
		m.logger.Warn().Err(err).Str("path", path).Msg("remove tree failed")
		return core.NewError(core.RemoveFailed, "remove tree", path, err)
	}
	if info.IsDir() {
		names, err := m.fs.ReadDirNames(path)
		if err != nil {
			m.logger.Warn().Err(err).Str("path", path).Msg("remove tree failed")
			return core.NewError(core.RemoveFailed, "remove tree", path, err)
		}
		for _, name := range names {
			if err := m.RemoveTree(m.syntax.Join(path, name)); err != nil {
				return err
			}
		}
	}
	if err := m.fs.Remove(path); err != nil {
		m.logger.Warn().Err(err).Str("path", path).Msg("remove failed")
		return core.NewError(core.RemoveFailed, "remove", path, err)
	}
	m.logger.Debug().Str("path", path).Msg("removed")
	return nil
}
