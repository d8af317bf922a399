package tree

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"

	"github.com/arthur-debert/pathfs/pkg/pathfs/core"
)

// Summary counts the entries of a tree on the host filesystem.
type Summary struct {
	Files       int64 `json:"files"`
	Directories int64 `json:"directories"`
	Symlinks    int64 `json:"symlinks"`
	Bytes       int64 `json:"bytes"`
}

// Summarize walks root on the host filesystem in parallel. Like Walker,
// it does not descend into symbolic links. root itself is not counted.
func Summarize(ctx context.Context, root string) (Summary, error) {
	var files, dirs, links, size atomic.Int64
	clean := filepath.Clean(root)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			return err
		}
		if filepath.Clean(p) == clean {
			return nil
		}

		switch {
		case d.Type()&fs.ModeSymlink != 0:
			links.Add(1)
		case d.IsDir():
			dirs.Add(1)
		default:
			info, err := d.Info()
			if err != nil {
				return err
			}
			files.Add(1)
			size.Add(info.Size())
		}
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Summary{}, ctxErr
		}
		return Summary{}, core.Wrap(err, core.NotFound, "summarize", root)
	}

	return Summary{
		Files:       files.Load(),
		Directories: dirs.Load(),
		Symlinks:    links.Load(),
		Bytes:       size.Load(),
	}, nil
}
