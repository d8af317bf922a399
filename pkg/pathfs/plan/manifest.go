// Package plan applies declarative tree plans. A plan is a YAML manifest
// of steps, each a single tree or directory operation, ordered by their
// "after" dependencies and applied one at a time.
//
//	description: install docs
//	steps:
//	  - id: clean
//	    op: remove_tree
//	    path: /opt/app/docs
//	    missing_ok: true
//	  - id: copy
//	    op: copy_tree
//	    from: build/docs
//	    to: /opt/app/docs
//	    after: [clean]
package plan

import (
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/pathfs/pkg/pathfs/core"
)

// Op names a step operation.
type Op string

const (
	OpMakeTree      Op = "make_tree"
	OpMakeDirectory Op = "make_directory"
	OpCopyTree      Op = "copy_tree"
	OpRemoveTree    Op = "remove_tree"
	OpChmod         Op = "chmod"
	OpSymlink       Op = "symlink"
)

// Ops lists the supported operations.
var Ops = []Op{OpMakeTree, OpMakeDirectory, OpCopyTree, OpRemoveTree, OpChmod, OpSymlink}

func (o Op) known() bool {
	for _, op := range Ops {
		if op == o {
			return true
		}
	}
	return false
}

// Manifest is a parsed plan.
type Manifest struct {
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is one operation of a plan. Which fields are used depends on Op:
// path for make_tree, make_directory, remove_tree and chmod; from and to
// for copy_tree; path and target for symlink. mode is a symbolic or octal
// permission string, required by chmod and optional for make_directory.
type Step struct {
	ID        string   `yaml:"id"`
	Op        Op       `yaml:"op"`
	Path      string   `yaml:"path,omitempty"`
	From      string   `yaml:"from,omitempty"`
	To        string   `yaml:"to,omitempty"`
	Mode      string   `yaml:"mode,omitempty"`
	Target    string   `yaml:"target,omitempty"`
	MissingOK bool     `yaml:"missing_ok,omitempty"`
	After     []string `yaml:"after,omitempty"`
}

// Subject returns the path a step acts on, for display.
func (s Step) Subject() string {
	if s.Op == OpCopyTree {
		return s.From + " -> " + s.To
	}
	return s.Path
}

// Parse decodes a manifest. Unknown keys are rejected. An empty document
// yields an empty manifest.
func Parse(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return &Manifest{}, nil
		}
		return nil, core.NewError(core.UnsupportedOption, "parse plan", "", err)
	}
	return &m, nil
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.Wrap(err, core.NotFound, "load plan", path)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		var ce *core.Error
		if errors.As(err, &ce) {
			ce.Path = path
		}
		return nil, err
	}
	return m, nil
}

// Marshal encodes m as YAML.
func (m *Manifest) Marshal() ([]byte, error) {
	return yaml.Marshal(m)
}
