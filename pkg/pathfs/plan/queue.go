package plan

import (
	"fmt"

	"github.com/gammazero/toposort"

	"github.com/arthur-debert/pathfs/pkg/pathfs/core"
	"github.com/arthur-debert/pathfs/pkg/pathfs/permissions"
)

// Validate checks every step of m: ids are present and unique, ops are
// known, the fields the op needs are set, modes parse, and every "after"
// names another step.
func Validate(m *Manifest) error {
	index := make(map[string]int, len(m.Steps))
	for i, step := range m.Steps {
		if step.ID == "" {
			return &ValidationError{Step: step, Reason: fmt.Sprintf("step %d has no id", i+1)}
		}
		if _, exists := index[step.ID]; exists {
			return &ValidationError{Step: step, Reason: "duplicate id"}
		}
		index[step.ID] = i

		if err := validateStep(step); err != nil {
			return err
		}
	}

	for _, step := range m.Steps {
		var missing []string
		for _, dep := range step.After {
			if _, exists := index[dep]; !exists {
				missing = append(missing, dep)
			}
		}
		if len(missing) > 0 {
			return &DependencyError{Step: step, Dependencies: step.After, Missing: missing}
		}
	}
	return nil
}

func validateStep(step Step) error {
	if !step.Op.known() {
		return &ValidationError{
			Step:   step,
			Reason: "unknown op",
			Cause:  core.NewError(core.UnsupportedOption, "validate", string(step.Op), nil),
		}
	}

	require := func(field, value string) error {
		if value == "" {
			return &ValidationError{
				Step:   step,
				Reason: field + " is required",
				Cause:  core.NewError(core.InvalidPath, "validate", "", nil),
			}
		}
		return nil
	}

	var err error
	switch step.Op {
	case OpMakeTree, OpMakeDirectory, OpRemoveTree:
		err = require("path", step.Path)
	case OpCopyTree:
		if err = require("from", step.From); err == nil {
			err = require("to", step.To)
		}
	case OpChmod:
		if err = require("path", step.Path); err == nil {
			err = require("mode", step.Mode)
		}
	case OpSymlink:
		if err = require("path", step.Path); err == nil {
			err = require("target", step.Target)
		}
	}
	if err != nil {
		return err
	}

	if step.Mode != "" {
		if _, perr := permissions.Parse(step.Mode); perr != nil {
			return &ValidationError{Step: step, Reason: "invalid mode", Cause: perr}
		}
	}
	return nil
}

// Order returns the steps of m so that every step comes after the steps it
// names in "after". Steps that take no part in any dependency follow in
// manifest order. m must have been validated.
func Order(m *Manifest) ([]Step, error) {
	if len(m.Steps) == 0 {
		return nil, nil
	}

	index := make(map[string]int, len(m.Steps))
	for i, step := range m.Steps {
		index[step.ID] = i
	}

	edges := make([]toposort.Edge, 0)
	for _, step := range m.Steps {
		for _, dep := range step.After {
			// dependency -> step: element 0 comes before element 1
			edges = append(edges, toposort.Edge{dep, step.ID})
		}
	}

	sortedIDs, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("circular dependency detected: %w", err)
	}

	ordered := make([]Step, 0, len(m.Steps))
	added := make(map[string]bool, len(m.Steps))
	for _, v := range sortedIDs {
		id, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected type in topological sort result: %T", v)
		}
		if i, exists := index[id]; exists && !added[id] {
			ordered = append(ordered, m.Steps[i])
			added[id] = true
		}
	}

	// Steps outside the dependency graph.
	for _, step := range m.Steps {
		if !added[step.ID] {
			ordered = append(ordered, step)
			added[step.ID] = true
		}
	}
	return ordered, nil
}
