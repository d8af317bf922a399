package plan_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/pathfs/pkg/pathfs/core"
	"github.com/arthur-debert/pathfs/pkg/pathfs/plan"
)

const installPlan = `
description: install docs
steps:
  - id: copy
    op: copy_tree
    from: /build/docs
    to: /opt/app/docs
    after: [clean, base]
  - id: clean
    op: remove_tree
    path: /opt/app/docs
    missing_ok: true
  - id: base
    op: make_tree
    path: /opt/app
  - id: lock
    op: chmod
    path: /opt/app/docs
    mode: "0750"
    after: [copy]
`

func TestParse(t *testing.T) {
	m, err := plan.Parse(strings.NewReader(installPlan))
	require.NoError(t, err)

	assert.Equal(t, "install docs", m.Description)
	require.Len(t, m.Steps, 4)
	assert.Equal(t, plan.Step{
		ID:    "copy",
		Op:    plan.OpCopyTree,
		From:  "/build/docs",
		To:    "/opt/app/docs",
		After: []string{"clean", "base"},
	}, m.Steps[0])
	assert.True(t, m.Steps[1].MissingOK)
	assert.Equal(t, "/build/docs -> /opt/app/docs", m.Steps[0].Subject())
	assert.Equal(t, "/opt/app", m.Steps[2].Subject())
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := plan.Parse(strings.NewReader("steps:\n  - id: a\n    op: make_tree\n    recursive: true\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.UnsupportedOption))
}

func TestParseEmpty(t *testing.T) {
	m, err := plan.Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, m.Steps)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(installPlan), 0o644))

	m, err := plan.Load(path)
	require.NoError(t, err)
	assert.Len(t, m.Steps, 4)

	_, err = plan.Load(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.Is(err, core.NotFound))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("nope: 1\n"), 0o644))
	_, err = plan.Load(bad)
	var ce *core.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, bad, ce.Path)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		steps   []plan.Step
		wantDep bool
		reason  string
	}{
		{"valid", []plan.Step{{ID: "a", Op: plan.OpMakeTree, Path: "x"}}, false, ""},
		{"missing id", []plan.Step{{Op: plan.OpMakeTree, Path: "x"}}, false, "step 1 has no id"},
		{"duplicate id", []plan.Step{
			{ID: "a", Op: plan.OpMakeTree, Path: "x"},
			{ID: "a", Op: plan.OpMakeTree, Path: "y"},
		}, false, "duplicate id"},
		{"unknown op", []plan.Step{{ID: "a", Op: "format_disk", Path: "x"}}, false, "unknown op"},
		{"copy needs to", []plan.Step{{ID: "a", Op: plan.OpCopyTree, From: "x"}}, false, "to is required"},
		{"chmod needs mode", []plan.Step{{ID: "a", Op: plan.OpChmod, Path: "x"}}, false, "mode is required"},
		{"symlink needs target", []plan.Step{{ID: "a", Op: plan.OpSymlink, Path: "x"}}, false, "target is required"},
		{"bad mode", []plan.Step{{ID: "a", Op: plan.OpMakeDirectory, Path: "x", Mode: "0999"}}, false, "invalid mode"},
		{"missing dependency", []plan.Step{{ID: "a", Op: plan.OpMakeTree, Path: "x", After: []string{"b"}}}, true, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := plan.Validate(&plan.Manifest{Steps: tc.steps})
			switch {
			case tc.wantDep:
				var de *plan.DependencyError
				require.ErrorAs(t, err, &de)
				assert.Equal(t, []string{"b"}, de.Missing)
			case tc.reason == "":
				assert.NoError(t, err)
			default:
				var ve *plan.ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, tc.reason, ve.Reason)
			}
		})
	}
}

func TestValidateUnknownOpIsUnsupported(t *testing.T) {
	err := plan.Validate(&plan.Manifest{Steps: []plan.Step{{ID: "a", Op: "zip"}}})
	assert.True(t, errors.Is(err, core.UnsupportedOption))
}

func TestOrder(t *testing.T) {
	m, err := plan.Parse(strings.NewReader(installPlan))
	require.NoError(t, err)
	m.Steps = append(m.Steps, plan.Step{ID: "free", Op: plan.OpMakeTree, Path: "/tmp/x"})
	require.NoError(t, plan.Validate(m))

	steps, err := plan.Order(m)
	require.NoError(t, err)
	require.Len(t, steps, 5)

	pos := make(map[string]int)
	for i, s := range steps {
		pos[s.ID] = i
	}
	assert.Less(t, pos["clean"], pos["copy"])
	assert.Less(t, pos["base"], pos["copy"])
	assert.Less(t, pos["copy"], pos["lock"])
	assert.Equal(t, 4, pos["free"])
}

func TestOrderDetectsCycles(t *testing.T) {
	m := &plan.Manifest{Steps: []plan.Step{
		{ID: "a", Op: plan.OpMakeTree, Path: "x", After: []string{"b"}},
		{ID: "b", Op: plan.OpMakeTree, Path: "y", After: []string{"a"}},
	}}
	require.NoError(t, plan.Validate(m))

	_, err := plan.Order(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular dependency")
}
