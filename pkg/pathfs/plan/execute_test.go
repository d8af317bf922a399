package plan_test

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"syscall"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/pathfs/pkg/pathfs"
	"github.com/arthur-debert/pathfs/pkg/pathfs/core"
	"github.com/arthur-debert/pathfs/pkg/pathfs/filesystem"
	"github.com/arthur-debert/pathfs/pkg/pathfs/plan"
)

func newTarget(t *testing.T) (*pathfs.FS, *filesystem.MemFS) {
	t.Helper()
	mem := filesystem.NewMemFS()
	require.NoError(t, mem.MkdirAll("/build/docs/api", 0o755))
	require.NoError(t, mem.WriteFile("/build/docs/index.md", []byte("# docs"), 0o644))
	require.NoError(t, mem.WriteFile("/build/docs/api/ref.md", []byte("ref"), 0o644))
	return pathfs.New(mem, pathfs.WithLogger(zerolog.Nop())), mem
}

func statuses(r *plan.Report) map[string]plan.Status {
	out := make(map[string]plan.Status)
	for _, res := range r.Results {
		out[res.Step.ID] = res.Status
	}
	return out
}

func TestRunAppliesPlan(t *testing.T) {
	f, mem := newTarget(t)
	m, err := plan.Parse(strings.NewReader(installPlan + `
  - id: current
    op: symlink
    path: /opt/current
    target: app/docs
    after: [copy]
`))
	require.NoError(t, err)

	report, err := plan.NewExecutor(f).Run(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, "install docs", report.Description)
	assert.Equal(t, map[string]plan.Status{
		"clean":   plan.StatusSkipped,
		"base":    plan.StatusDone,
		"copy":    plan.StatusDone,
		"lock":    plan.StatusDone,
		"current": plan.StatusDone,
	}, statuses(report))
	_, failed := report.Failed()
	assert.False(t, failed)

	data, err := mem.ReadFile("/opt/app/docs/api/ref.md")
	require.NoError(t, err)
	assert.Equal(t, "ref", string(data))

	p, err := f.Permissions("/opt/app/docs")
	require.NoError(t, err)
	assert.Equal(t, uint32(0o750), p.ToNumber())

	assert.True(t, f.IsFile("/opt/current/index.md"))
}

func TestRunReplacesExistingTree(t *testing.T) {
	f, mem := newTarget(t)
	require.NoError(t, mem.MkdirAll("/opt/app/docs/stale", 0o755))

	m, err := plan.Parse(strings.NewReader(installPlan))
	require.NoError(t, err)

	report, err := plan.NewExecutor(f).Run(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, plan.StatusDone, statuses(report)["clean"])
	assert.False(t, f.Exists("/opt/app/docs/stale"))
	assert.True(t, f.IsFile("/opt/app/docs/index.md"))
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	f, mem := newTarget(t)
	mem.FailOn("CopyFile", "/build/docs/index.md", syscall.EIO)

	m, err := plan.Parse(strings.NewReader(installPlan))
	require.NoError(t, err)

	report, err := plan.NewExecutor(f).Run(context.Background(), m)
	require.Error(t, err)

	var se *plan.StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "copy", se.Step.ID)
	assert.True(t, errors.Is(err, core.CopyFailed))

	st := statuses(report)
	assert.Equal(t, plan.StatusDone, st["base"])
	assert.Equal(t, plan.StatusFailed, st["copy"])
	assert.Equal(t, plan.StatusPending, st["lock"])

	res, failed := report.Failed()
	require.True(t, failed)
	assert.Equal(t, "copy", res.Step.ID)

	// Partial application stays in place.
	assert.True(t, f.IsDirectory("/opt/app/docs"))
}

func TestRunRemoveTreeMissingFails(t *testing.T) {
	f, _ := newTarget(t)
	m := &plan.Manifest{Steps: []plan.Step{{ID: "rm", Op: plan.OpRemoveTree, Path: "/nowhere"}}}

	report, err := plan.NewExecutor(f).Run(context.Background(), m)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.RemoveFailed))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Equal(t, plan.StatusFailed, statuses(report)["rm"])
}

func TestRunMakeDirectoryWithMode(t *testing.T) {
	f, _ := newTarget(t)
	m := &plan.Manifest{Steps: []plan.Step{
		{ID: "dir", Op: plan.OpMakeDirectory, Path: "/private", Mode: "rwx------"},
	}}

	_, err := plan.NewExecutor(f).Run(context.Background(), m)
	require.NoError(t, err)
	p, err := f.Permissions("/private")
	require.NoError(t, err)
	assert.Equal(t, uint32(0o700), p.ToNumber())
}

func TestRunDryRun(t *testing.T) {
	f, _ := newTarget(t)
	m, err := plan.Parse(strings.NewReader(installPlan))
	require.NoError(t, err)

	report, err := plan.NewExecutor(f, plan.WithDryRun(true)).Run(context.Background(), m)
	require.NoError(t, err)
	for _, res := range report.Results {
		assert.Equal(t, plan.StatusPlanned, res.Status, res.Step.ID)
	}
	assert.False(t, f.Exists("/opt"))
}

func TestRunCancelled(t *testing.T) {
	f, _ := newTarget(t)
	m, err := plan.Parse(strings.NewReader(installPlan))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := plan.NewExecutor(f).Run(ctx, m)
	assert.ErrorIs(t, err, context.Canceled)
	for _, res := range report.Results {
		assert.Equal(t, plan.StatusPending, res.Status)
	}
	assert.False(t, f.Exists("/opt"))
}

func TestRunRejectsInvalidPlan(t *testing.T) {
	f, _ := newTarget(t)
	m := &plan.Manifest{Steps: []plan.Step{{ID: "a", Op: plan.OpCopyTree, From: "/build/docs"}}}

	report, err := plan.NewExecutor(f).Run(context.Background(), m)
	assert.Nil(t, report)
	var ve *plan.ValidationError
	assert.ErrorAs(t, err, &ve)
}
