package plan

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/pathfs/pkg/pathfs"
	"github.com/arthur-debert/pathfs/pkg/pathfs/permissions"
)

// Status is the outcome of one step.
type Status string

const (
	StatusDone    Status = "done"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
	// StatusPending marks steps that did not run because an earlier step
	// failed or the run was cancelled.
	StatusPending Status = "pending"
	// StatusPlanned marks steps of a dry run.
	StatusPlanned Status = "planned"
)

// Result records what happened to one step.
type Result struct {
	Step     Step
	Status   Status
	Err      error
	Duration time.Duration
}

// Report lists the results of a run in execution order.
type Report struct {
	Description string
	Results     []Result
}

// Failed returns the result of the failed step, if any.
func (r *Report) Failed() (Result, bool) {
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			return res, true
		}
	}
	return Result{}, false
}

// Executor applies plans to a filesystem.
type Executor struct {
	fs     *pathfs.FS
	logger zerolog.Logger
	dryRun bool
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithDryRun makes the executor order and report steps without running
// them.
func WithDryRun(dryRun bool) ExecutorOption {
	return func(e *Executor) { e.dryRun = dryRun }
}

// NewExecutor returns an executor bound to f, logging through f's logger.
func NewExecutor(f *pathfs.FS, opts ...ExecutorOption) *Executor {
	e := &Executor{fs: f, logger: f.Logger()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run validates and orders m, then applies its steps one at a time. Run
// stops at the first failing step; the steps already applied are not
// undone. The report covers every step and the returned error is a
// *StepError for the failed step.
func (e *Executor) Run(ctx context.Context, m *Manifest) (*Report, error) {
	if err := Validate(m); err != nil {
		return nil, err
	}
	steps, err := Order(m)
	if err != nil {
		return nil, err
	}

	report := &Report{Description: m.Description, Results: make([]Result, 0, len(steps))}
	var runErr error
	for _, step := range steps {
		if runErr == nil {
			if cerr := ctx.Err(); cerr != nil {
				runErr = cerr
			}
		}
		if runErr != nil {
			report.Results = append(report.Results, Result{Step: step, Status: StatusPending})
			continue
		}

		res := e.runStep(step)
		report.Results = append(report.Results, res)
		if res.Status == StatusFailed {
			runErr = &StepError{Step: step, Err: res.Err}
		}
	}
	return report, runErr
}

func (e *Executor) runStep(step Step) Result {
	logger := e.logger.With().Str("step", step.ID).Str("op", string(step.Op)).Logger()
	if e.dryRun {
		logger.Info().Str("subject", step.Subject()).Msg("planned")
		return Result{Step: step, Status: StatusPlanned}
	}

	start := time.Now()
	skipped, err := e.apply(step)
	res := Result{Step: step, Status: StatusDone, Err: err, Duration: time.Since(start)}
	switch {
	case err != nil:
		res.Status = StatusFailed
		logger.Warn().Err(err).Str("subject", step.Subject()).Msg("step failed")
	case skipped:
		res.Status = StatusSkipped
		logger.Info().Str("subject", step.Subject()).Msg("step skipped")
	default:
		logger.Info().Str("subject", step.Subject()).Dur("duration", res.Duration).Msg("step done")
	}
	return res
}

func (e *Executor) apply(step Step) (skipped bool, err error) {
	switch step.Op {
	case OpMakeTree:
		return false, e.fs.MakeTree(step.Path)
	case OpMakeDirectory:
		var perm *permissions.Permissions
		if step.Mode != "" {
			p, err := permissions.Parse(step.Mode)
			if err != nil {
				return false, err
			}
			perm = &p
		}
		return false, e.fs.MakeDirectory(step.Path, perm)
	case OpCopyTree:
		return false, e.fs.CopyTree(step.From, step.To)
	case OpRemoveTree:
		if step.MissingOK && !e.fs.IsLink(step.Path) && !e.fs.Exists(step.Path) {
			return true, nil
		}
		return false, e.fs.RemoveTree(step.Path)
	case OpChmod:
		p, err := permissions.Parse(step.Mode)
		if err != nil {
			return false, err
		}
		return false, e.fs.ChangePermissions(step.Path, p)
	case OpSymlink:
		return false, e.fs.SymbolicLink(step.Target, step.Path)
	}
	return false, &ValidationError{Step: step, Reason: "unknown op"}
}
