package engine

import (
	"context"
	"io"
	"log/slog"

	"dirsentry/internal/output"
	"dirsentry/internal/probe"
)

// ExitCodeForRun maps run state to the process exit code.
//
// Exit code contract:
// 0 = clean run, nothing over threshold
// 1 = over-threshold findings
// 2 = partial failure (some tasks or the run errored)
// 3 = fatal error (the run did not execute)
func ExitCodeForRun(fatal, partial, findings bool) int {
	if fatal {
		return 3
	}
	if partial {
		return 2
	}
	if findings {
		return 1
	}
	return 0
}

// Engine drives one monitoring run: fan the probes out through the bounded
// executor, record per-task results to the output sinks, log failures, and
// reduce everything to a Summary for the report builder.
type Engine struct {
	Prober probe.Prober
	Out    *output.Manager
	Log    *slog.Logger
	RunID  string
}

func New(p probe.Prober, out *output.Manager, log *slog.Logger, runID string) *Engine {
	return &Engine{Prober: p, Out: out, Log: log, RunID: runID}
}

// Run executes every task and returns the aggregated summary plus the exit
// code. Task failures never abort the run; by the time Run returns, every
// task has exactly one outcome reflected in the summary.
func (e *Engine) Run(ctx context.Context, tasks []Task, limit int) (Summary, int) {
	runErrs := &RunErrorList{}

	exec, err := NewExecutor(e.Prober, limit)
	if err != nil {
		// Caller-validated inputs make this unreachable in practice; treat
		// it as fatal rather than guessing at a partial run.
		e.Log.Error("executor setup failed", "error", err)
		return Summary{RunErrors: []string{err.Error()}}, ExitCodeForRun(true, false, false)
	}

	// A sink rejecting records is a run-level problem, not any task's fault.
	if werr := e.Out.WriteEvent(output.Event{Type: "run.started", RunID: e.RunID, Tasks: len(tasks)}); werr != nil {
		runErrs.AddError(werr)
	}

	outcomes := exec.Execute(ctx, tasks)

	for i, task := range tasks {
		res := resultFor(i, task, outcomes[i])
		if werr := e.Out.WriteResult(res); werr != nil {
			runErrs.AddError(werr)
		}
		if outcomes[i].Failed() {
			e.Log.Error("task failed",
				"task", i+1,
				"computer_name", task.ComputerName,
				"path", task.Path,
				"error", outcomes[i].Err)
		}
	}

	// The SSH prober holds pooled host connections; tear them down before
	// aggregation so close failures land in the run-error section.
	if c, ok := e.Prober.(io.Closer); ok {
		if cerr := c.Close(); cerr != nil {
			runErrs.AddError(cerr)
		}
	}

	for _, msg := range runErrs.Messages() {
		e.Log.Error("run error", "error", msg)
	}

	sum := Aggregate(tasks, outcomes, runErrs.Messages())
	code := ExitCodeForRun(false, sum.ErrorCount() > 0, len(sum.Findings) > 0)

	// The summary is already sealed here, so a failed closing event can only
	// be logged.
	if werr := e.Out.WriteEvent(output.Event{
		Type:      "run.finished",
		RunID:     e.RunID,
		Tasks:     len(tasks),
		Errors:    sum.ErrorCount(),
		OverTotal: sum.TotalFilesOverThreshold,
		ExitCode:  code,
	}); werr != nil {
		e.Log.Error("run event write failed", "type", "run.finished", "error", werr)
	}
	return sum, code
}

func resultFor(index int, task Task, out TaskOutcome) output.TaskResult {
	res := output.TaskResult{
		Index:        index,
		ComputerName: task.ComputerName,
		Path:         task.Path,
		MaxFiles:     task.MaxFiles,
	}
	switch {
	case out.Failed():
		res.Status = output.StatusError
		res.Message = out.Err
	case out.OverThreshold:
		res.Status = output.StatusOver
		res.FileCount = out.FileCount
	default:
		res.Status = output.StatusOK
		res.FileCount = out.FileCount
	}
	return res
}
