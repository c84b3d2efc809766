package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"dirsentry/internal/probe"
)

// Executor runs the probe once per task with at most `limit` probes in
// flight. A limit of 1 means strictly sequential execution in task-list
// order; that ordering guarantee holds only in the sequential case.
type Executor struct {
	prober probe.Prober
	limit  int
}

func NewExecutor(p probe.Prober, limit int) (*Executor, error) {
	if p == nil {
		return nil, errors.New("prober is nil")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("concurrency limit must be >= 1, got %d", limit)
	}
	return &Executor{prober: p, limit: limit}, nil
}

// Execute probes every task and returns one outcome per task, indexed in
// task order. It is a synchronous barrier: it returns only after every task
// has a terminal outcome. One task's failure never cancels or fails the
// others; probe errors become that task's Failure outcome.
//
// An empty task list completes immediately with no outcomes.
func (e *Executor) Execute(ctx context.Context, tasks []Task) []TaskOutcome {
	outcomes := make([]TaskOutcome, len(tasks))
	if len(tasks) == 0 {
		return outcomes
	}

	// Each outcome slot is written by exactly the worker that ran its probe,
	// so the slice needs no locking.
	sem := make(chan struct{}, e.limit)
	var wg sync.WaitGroup

	for i, task := range tasks {
		sem <- struct{}{}

		wg.Add(1)
		go func(i int, task Task) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[i] = e.runOne(ctx, task)
		}(i, task)
	}

	wg.Wait()
	return outcomes
}

func (e *Executor) runOne(ctx context.Context, task Task) (out TaskOutcome) {
	// A panicking prober must not take sibling tasks down with it; record
	// the panic as this task's failure.
	defer func() {
		if r := recover(); r != nil {
			out = TaskOutcome{Err: fmt.Sprintf("probe panicked: %v", r)}
		}
	}()

	res, err := e.prober.Probe(ctx, task.ComputerName, task.Path, task.MaxFiles)
	if err != nil {
		return TaskOutcome{Err: err.Error()}
	}
	return TaskOutcome{FileCount: res.FileCount, OverThreshold: res.TooMany}
}
