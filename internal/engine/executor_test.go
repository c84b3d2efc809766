package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirsentry/internal/probe"
)

// fakeProber routes every call through a configurable func.
type fakeProber struct {
	fn func(host, path string, maxFiles int) (probe.Outcome, error)
}

func (f *fakeProber) Probe(ctx context.Context, host, path string, maxFiles int) (probe.Outcome, error) {
	return f.fn(host, path, maxFiles)
}

func countingProber(counts map[string]int) *fakeProber {
	return &fakeProber{fn: func(host, path string, maxFiles int) (probe.Outcome, error) {
		n, ok := counts[path]
		if !ok {
			return probe.Outcome{}, &probe.PathNotFoundError{Path: path}
		}
		return probe.Outcome{FileCount: n, TooMany: n > maxFiles}, nil
	}}
}

func makeTasks(n int) []Task {
	tasks := make([]Task, n)
	for i := range tasks {
		tasks[i] = Task{ComputerName: "host", Path: fmt.Sprintf("/dir/%d", i), MaxFiles: 5}
	}
	return tasks
}

func TestNewExecutor_RejectsBadInputs(t *testing.T) {
	_, err := NewExecutor(nil, 1)
	require.Error(t, err)

	_, err = NewExecutor(&fakeProber{}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ">= 1")
}

func TestExecute_EveryTaskGetsExactlyOneOutcome(t *testing.T) {
	tasks := []Task{
		{ComputerName: "a", Path: "/ok", MaxFiles: 10},
		{ComputerName: "b", Path: "/over", MaxFiles: 2},
		{ComputerName: "c", Path: "/missing", MaxFiles: 0},
	}
	exec, err := NewExecutor(countingProber(map[string]int{"/ok": 3, "/over": 7}), 2)
	require.NoError(t, err)

	outcomes := exec.Execute(context.Background(), tasks)
	require.Len(t, outcomes, 3)

	assert.False(t, outcomes[0].Failed())
	assert.Equal(t, 3, outcomes[0].FileCount)
	assert.False(t, outcomes[0].OverThreshold)

	assert.False(t, outcomes[1].Failed())
	assert.Equal(t, 7, outcomes[1].FileCount)
	assert.True(t, outcomes[1].OverThreshold)

	require.True(t, outcomes[2].Failed())
	assert.Equal(t, "Path '/missing' not found", outcomes[2].Err)
}

func TestExecute_EmptyTaskListCompletesImmediately(t *testing.T) {
	exec, err := NewExecutor(&fakeProber{fn: func(string, string, int) (probe.Outcome, error) {
		t.Fatal("prober must not be called for an empty task list")
		return probe.Outcome{}, nil
	}}, 4)
	require.NoError(t, err)

	outcomes := exec.Execute(context.Background(), nil)
	assert.Empty(t, outcomes)
}

func TestExecute_SequentialModeRunsInTaskOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string

	prober := &fakeProber{fn: func(host, path string, maxFiles int) (probe.Outcome, error) {
		mu.Lock()
		order = append(order, path)
		mu.Unlock()
		return probe.Outcome{FileCount: 1}, nil
	}}

	tasks := makeTasks(8)
	exec, err := NewExecutor(prober, 1)
	require.NoError(t, err)
	exec.Execute(context.Background(), tasks)

	require.Len(t, order, len(tasks))
	for i, task := range tasks {
		assert.Equal(t, task.Path, order[i], "sequential mode must preserve input order")
	}
}

func TestExecute_NeverExceedsConcurrencyLimit(t *testing.T) {
	const limit = 3
	var inFlight, peak atomic.Int32

	prober := &fakeProber{fn: func(host, path string, maxFiles int) (probe.Outcome, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
		return probe.Outcome{FileCount: 1}, nil
	}}

	exec, err := NewExecutor(prober, limit)
	require.NoError(t, err)
	exec.Execute(context.Background(), makeTasks(24))

	assert.LessOrEqual(t, peak.Load(), int32(limit), "in-flight probes exceeded the limit")
	assert.Equal(t, int32(limit), peak.Load(), "pool never filled; limit not exercised")
}

func TestExecute_OneFailureDoesNotAffectSiblings(t *testing.T) {
	tasks := []Task{
		{ComputerName: "a", Path: "/one", MaxFiles: 1},
		{ComputerName: "b", Path: "/gone", MaxFiles: 1},
		{ComputerName: "c", Path: "/three", MaxFiles: 1},
	}
	exec, err := NewExecutor(countingProber(map[string]int{"/one": 4, "/three": 9}), 3)
	require.NoError(t, err)

	outcomes := exec.Execute(context.Background(), tasks)

	assert.Equal(t, 4, outcomes[0].FileCount)
	assert.True(t, outcomes[1].Failed())
	assert.Equal(t, 9, outcomes[2].FileCount)
}

func TestExecute_PanickingProbeBecomesTaskFailure(t *testing.T) {
	prober := &fakeProber{fn: func(host, path string, maxFiles int) (probe.Outcome, error) {
		if path == "/boom" {
			panic("transport blew up")
		}
		return probe.Outcome{FileCount: 2}, nil
	}}
	tasks := []Task{
		{ComputerName: "a", Path: "/fine", MaxFiles: 5},
		{ComputerName: "b", Path: "/boom", MaxFiles: 5},
	}
	exec, err := NewExecutor(prober, 2)
	require.NoError(t, err)

	outcomes := exec.Execute(context.Background(), tasks)
	assert.False(t, outcomes[0].Failed())
	require.True(t, outcomes[1].Failed())
	assert.Contains(t, outcomes[1].Err, "transport blew up")
}
