package engine

// Finding is one over-threshold task: a probe that completed and found more
// files than the task allows.
type Finding struct {
	Task      Task
	FileCount int
}

// FailedTask is one task whose probe could not complete.
type FailedTask struct {
	Task    Task
	Message string
}

// Summary is the read-only view over all completed tasks plus run-level
// errors. It is built once after the executor's barrier and consumed by the
// report builder; nothing mutates it afterwards.
type Summary struct {
	// Findings and Failed preserve original task-list order.
	Findings  []Finding
	Failed    []FailedTask
	RunErrors []string

	// TotalFilesOverThreshold sums FileCount over the over-threshold tasks
	// only; tasks at or below their threshold contribute nothing.
	TotalFilesOverThreshold int
}

// Aggregate partitions completed tasks into over-threshold findings and
// failures. tasks and outcomes are parallel slices; outcomes[i] belongs to
// tasks[i].
func Aggregate(tasks []Task, outcomes []TaskOutcome, runErrors []string) Summary {
	s := Summary{RunErrors: runErrors}
	for i, task := range tasks {
		out := outcomes[i]
		if out.Failed() {
			s.Failed = append(s.Failed, FailedTask{Task: task, Message: out.Err})
			continue
		}
		if out.OverThreshold {
			s.Findings = append(s.Findings, Finding{Task: task, FileCount: out.FileCount})
			s.TotalFilesOverThreshold += out.FileCount
		}
	}
	return s
}

// ErrorCount is the number of failed tasks plus run-level errors. The two
// sources stay in separate report sections; this count only drives the
// subject line and exit code.
func (s Summary) ErrorCount() int {
	return len(s.Failed) + len(s.RunErrors)
}

// Empty reports whether there is nothing to notify about: no over-threshold
// findings, no failed tasks, and no run errors.
func (s Summary) Empty() bool {
	return len(s.Findings) == 0 && s.ErrorCount() == 0
}
