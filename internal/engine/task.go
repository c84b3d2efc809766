package engine

// Task is one configured probe unit: a directory on a host plus the maximum
// number of files allowed in it. Identity is positional (the task's index in
// the configured list); identical tasks are never merged or deduplicated.
type Task struct {
	ComputerName string
	Path         string
	MaxFiles     int
}

// TaskOutcome is the terminal result attached to a task after execution.
// Exactly one outcome exists per task once the executor returns, and it is
// never retried or overwritten.
//
// Err == "" means the probe completed and FileCount/OverThreshold are valid.
// A non-empty Err is the human-readable reason the probe could not complete.
type TaskOutcome struct {
	FileCount     int
	OverThreshold bool
	Err           string
}

// Failed reports whether the task's probe could not complete.
func (o TaskOutcome) Failed() bool { return o.Err != "" }
