package output

// Event is a lifecycle record for NDJSON streaming output.
//
// In NDJSON mode, sinks emit Events (one JSON object per line), including:
// - run.started
// - task.result
// - run.finished
//
// JSON mode remains an aggregate of TaskResult values.
type Event struct {
	Type  string `json:"type"`
	RunID string `json:"run_id,omitempty"`
	*TaskResult
	Tasks     int `json:"tasks,omitempty"`
	Errors    int `json:"errors,omitempty"`
	OverTotal int `json:"files_over_threshold,omitempty"`
	ExitCode  int `json:"exit_code,omitempty"`
}

func eventFromResult(r TaskResult) Event {
	return Event{Type: "task.result", TaskResult: &r}
}
