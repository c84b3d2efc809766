package output

// Status classifies one completed task for display purposes.
type Status string

const (
	// StatusOK: probe completed, file count at or below the threshold.
	StatusOK Status = "OK"
	// StatusOver: probe completed, file count above the threshold.
	StatusOver Status = "OVER"
	// StatusError: probe failed; Message carries the reason.
	StatusError Status = "ERROR"
)

// TaskResult is the per-task record written to sinks.
type TaskResult struct {
	Index        int    `json:"index"`
	ComputerName string `json:"computer_name"`
	Path         string `json:"path"`
	MaxFiles     int    `json:"max_files"`
	FileCount    int    `json:"file_count"`
	Status       Status `json:"status"`
	Message      string `json:"message,omitempty"`
}
