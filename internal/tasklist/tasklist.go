// Package tasklist loads and validates the YAML task-list file that drives
// one monitoring run.
package tasklist

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"dirsentry/internal/engine"
)

// document is the raw file schema. Numeric fields are decoded as raw
// scalars so a malformed value like "a" surfaces as a named validation
// error instead of a YAML type error.
type document struct {
	MailTo            string      `yaml:"mailto"`
	MaxConcurrentJobs rawScalar   `yaml:"max_concurrent_jobs"`
	Tasks             []taskEntry `yaml:"tasks"`
}

type taskEntry struct {
	ComputerName string    `yaml:"computer_name"`
	Path         string    `yaml:"path"`
	MaxFiles     rawScalar `yaml:"max_files"`
}

// rawScalar captures a YAML scalar's text whether or not it was quoted, so
// both `max_files: 100` and `max_files: "100"` validate the same way.
type rawScalar string

func (s *rawScalar) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("expected a scalar value, got %v", value.Tag)
	}
	*s = rawScalar(value.Value)
	return nil
}

// TaskList is the validated run input.
type TaskList struct {
	// MailTo is the business recipient list for the operational report.
	MailTo []string

	// MaxConcurrentJobs bounds probe concurrency; 1 means sequential.
	MaxConcurrentJobs int

	// Tasks preserve file order; a task's index is its identity.
	Tasks []engine.Task
}

// Load reads, parses, and validates a task-list file. Validation is
// fail-fast: the first violated rule produces the single returned error,
// and every message names the offending property. Fields are checked in a
// fixed order (MailTo, MaxConcurrentJobs, then each task in file order) so
// the messages are deterministic.
func Load(path string) (*TaskList, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task list: %w", err)
	}
	return Parse(raw)
}

// Parse validates an already-read task-list document. Split from Load so
// tests can feed documents without touching the filesystem.
func Parse(raw []byte) (*TaskList, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse task list: %w", err)
	}

	recipients := splitRecipients(doc.MailTo)
	if len(recipients) == 0 {
		return nil, fmt.Errorf("MailTo is required")
	}

	jobs, err := parsePositiveInt("MaxConcurrentJobs", string(doc.MaxConcurrentJobs), 1)
	if err != nil {
		return nil, err
	}

	tasks := make([]engine.Task, 0, len(doc.Tasks))
	for i, entry := range doc.Tasks {
		task, err := validateTask(i, entry)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return &TaskList{
		MailTo:            recipients,
		MaxConcurrentJobs: jobs,
		Tasks:             tasks,
	}, nil
}

func validateTask(index int, entry taskEntry) (engine.Task, error) {
	if strings.TrimSpace(entry.ComputerName) == "" {
		return engine.Task{}, fmt.Errorf("task %d: ComputerName is required", index+1)
	}
	if strings.TrimSpace(entry.Path) == "" {
		return engine.Task{}, fmt.Errorf("task %d: Path is required", index+1)
	}
	maxFiles, err := parseNonNegativeInt(fmt.Sprintf("task %d: MaxFiles", index+1), string(entry.MaxFiles))
	if err != nil {
		return engine.Task{}, err
	}
	return engine.Task{
		ComputerName: strings.TrimSpace(entry.ComputerName),
		Path:         strings.TrimSpace(entry.Path),
		MaxFiles:     maxFiles,
	}, nil
}

func parsePositiveInt(field, raw string, min int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s needs to be a number, got %q", field, raw)
	}
	if n < min {
		return 0, fmt.Errorf("%s needs to be >= %d, got %d", field, min, n)
	}
	return n, nil
}

func parseNonNegativeInt(field, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s needs to be a number, got %q", field, raw)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s needs to be >= 0, got %d", field, n)
	}
	return n, nil
}

// splitRecipients accepts comma- or semicolon-delimited recipient lists.
func splitRecipients(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	})
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
