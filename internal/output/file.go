package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileSink writes an aggregate JSON array or an NDJSON stream of task
// results to a file.
type FileSink struct {
	path    string
	format  string
	file    *os.File
	mu      sync.Mutex
	results []TaskResult
}

func NewFileSink(path string, format string) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("output path required")
	}

	// Infer format if not provided
	if format == "" {
		ext := strings.ToLower(filepath.Ext(path))
		switch ext {
		case ".json":
			format = "json"
		case ".ndjson", ".jsonl":
			format = "ndjson"
		default:
			return nil, fmt.Errorf("cannot infer output format from file extension %q", ext)
		}
	}

	if format != "json" && format != "ndjson" {
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &FileSink{path: path, format: format, file: f}, nil
}

func (s *FileSink) WriteResult(r TaskResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.format {
	case "json":
		s.results = append(s.results, r)
		return nil
	case "ndjson":
		return json.NewEncoder(s.file).Encode(eventFromResult(r))
	default:
		return fmt.Errorf("unsupported output format: %s", s.format)
	}
}

func (s *FileSink) WriteEvent(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format != "ndjson" {
		// The JSON aggregate carries task results only.
		return nil
	}
	return json.NewEncoder(s.file).Encode(ev)
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == "json" {
		encoder := json.NewEncoder(s.file)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(s.results); err != nil {
			_ = s.file.Close()
			return err
		}
	}
	return s.file.Close()
}
