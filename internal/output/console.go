package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

var (
	okLabel    = color.New(color.FgGreen).SprintFunc()
	overLabel  = color.New(color.FgYellow, color.Bold).SprintFunc()
	errorLabel = color.New(color.FgRed, color.Bold).SprintFunc()
)

type ConsoleSink struct {
	writer  io.Writer
	format  string // "text", "json", "ndjson"
	mu      sync.Mutex
	results []TaskResult // for JSON array output
}

func NewConsoleSink(w io.Writer, format string) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	if format == "" {
		format = "text"
	}
	return &ConsoleSink{writer: w, format: format}
}

func (s *ConsoleSink) WriteResult(r TaskResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.format {
	case "json":
		s.results = append(s.results, r)
		return nil
	case "ndjson":
		return json.NewEncoder(s.writer).Encode(eventFromResult(r))
	case "text":
		return s.writeTextLocked(r)
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

func (s *ConsoleSink) WriteEvent(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.format {
	case "ndjson":
		return json.NewEncoder(s.writer).Encode(ev)
	case "json", "text":
		// Lifecycle events only appear in the streaming format.
		return nil
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

func (s *ConsoleSink) writeTextLocked(r TaskResult) error {
	var err error
	switch r.Status {
	case StatusOK:
		_, err = fmt.Fprintf(s.writer, "[%s] %s %s: %d files (max %d)\n",
			okLabel(string(r.Status)), r.ComputerName, r.Path, r.FileCount, r.MaxFiles)
	case StatusOver:
		_, err = fmt.Fprintf(s.writer, "[%s] %s %s: %d files (max %d)\n",
			overLabel(string(r.Status)), r.ComputerName, r.Path, r.FileCount, r.MaxFiles)
	case StatusError:
		_, err = fmt.Fprintf(s.writer, "[%s] %s %s: %s\n",
			errorLabel(string(r.Status)), r.ComputerName, r.Path, r.Message)
	default:
		return fmt.Errorf("unsupported result status: %s", r.Status)
	}
	return err
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == "json" {
		encoder := json.NewEncoder(s.writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(s.results)
	}
	if s.format != "text" && s.format != "ndjson" {
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
	return nil
}
