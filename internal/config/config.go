// Package config holds the per-invocation configuration assembled from CLI
// flags, and the app-level settings loaded from environment/config file.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	Input   Input
	Mail    Mail
	Runtime Runtime
	Output  Output
}

type Input struct {
	// TaskFile is the path to the YAML task-list file (see --tasks).
	TaskFile string

	// RunName labels the run in logs and the report footer (see --name).
	// Defaults to the task file's base name.
	RunName string
}

type Mail struct {
	// NoMail builds the report but skips delivery (see --no-mail).
	NoMail bool
}

type Runtime struct {
	// Transport selects how probes reach their target (see --transport).
	// Allowed values: local, ssh.
	Transport string

	// Concurrency overrides the task list's MaxConcurrentJobs when > 0
	// (see --concurrency). 0 means use the task-list value.
	Concurrency int

	// Timeout bounds each probe's transport round trip (see --timeout).
	Timeout time.Duration

	// DryRun prints the resolved tasks without probing or mailing (see --dry-run).
	DryRun bool

	// Verbose enables more detailed diagnostics.
	Verbose bool
}

type Output struct {
	// ConsoleFormat controls the human-facing console sink (see --console-format).
	// Allowed values: text, json, ndjson.
	ConsoleFormat string

	// NoConsole suppresses the console sink (see --no-console).
	NoConsole bool

	// Emit writes an additional structured event stream to stdout (see --emit).
	// Allowed values: json, ndjson.
	Emit []string

	// Out writes structured results to this path (see --out).
	Out string

	// OutFormat selects the format for --out (see --out-format).
	// Allowed values: json, ndjson. If empty, inferred from the extension.
	OutFormat string

	// LogDir is where the JSON run log is written (see --log-dir).
	// Empty disables the file log; events still go to stderr.
	LogDir string

	// LogLevel sets logging verbosity (see --log-level).
	// Allowed values: debug, info, warn, error.
	LogLevel string
}

func New() *Config {
	return &Config{
		Runtime: Runtime{
			Transport: "ssh",
			Timeout:   30 * time.Second,
		},
		Output: Output{
			ConsoleFormat: "text",
			LogLevel:      "info",
		},
	}
}

// Validate checks fields in a fixed order and returns the first violation,
// so error messages are deterministic for a given config.
func (c *Config) Validate() error {
	c.Output.Emit = splitCommaList(c.Output.Emit)

	// Input validation
	if strings.TrimSpace(c.Input.TaskFile) == "" {
		return errors.New("--tasks is required")
	}
	if c.Input.RunName == "" {
		c.Input.RunName = strings.TrimSuffix(filepath.Base(c.Input.TaskFile), filepath.Ext(c.Input.TaskFile))
	}

	// Runtime validation
	c.Runtime.Transport = normalizeEnumValue(c.Runtime.Transport)
	if c.Runtime.Transport != "local" && c.Runtime.Transport != "ssh" {
		return fmt.Errorf("unsupported --transport: %s (must be one of: local, ssh)", c.Runtime.Transport)
	}
	if c.Runtime.Concurrency < 0 {
		return errors.New("--concurrency must be >= 1 (0 = use task-list value)")
	}
	if c.Runtime.Timeout <= 0 {
		return errors.New("--timeout must be > 0")
	}

	// Output validation
	c.Output.ConsoleFormat = normalizeEnumValue(c.Output.ConsoleFormat)
	if c.Output.ConsoleFormat == "" {
		c.Output.ConsoleFormat = "text"
	}
	if c.Output.ConsoleFormat != "text" && c.Output.ConsoleFormat != "json" && c.Output.ConsoleFormat != "ndjson" {
		return fmt.Errorf("unsupported --console-format: %s (must be one of: text, json, ndjson)", c.Output.ConsoleFormat)
	}

	for _, emit := range c.Output.Emit {
		v := normalizeEnumValue(emit)
		if v != "json" && v != "ndjson" {
			return fmt.Errorf("unsupported --emit value: %s (must be one of: json, ndjson)", emit)
		}
	}

	if c.Output.Out != "" {
		c.Output.OutFormat = normalizeEnumValue(c.Output.OutFormat)
		if c.Output.OutFormat == "" {
			ext := strings.ToLower(filepath.Ext(c.Output.Out))
			switch ext {
			case ".json":
				c.Output.OutFormat = "json"
			case ".ndjson", ".jsonl":
				c.Output.OutFormat = "ndjson"
			default:
				return fmt.Errorf("cannot infer output format from file extension %q; use --out-format", ext)
			}
		} else if c.Output.OutFormat != "json" && c.Output.OutFormat != "ndjson" {
			return fmt.Errorf("unsupported --out-format: %s", c.Output.OutFormat)
		}
	}

	c.Output.LogLevel = normalizeEnumValue(c.Output.LogLevel)
	if c.Output.LogLevel == "" {
		c.Output.LogLevel = "info"
	}
	switch c.Output.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported --log-level: %s (must be one of: debug, info, warn, error)", c.Output.LogLevel)
	}

	return nil
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
