// Package logging prepares the structured logger for one monitoring run.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Setup builds the run logger. Events go to stderr as text; when dir is
// non-empty a JSON run log file is also written there, named with the run
// timestamp and ID. Failure to prepare the log directory or file is a setup
// error: the caller aborts the run and routes it to the admin notification.
//
// The returned closer flushes and closes the run log file; it is safe to
// call when no file was opened.
func Setup(dir, level, runID string) (*slog.Logger, func() error, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	closer := func() error { return nil }
	var w io.Writer = os.Stderr

	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("prepare log directory: %w", err)
		}
		name := fmt.Sprintf("run-%s-%s.log", time.Now().Format("20060102-150405"), shortID(runID))
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("create run log file: %w", err)
		}
		closer = f.Close

		fileLogger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: lvl}))
		stderrLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
		return slog.New(teeHandler{fileLogger.Handler(), stderrLogger.Handler()}).With("run_id", runID), closer, nil
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	return logger.With("run_id", runID), closer, nil
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unsupported log level: %s", level)
	}
}

func shortID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}
