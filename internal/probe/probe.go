// Package probe counts files in a target directory, locally or on a remote
// host, and compares the count against a per-task threshold.
package probe

import (
	"context"
	"fmt"
)

// Outcome is the result of one successful probe.
type Outcome struct {
	// FileCount is the number of immediate file entries in the target
	// directory. Subdirectories are not recursed into and do not count.
	FileCount int

	// TooMany reports whether FileCount exceeds the task's MaxFiles.
	TooMany bool
}

// Prober runs a single file-count check against a directory on a host.
//
// Implementations make exactly one attempt per call; retries are the
// caller's decision (the engine never retries). A non-nil error means the
// probe could not complete: the path does not exist, the session to the
// host could not be established, or enumeration failed.
type Prober interface {
	Probe(ctx context.Context, host, path string, maxFiles int) (Outcome, error)
}

// PathNotFoundError reports that the target path does not exist or is not
// a directory.
type PathNotFoundError struct {
	Path string
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("Path '%s' not found", e.Path)
}

// SessionError reports that a session to the target host could not be
// established or broke before the probe completed.
type SessionError struct {
	Host string
	Err  error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session to %s failed: %v", e.Host, e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }

// EnumerationError reports an I/O failure while listing directory entries.
type EnumerationError struct {
	Path string
	Err  error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("listing %s failed: %v", e.Path, e.Err)
}

func (e *EnumerationError) Unwrap() error { return e.Err }

func outcomeFor(count, maxFiles int) Outcome {
	return Outcome{FileCount: count, TooMany: count > maxFiles}
}
