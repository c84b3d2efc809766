package probe

import (
	"context"
	"errors"
	"io/fs"
	"os"
)

// Local probes directories on the machine dirsentry runs on. The host field
// of a task is ignored; it exists so local and remote probes share one
// contract.
type Local struct{}

func NewLocal() *Local { return &Local{} }

func (l *Local) Probe(ctx context.Context, host, path string, maxFiles int) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Outcome{}, &PathNotFoundError{Path: path}
		}
		return Outcome{}, &EnumerationError{Path: path, Err: err}
	}
	if !info.IsDir() {
		return Outcome{}, &PathNotFoundError{Path: path}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return Outcome{}, &EnumerationError{Path: path, Err: err}
	}

	count := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		count++
	}
	return outcomeFor(count, maxFiles), nil
}
