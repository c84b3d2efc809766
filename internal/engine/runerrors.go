package engine

import "sync"

// RunErrorList collects process-level error messages that are not
// attributable to any single task (setup anomalies after execution began,
// transport teardown failures, sink write failures). It is kept apart from
// per-task Failure outcomes and reported under its own heading.
type RunErrorList struct {
	mu   sync.Mutex
	errs []string
}

func (l *RunErrorList) Add(msg string) {
	if msg == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, msg)
}

func (l *RunErrorList) AddError(err error) {
	if err == nil {
		return
	}
	l.Add(err.Error())
}

// Messages returns a copy of the recorded messages.
func (l *RunErrorList) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.errs))
	copy(out, l.errs)
	return out
}
