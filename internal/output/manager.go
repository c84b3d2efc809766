package output

import (
	"errors"
	"fmt"
)

// Sink is a destination for a run's records. Per-task results and run
// lifecycle events arrive through separate methods so each sink decides
// which of the two it renders; Close flushes whatever the sink buffered.
type Sink interface {
	WriteResult(r TaskResult) error
	WriteEvent(ev Event) error
	Close() error
}

// Manager fans each record out to every registered sink. One sink failing
// never stops delivery to the others; the joined error carries every failure.
type Manager struct {
	sinks []Sink
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) AddSink(s Sink) error {
	if m == nil {
		return fmt.Errorf("output manager is nil")
	}
	if s == nil {
		return fmt.Errorf("sink must not be nil")
	}
	m.sinks = append(m.sinks, s)
	return nil
}

// WriteResult delivers one task's result to every sink.
func (m *Manager) WriteResult(r TaskResult) error {
	return m.each("write result", func(s Sink) error { return s.WriteResult(r) })
}

// WriteEvent delivers a run lifecycle event to every sink.
func (m *Manager) WriteEvent(ev Event) error {
	return m.each("write event", func(s Sink) error { return s.WriteEvent(ev) })
}

// Close flushes and closes every sink, even when earlier ones fail.
func (m *Manager) Close() error {
	return m.each("close", func(s Sink) error { return s.Close() })
}

func (m *Manager) each(op string, fn func(Sink) error) error {
	if m == nil {
		return fmt.Errorf("output manager is nil")
	}
	var errs []error
	for _, s := range m.sinks {
		if err := fn(s); err != nil {
			errs = append(errs, fmt.Errorf("%s %T: %w", op, s, err))
		}
	}
	return errors.Join(errs...)
}
