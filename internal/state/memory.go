package state

import (
	"context"
	"sync"
)

// Memory is a process-local Store. The counter starts at zero.
type Memory struct {
	mu      sync.Mutex
	counter int64
	history []ScriptRecord
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Counter(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counter, nil
}

func (m *Memory) Advance(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.counter
	m.counter++
	return prev, nil
}

func (m *Memory) Reset(_ context.Context, v int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter = v
	return nil
}

func (m *Memory) Record(_ context.Context, rec ScriptRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, rec)
	return nil
}

func (m *Memory) History(_ context.Context, limit int) ([]ScriptRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.history)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]ScriptRecord, 0, n)
	for i := len(m.history) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.history[i])
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }
