package journal

import (
	"context"
	"sync"
)

// Memory keeps events in process memory.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

// NewInMemory creates an empty in-memory journal.
func NewInMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(_ context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
	return nil
}

// Len returns the number of recorded events.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

// Snapshot copies the recorded events, oldest first. Used by tests.
func (m *Memory) Snapshot() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}
