// Package idempotency tracks operation identifiers that have already been
// accepted so replays can be rejected before they reach the ledger.
package idempotency

import "sync"

// Log is a set of accepted operation ids. It only grows until Reset.
type Log struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{ids: make(map[string]struct{})}
}

// HasSeen reports whether id was recorded.
func (l *Log) HasSeen(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.ids[id]
	return ok
}

// Record inserts id and reports whether it was new. Concurrent calls with the
// same id see exactly one true.
func (l *Log) Record(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.ids[id]; ok {
		return false
	}
	l.ids[id] = struct{}{}
	return true
}

// Len returns the number of recorded ids.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.ids)
}

// Reset forgets every id.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ids = make(map[string]struct{})
}
