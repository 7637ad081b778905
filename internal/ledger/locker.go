package ledger

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

const defaultStripes = 256

// Locker hands out per-key exclusive locks from a fixed set of stripes. Two
// keys on the same stripe serialize; one key always maps to one stripe.
type Locker struct {
	stripes []sync.Mutex
}

// NewLocker builds a Locker with n stripes; n <= 0 selects the default.
func NewLocker(n int) *Locker {
	if n <= 0 {
		n = defaultStripes
	}
	return &Locker{stripes: make([]sync.Mutex, n)}
}

// Lock acquires the stripe for key and returns its release func.
func (l *Locker) Lock(key BalanceKey) func() {
	mu := &l.stripes[l.stripe(key)]
	mu.Lock()
	return mu.Unlock
}

func (l *Locker) stripe(key BalanceKey) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(key.UserID)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(key.Currency)
	return h.Sum64() % uint64(len(l.stripes))
}
