package ledger

import "github.com/congo-pay/txservice/internal/money"

// SeedBalance is a test helper that seeds the balance for a key when using the in-memory ledger.
func SeedBalance(l Ledger, key BalanceKey, amount money.Money) {
	if mem, ok := l.(*inMemoryLedger); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.balances[key] = amount
	}
}
