package ledger

import (
	"context"
	"sync"

	"github.com/congo-pay/txservice/internal/money"
)

type inMemoryLedger struct {
	mu       sync.RWMutex
	balances map[BalanceKey]money.Money
}

// NewInMemory creates a concurrency-safe in-memory ledger.
func NewInMemory() Ledger {
	return &inMemoryLedger{
		balances: make(map[BalanceKey]money.Money),
	}
}

func (l *inMemoryLedger) Balance(_ context.Context, key BalanceKey) (money.Money, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	balance, exists := l.balances[key]
	return balance, exists
}

func (l *inMemoryLedger) Credit(_ context.Context, key BalanceKey, amount money.Money) (money.Money, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance := l.balances[key].Add(amount)
	l.balances[key] = balance
	return balance, nil
}

func (l *inMemoryLedger) Debit(_ context.Context, key BalanceKey, amount money.Money) (money.Money, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, exists := l.balances[key]
	if !exists {
		return money.Zero(), ErrInsufficientFunds
	}

	next := current.Sub(amount)
	if next.IsNegative() {
		return current, ErrInsufficientFunds
	}

	l.balances[key] = next
	return next, nil
}

func (l *inMemoryLedger) Reset(_ context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances = make(map[BalanceKey]money.Money)
}
