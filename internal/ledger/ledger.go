package ledger

import (
	"context"
	"errors"

	"github.com/congo-pay/txservice/internal/money"
)

// ErrInsufficientFunds occurs when a debit would take a balance below zero.
var ErrInsufficientFunds = errors.New("insufficient funds")

// BalanceKey identifies one independent balance.
type BalanceKey struct {
	UserID   string
	Currency string
}

func (k BalanceKey) String() string {
	return k.UserID + "/" + k.Currency
}

// Ledger defines the contract implemented by balance stores. Credit and Debit
// perform their own read-modify-write; callers that need to bundle extra work
// with a mutation hold the key's lock from a Locker around the call.
type Ledger interface {
	// Balance returns the current balance and whether the key has ever been
	// touched. Absent keys read as zero.
	Balance(ctx context.Context, key BalanceKey) (money.Money, bool)
	Credit(ctx context.Context, key BalanceKey, amount money.Money) (money.Money, error)
	// Debit subtracts amount when the result stays non-negative. Otherwise it
	// returns the unchanged balance together with ErrInsufficientFunds.
	Debit(ctx context.Context, key BalanceKey, amount money.Money) (money.Money, error)
	Reset(ctx context.Context)
}
