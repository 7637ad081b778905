package operation

import (
	"time"

	"github.com/congo-pay/txservice/internal/ledger"
	"github.com/congo-pay/txservice/internal/money"
)

// Direction says whether an operation increases or decreases a balance.
type Direction string

const (
	Credit Direction = "CREDIT"
	Debit  Direction = "DEBIT"
)

// ResultCode is the business outcome of an applied operation.
type ResultCode string

const (
	Approved ResultCode = "APPROVED"
	Declined ResultCode = "DECLINED"
)

// Request carries the raw fields extracted by the transport.
type Request struct {
	OperationID string
	UserID      string
	Amount      string
	Currency    string
	Direction   Direction
}

// Operation is a validated request. Amount is already truncated to minor units.
type Operation struct {
	ID        string
	UserID    string
	Amount    money.Money
	Currency  string
	Direction Direction
	CreatedAt time.Time
}

// Key returns the balance the operation mutates.
func (o Operation) Key() ledger.BalanceKey {
	return ledger.BalanceKey{UserID: o.UserID, Currency: o.Currency}
}

// Outcome is returned for every applied operation, approved or declined.
type Outcome struct {
	OperationID string
	UserID      string
	Result      ResultCode
	Balance     money.Money
	Currency    string
	Direction   Direction
}
