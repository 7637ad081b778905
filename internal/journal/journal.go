// Package journal records every accepted operation together with its outcome.
// It is write-only: the processor appends, nothing reads it back for
// balances.
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/congo-pay/txservice/internal/operation"
)

// Event is one accepted operation and the outcome it produced.
type Event struct {
	ID          uuid.UUID
	OperationID string
	UserID      string
	Currency    string
	Direction   operation.Direction
	Amount      string
	Result      operation.ResultCode
	Balance     string
	RequestedAt time.Time
	RecordedAt  time.Time
}

// NewEvent pairs a validated operation with its outcome.
func NewEvent(op operation.Operation, out operation.Outcome) Event {
	return Event{
		ID:          uuid.New(),
		OperationID: op.ID,
		UserID:      op.UserID,
		Currency:    op.Currency,
		Direction:   op.Direction,
		Amount:      op.Amount.String(),
		Result:      out.Result,
		Balance:     out.Balance.String(),
		RequestedAt: op.CreatedAt,
		RecordedAt:  time.Now().UTC(),
	}
}

// Journal defines the contract implemented by journal backends.
type Journal interface {
	Append(ctx context.Context, event Event) error
	Reset(ctx context.Context) error
}
