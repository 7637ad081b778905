package journal

import (
	"context"
	"testing"

	"github.com/congo-pay/txservice/internal/money"
	"github.com/congo-pay/txservice/internal/operation"
)

func TestNewEventCopiesOutcome(t *testing.T) {
	op := operation.Operation{
		ID:        "7",
		UserID:    "0",
		Amount:    money.MustParse("0.12"),
		Currency:  "USD",
		Direction: operation.Debit,
	}
	out := operation.Outcome{Result: operation.Declined, Balance: money.Zero()}

	event := NewEvent(op, out)

	if event.OperationID != "7" || event.Direction != operation.Debit {
		t.Fatalf("unexpected event identity: %+v", event)
	}
	if event.Amount != "0.12" || event.Balance != "0.00" {
		t.Fatalf("expected fixed two-decimal amounts, got %s / %s", event.Amount, event.Balance)
	}
	if event.Result != operation.Declined {
		t.Fatalf("expected declined result, got %s", event.Result)
	}
}

func TestMemoryAppendAndReset(t *testing.T) {
	ctx := context.Background()
	j := NewInMemory()

	for _, id := range []string{"1", "2"} {
		if err := j.Append(ctx, Event{OperationID: id}); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}

	events := j.Snapshot()
	if len(events) != 2 || events[0].OperationID != "1" || events[1].OperationID != "2" {
		t.Fatalf("expected events in append order, got %+v", events)
	}

	if err := j.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if j.Len() != 0 {
		t.Fatalf("expected empty journal after reset, got %d", j.Len())
	}
}
