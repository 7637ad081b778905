// Package processor is the single entry point for balance mutations. It
// validates inbound operations, rejects replays, applies credits and debits
// under per-key exclusion and reports the outcome.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/congo-pay/txservice/internal/idempotency"
	"github.com/congo-pay/txservice/internal/journal"
	"github.com/congo-pay/txservice/internal/ledger"
	"github.com/congo-pay/txservice/internal/metrics"
	"github.com/congo-pay/txservice/internal/notification"
	"github.com/congo-pay/txservice/internal/operation"
)

const (
	kindLoad          = "load"
	kindAuthorization = "authorization"
)

// Options configures a Processor. Nil fields fall back to in-memory or no-op
// implementations.
type Options struct {
	Ledger   ledger.Ledger
	Journal  journal.Journal
	Notifier notification.Notifier
	Metrics  metrics.Recorder
	Logger   *slog.Logger
	// Stripes is the number of per-key lock stripes; 0 uses the default.
	Stripes int
}

// Processor owns the ledger and the idempotency log. Construct one per
// process and share it between handlers.
type Processor struct {
	// gate is held shared by every operation and exclusively by Reset.
	gate sync.RWMutex

	ledger   ledger.Ledger
	locks    *ledger.Locker
	seen     *idempotency.Log
	journal  journal.Journal
	notifier notification.Notifier
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// New builds a Processor from opts.
func New(opts Options) *Processor {
	p := &Processor{
		ledger:   opts.Ledger,
		locks:    ledger.NewLocker(opts.Stripes),
		seen:     idempotency.NewLog(),
		journal:  opts.Journal,
		notifier: opts.Notifier,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
	}
	if p.ledger == nil {
		p.ledger = ledger.NewInMemory()
	}
	if p.journal == nil {
		p.journal = journal.NewInMemory()
	}
	if p.metrics == nil {
		p.metrics = metrics.Noop{}
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// SubmitCredit validates and applies a load. A validated credit is always approved.
func (p *Processor) SubmitCredit(ctx context.Context, req operation.Request) (operation.Outcome, error) {
	return p.submit(ctx, req, operation.Credit)
}

// SubmitDebit validates and applies an authorization. Insufficient funds
// yield a DECLINED outcome, not an error.
func (p *Processor) SubmitDebit(ctx context.Context, req operation.Request) (operation.Outcome, error) {
	return p.submit(ctx, req, operation.Debit)
}

// HasSeen reports whether an operation id was already accepted.
func (p *Processor) HasSeen(id string) bool {
	return p.seen.HasSeen(id)
}

// Reset clears balances, accepted ids and the journal. It waits for in-flight
// operations and blocks new ones until done.
func (p *Processor) Reset(ctx context.Context) error {
	p.gate.Lock()
	defer p.gate.Unlock()

	p.ledger.Reset(ctx)
	p.seen.Reset()
	p.metrics.ObserveReset()
	if err := p.journal.Reset(ctx); err != nil {
		return fmt.Errorf("reset journal: %w", err)
	}

	p.logger.Info("processor state reset")
	return nil
}

func (p *Processor) submit(ctx context.Context, req operation.Request, dir operation.Direction) (operation.Outcome, error) {
	kind := kindFor(dir)
	start := time.Now()

	p.gate.RLock()
	defer p.gate.RUnlock()

	op, err := operation.Validate(req, dir, p.seen)
	if err != nil {
		p.reject(kind, req, err)
		return operation.Outcome{}, err
	}

	out, err := p.apply(ctx, op)
	if err != nil {
		p.reject(kind, req, err)
		return operation.Outcome{}, err
	}

	p.metrics.ObserveOutcome(kind, string(out.Result), time.Since(start))
	p.notify(ctx, op, out)

	p.logger.Debug("operation applied",
		slog.String("kind", kind),
		slog.String("operation_id", op.ID),
		slog.String("user_id", op.UserID),
		slog.String("currency", op.Currency),
		slog.String("amount", op.Amount.String()),
		slog.String("result", string(out.Result)),
		slog.String("balance", out.Balance.String()),
		slog.Time("requested_at", op.CreatedAt),
	)
	return out, nil
}

// apply runs the ledger path for op while holding the lock for its key. The
// id is claimed first; losing the claim to a concurrent submission is a
// duplicate. The journal entry is appended before the lock is released, so
// events for one key are journaled in the order they were applied.
func (p *Processor) apply(ctx context.Context, op operation.Operation) (operation.Outcome, error) {
	key := op.Key()
	unlock := p.locks.Lock(key)
	defer unlock()

	if !p.seen.Record(op.ID) {
		return operation.Outcome{}, operation.ErrDuplicateOperationID
	}

	out := operation.Outcome{
		OperationID: op.ID,
		UserID:      op.UserID,
		Result:      operation.Approved,
		Currency:    op.Currency,
		Direction:   op.Direction,
	}

	switch op.Direction {
	case operation.Credit:
		balance, err := p.ledger.Credit(ctx, key, op.Amount)
		if err != nil {
			return operation.Outcome{}, fmt.Errorf("credit %s: %w", key, err)
		}
		out.Balance = balance
	case operation.Debit:
		balance, err := p.ledger.Debit(ctx, key, op.Amount)
		switch {
		case errors.Is(err, ledger.ErrInsufficientFunds):
			out.Result = operation.Declined
		case err != nil:
			return operation.Outcome{}, fmt.Errorf("debit %s: %w", key, err)
		}
		out.Balance = balance
	default:
		return operation.Outcome{}, fmt.Errorf("unknown direction %q", op.Direction)
	}

	// A failed append is logged; the ledger is already authoritative.
	if err := p.journal.Append(ctx, journal.NewEvent(op, out)); err != nil {
		p.logger.Error("journal append failed", slog.String("operation_id", op.ID), slog.Any("error", err))
	}
	return out, nil
}

// notify tells the user about a declined authorization. Failures are logged.
func (p *Processor) notify(ctx context.Context, op operation.Operation, out operation.Outcome) {
	if out.Result != operation.Declined || p.notifier == nil {
		return
	}
	msg := notification.Message{
		Kind:        notification.KindAuthorizationDeclined,
		Destination: op.UserID,
		Body:        fmt.Sprintf("Authorization %s for %s %s declined, balance %s", op.ID, op.Amount, op.Currency, out.Balance),
	}
	if err := p.notifier.Send(ctx, msg); err != nil {
		p.logger.Warn("notification failed", slog.String("operation_id", op.ID), slog.Any("error", err))
	}
}

func (p *Processor) reject(kind string, req operation.Request, err error) {
	var verr *operation.ValidationError
	if !errors.As(err, &verr) {
		p.logger.Error("operation failed",
			slog.String("kind", kind),
			slog.String("operation_id", req.OperationID),
			slog.Any("error", err),
		)
		return
	}

	p.metrics.ObserveRejection(kind, string(verr.Code))
	p.logger.Info("operation rejected",
		slog.String("kind", kind),
		slog.String("operation_id", req.OperationID),
		slog.String("user_id", req.UserID),
		slog.String("currency", req.Currency),
		slog.String("code", string(verr.Code)),
	)
}

func kindFor(dir operation.Direction) string {
	if dir == operation.Debit {
		return kindAuthorization
	}
	return kindLoad
}
