package journal

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createEventsTable = `
CREATE TABLE IF NOT EXISTS operation_events (
    seq          BIGINT GENERATED ALWAYS AS IDENTITY,
    id           UUID PRIMARY KEY,
    operation_id TEXT NOT NULL,
    user_id      TEXT NOT NULL,
    currency     CHAR(3) NOT NULL,
    direction    TEXT NOT NULL,
    amount       NUMERIC(20, 2) NOT NULL,
    result       TEXT NOT NULL,
    balance      NUMERIC(20, 2) NOT NULL,
    requested_at TIMESTAMPTZ NOT NULL,
    recorded_at  TIMESTAMPTZ NOT NULL
)`

// PostgresJournal appends events to the operation_events table. seq reflects
// append order, which per key is the order the ledger applied operations.
type PostgresJournal struct {
	db *pgxpool.Pool
}

// NewPostgresJournal constructs a Postgres-backed journal and ensures its table exists.
func NewPostgresJournal(ctx context.Context, db *pgxpool.Pool) (*PostgresJournal, error) {
	if _, err := db.Exec(ctx, createEventsTable); err != nil {
		return nil, fmt.Errorf("create operation_events: %w", err)
	}
	return &PostgresJournal{db: db}, nil
}

// Append inserts the event in its own transaction.
func (j *PostgresJournal) Append(ctx context.Context, event Event) error {
	tx, err := j.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	const insert = `INSERT INTO operation_events
        (id, operation_id, user_id, currency, direction, amount, result, balance, requested_at, recorded_at)
        VALUES ($1, $2, $3, $4, $5, $6::text::numeric, $7, $8::text::numeric, $9, $10)`
	if _, err := tx.Exec(ctx, insert,
		event.ID, event.OperationID, event.UserID, event.Currency, string(event.Direction),
		event.Amount, string(event.Result), event.Balance, event.RequestedAt.UTC(), event.RecordedAt.UTC(),
	); err != nil {
		return fmt.Errorf("insert operation event %s: %w", event.OperationID, err)
	}

	return tx.Commit(ctx)
}

// Reset removes every recorded event.
func (j *PostgresJournal) Reset(ctx context.Context) error {
	if _, err := j.db.Exec(ctx, `TRUNCATE operation_events`); err != nil {
		return fmt.Errorf("truncate operation_events: %w", err)
	}
	return nil
}
