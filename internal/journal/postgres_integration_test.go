//go:build integration

package journal

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/congo-pay/txservice/internal/money"
	"github.com/congo-pay/txservice/internal/operation"
)

func newPostgresJournal(t *testing.T) (*PostgresJournal, *pgxpool.Pool) {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TXSERVICE_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("TXSERVICE_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	j, err := NewPostgresJournal(ctx, pool)
	require.NoError(t, err)
	require.NoError(t, j.Reset(ctx))
	return j, pool
}

func TestPostgresJournalAppendAndReset(t *testing.T) {
	j, pool := newPostgresJournal(t)
	ctx := context.Background()

	event := func(id, amount string, dir operation.Direction, result operation.ResultCode, balance string) Event {
		op := operation.Operation{
			ID: id, UserID: "0", Amount: money.MustParse(amount), Currency: "USD",
			Direction: dir, CreatedAt: time.Now().UTC(),
		}
		return NewEvent(op, operation.Outcome{
			OperationID: id, UserID: "0", Result: result,
			Balance: money.MustParse(balance), Currency: "USD", Direction: dir,
		})
	}
	require.NoError(t, j.Append(ctx, event("a", "10.5", operation.Credit, operation.Approved, "10.5")))
	require.NoError(t, j.Append(ctx, event("b", "20", operation.Debit, operation.Declined, "10.5")))

	rows, err := pool.Query(ctx, `SELECT operation_id, amount::text, result, balance::text FROM operation_events ORDER BY seq`)
	require.NoError(t, err)
	defer rows.Close()

	var got []string
	for rows.Next() {
		var id, amount, result, balance string
		require.NoError(t, rows.Scan(&id, &amount, &result, &balance))
		got = append(got, strings.Join([]string{id, amount, result, balance}, " "))
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{
		"a 10.50 APPROVED 10.50",
		"b 20.00 DECLINED 10.50",
	}, got)

	require.NoError(t, j.Reset(ctx))
	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM operation_events`).Scan(&count))
	assert.Zero(t, count)
}
