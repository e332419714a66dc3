package sequence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockdesk/stockdesk/internal/platform/db"
)

// PGStore persists counters one row per counter name. The read-modify-write
// runs in a single transaction with a row lock; a first-use race on a
// missing row is aborted by the RepeatableRead isolation level and surfaces
// as a retryable conflict.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs the store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Mutate implements Store.
func (s *PGStore) Mutate(ctx context.Context, name string, fn func(c *Counter) error) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var c Counter
		err := tx.QueryRow(ctx,
			`SELECT current_count, last_reset_period, current_id FROM counters WHERE name = $1 FOR UPDATE`,
			name,
		).Scan(&c.CurrentCount, &c.LastResetPeriod, &c.CurrentID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		if err := fn(&c); err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO counters (name, current_count, last_reset_period, current_id)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (name) DO UPDATE
			 SET current_count = EXCLUDED.current_count,
			     last_reset_period = EXCLUDED.last_reset_period,
			     current_id = EXCLUDED.current_id`,
			name, c.CurrentCount, c.LastResetPeriod, c.CurrentID,
		)
		return err
	})
}
