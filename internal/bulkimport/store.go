package bulkimport

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockdesk/stockdesk/internal/catalog"
	"github.com/stockdesk/stockdesk/internal/platform/db"
)

// PGStore commits imports to the remote store.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs the store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Commit writes the new lookup values (merge, never overwrite) and every
// product row in a single transaction, then notifies both collections.
func (s *PGStore) Commit(ctx context.Context, products []catalog.Product, lookups []catalog.LookupValue) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if len(lookups) > 0 {
			if err := catalog.AddValuesTx(ctx, tx, lookups); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `SELECT pg_notify($1, '')`, catalog.LookupsChannel); err != nil {
				return err
			}
		}
		if err := catalog.InsertProductsTx(ctx, tx, products); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `SELECT pg_notify($1, '')`, catalog.ProductsChannel)
		return err
	})
}
