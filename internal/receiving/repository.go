package receiving

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockdesk/stockdesk/internal/platform/db"
)

// Channel is the notification channel for the receivables collection.
const Channel = "receivables"

// Repository persists receive batches and their receivable items.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InsertBatch writes the batch and all of its items in one transaction.
func (r *Repository) InsertBatch(ctx context.Context, b Batch, items []PendingReceivableItem) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO receive_batches (id, batch_number, supplier_id, supplier_name, received_date, created_at, created_by)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			b.ID, b.BatchNumber, b.SupplierID, b.SupplierName, b.ReceivedDate, b.CreatedAt, b.CreatedBy,
		)
		if err != nil {
			return err
		}
		for _, item := range items {
			_, err := tx.Exec(ctx,
				`INSERT INTO receivables (key, batch_id, batch_number, product_id, product_name, quantity, is_serialized, serial_number, is_consumed)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				item.Key, item.BatchID, item.BatchNumber, item.ProductID, item.ProductName,
				item.Quantity, item.IsSerialized, item.SerialNumber, item.IsConsumed,
			)
			if err != nil {
				return err
			}
		}
		_, err = tx.Exec(ctx, `SELECT pg_notify($1, '')`, Channel)
		return err
	})
}

// ConsumeTx marks the given items consumed inside an open transaction. Every
// key must still be unconsumed; a shortfall fails the whole transaction so a
// concurrent finalize cannot double-spend an item.
func ConsumeTx(ctx context.Context, tx pgx.Tx, keys []string) error {
	tag, err := tx.Exec(ctx,
		`UPDATE receivables SET is_consumed = TRUE WHERE key = ANY($1) AND NOT is_consumed`,
		keys,
	)
	if err != nil {
		return err
	}
	if int(tag.RowsAffected()) != len(keys) {
		return fmt.Errorf("receiving: %d of %d items already consumed or missing", len(keys)-int(tag.RowsAffected()), len(keys))
	}
	_, err = tx.Exec(ctx, `SELECT pg_notify($1, '')`, Channel)
	return err
}

// Snapshot reads the full receivables collection.
func (r *Repository) Snapshot(ctx context.Context) ([]PendingReceivableItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT key, batch_id, batch_number, product_id, product_name, quantity, is_serialized, COALESCE(serial_number, ''), is_consumed
		 FROM receivables ORDER BY batch_number, key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []PendingReceivableItem
	for rows.Next() {
		var item PendingReceivableItem
		if err := rows.Scan(&item.Key, &item.BatchID, &item.BatchNumber, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.IsSerialized, &item.SerialNumber, &item.IsConsumed); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
