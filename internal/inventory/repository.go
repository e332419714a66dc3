package inventory

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockdesk/stockdesk/internal/platform/db"
)

// Channel is the collection notification channel.
const Channel = "inventory_transactions"

// Repository persists transactions in the remote store.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert writes one transaction and notifies subscribers in the same
// database transaction.
func (r *Repository) Insert(ctx context.Context, t Transaction) error {
	return r.InsertMany(ctx, []Transaction{t})
}

// InsertMany writes several transactions atomically with a single notify.
func (r *Repository) InsertMany(ctx context.Context, txs []Transaction) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := InsertManyTx(ctx, tx, txs); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `SELECT pg_notify($1, '')`, Channel)
		return err
	})
}

// InsertManyTx writes transactions inside an existing database transaction.
// Used by reconciliation finalize, which commits inventory records together
// with receivable consumption and the invoice status flip.
func InsertManyTx(ctx context.Context, tx pgx.Tx, txs []Transaction) error {
	for _, t := range txs {
		_, err := tx.Exec(ctx,
			`INSERT INTO inventory_transactions
			   (id, product_id, location_id, destination_location_id, type, quantity, ts, user_id, reference_number)
			 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, NULLIF($9, ''))`,
			t.ID, t.ProductID, t.LocationID, t.DestinationLocationID, t.Type, t.Quantity, t.Timestamp, t.UserID, t.ReferenceNumber,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// Snapshot reads the full ordered transaction list.
func (r *Repository) Snapshot(ctx context.Context) ([]Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, location_id, COALESCE(destination_location_id, ''), type, quantity, ts, user_id, COALESCE(reference_number, '')
		 FROM inventory_transactions ORDER BY ts, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.ProductID, &t.LocationID, &t.DestinationLocationID, &t.Type, &t.Quantity, &t.Timestamp, &t.UserID, &t.ReferenceNumber); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
