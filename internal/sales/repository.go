package sales

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockdesk/stockdesk/internal/platform/db"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// Channel is the notification channel for the sales_orders collection.
const Channel = "sales_orders"

// Repository persists sales orders. Line items live in a jsonb column;
// the whole order is one document.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert writes one order.
func (r *Repository) Insert(ctx context.Context, o Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO sales_orders (id, order_number, customer_id, customer_name, order_date, items,
			                           total_pre_tax, total_tax, total_amount, status, created_at, created_by)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			o.ID, o.OrderNumber, o.CustomerID, o.CustomerName, o.OrderDate, items,
			o.TotalPreTax, o.TotalTax, o.TotalAmount, o.Status, o.CreatedAt, o.CreatedBy,
		)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `SELECT pg_notify($1, '')`, Channel)
		return err
	})
}

// Update rewrites a pending order. The status guard in the WHERE clause is
// what makes finalized orders immutable regardless of caller state.
func (r *Repository) Update(ctx context.Context, o Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE sales_orders
			 SET customer_id = $2, customer_name = $3, order_date = $4, items = $5,
			     total_pre_tax = $6, total_tax = $7, total_amount = $8
			 WHERE id = $1 AND status = $9`,
			o.ID, o.CustomerID, o.CustomerName, o.OrderDate, items,
			o.TotalPreTax, o.TotalTax, o.TotalAmount, StatusPending,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return r.missingOrFinalized(ctx, tx, o.ID)
		}
		_, err = tx.Exec(ctx, `SELECT pg_notify($1, '')`, Channel)
		return err
	})
}

// Finalize flips a pending order to FINALIZED. Finalizing twice reports
// shared.ErrFinalized.
func (r *Repository) Finalize(ctx context.Context, id string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE sales_orders SET status = $2 WHERE id = $1 AND status = $3`,
			id, StatusFinalized, StatusPending,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return r.missingOrFinalized(ctx, tx, id)
		}
		_, err = tx.Exec(ctx, `SELECT pg_notify($1, '')`, Channel)
		return err
	})
}

// Delete removes a pending order.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`DELETE FROM sales_orders WHERE id = $1 AND status = $2`,
			id, StatusPending,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return r.missingOrFinalized(ctx, tx, id)
		}
		_, err = tx.Exec(ctx, `SELECT pg_notify($1, '')`, Channel)
		return err
	})
}

// missingOrFinalized distinguishes a missing row from a finalized one after
// a zero-row status-guarded write.
func (r *Repository) missingOrFinalized(ctx context.Context, tx pgx.Tx, id string) error {
	var status Status
	err := tx.QueryRow(ctx, `SELECT status FROM sales_orders WHERE id = $1`, id).Scan(&status)
	if err == pgx.ErrNoRows {
		return shared.ErrNotFound
	}
	if err != nil {
		return err
	}
	return shared.ErrFinalized
}

// Snapshot reads the full order collection, newest first.
func (r *Repository) Snapshot(ctx context.Context) ([]Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, order_number, customer_id, customer_name, order_date, items,
		        total_pre_tax, total_tax, total_amount, status, created_at, created_by
		 FROM sales_orders ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		var items []byte
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &o.CustomerName, &o.OrderDate, &items,
			&o.TotalPreTax, &o.TotalTax, &o.TotalAmount, &o.Status, &o.CreatedAt, &o.CreatedBy); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
