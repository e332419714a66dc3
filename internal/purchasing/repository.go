package purchasing

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockdesk/stockdesk/internal/inventory"
	"github.com/stockdesk/stockdesk/internal/platform/db"
	"github.com/stockdesk/stockdesk/internal/receiving"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// Channel is the notification channel for the purchase_invoices collection.
const Channel = "purchase_invoices"

// Repository persists purchase invoices and commits reconciliations.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert writes one invoice.
func (r *Repository) Insert(ctx context.Context, inv Invoice) error {
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return err
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO purchase_invoices (id, invoice_number, supplier_id, supplier_name, invoice_date, items,
			                                total_pre_tax, total_tax, total_amount, status, created_at, created_by)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			inv.ID, inv.InvoiceNumber, inv.SupplierID, inv.SupplierName, inv.InvoiceDate, items,
			inv.TotalPreTax, inv.TotalTax, inv.TotalAmount, inv.Status, inv.CreatedAt, inv.CreatedBy,
		)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `SELECT pg_notify($1, '')`, Channel)
		return err
	})
}

// Update rewrites a pending invoice. The status guard makes finalized
// invoices immutable regardless of caller state.
func (r *Repository) Update(ctx context.Context, inv Invoice) error {
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return err
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE purchase_invoices
			 SET supplier_id = $2, supplier_name = $3, invoice_date = $4, items = $5,
			     total_pre_tax = $6, total_tax = $7, total_amount = $8
			 WHERE id = $1 AND status = $9`,
			inv.ID, inv.SupplierID, inv.SupplierName, inv.InvoiceDate, items,
			inv.TotalPreTax, inv.TotalTax, inv.TotalAmount, StatusPending,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return missingOrFinalized(ctx, tx, inv.ID)
		}
		_, err = tx.Exec(ctx, `SELECT pg_notify($1, '')`, Channel)
		return err
	})
}

// Delete removes a pending invoice.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`DELETE FROM purchase_invoices WHERE id = $1 AND status = $2`,
			id, StatusPending,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return missingOrFinalized(ctx, tx, id)
		}
		_, err = tx.Exec(ctx, `SELECT pg_notify($1, '')`, Channel)
		return err
	})
}

// FinalizeReconciliation commits a reconciliation atomically: the invoice
// flips to FINALIZED with the reconciled lines, one stock-in record lands
// per assigned item, and the assigned receivables are consumed. The status
// guard on the UPDATE means two concurrent finalizes cannot both succeed;
// the loser sees shared.ErrFinalized and nothing from its attempt persists.
func (r *Repository) FinalizeReconciliation(ctx context.Context, invoiceID string, lines []LineItem, stockIn []inventory.Transaction, consumedKeys []string) error {
	items, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE purchase_invoices SET items = $2, status = $3 WHERE id = $1 AND status = $4`,
			invoiceID, items, StatusFinalized, StatusPending,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return missingOrFinalized(ctx, tx, invoiceID)
		}
		if err := inventory.InsertManyTx(ctx, tx, stockIn); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `SELECT pg_notify($1, '')`, inventory.Channel); err != nil {
			return err
		}
		if err := receiving.ConsumeTx(ctx, tx, consumedKeys); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `SELECT pg_notify($1, '')`, Channel)
		return err
	})
}

func missingOrFinalized(ctx context.Context, tx pgx.Tx, id string) error {
	var status Status
	err := tx.QueryRow(ctx, `SELECT status FROM purchase_invoices WHERE id = $1`, id).Scan(&status)
	if err == pgx.ErrNoRows {
		return shared.ErrNotFound
	}
	if err != nil {
		return err
	}
	return shared.ErrFinalized
}

// Snapshot reads the full invoice collection, newest first.
func (r *Repository) Snapshot(ctx context.Context) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, invoice_number, supplier_id, supplier_name, invoice_date, items,
		        total_pre_tax, total_tax, total_amount, status, created_at, created_by
		 FROM purchase_invoices ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		var inv Invoice
		var items []byte
		if err := rows.Scan(&inv.ID, &inv.InvoiceNumber, &inv.SupplierID, &inv.SupplierName, &inv.InvoiceDate, &items,
			&inv.TotalPreTax, &inv.TotalTax, &inv.TotalAmount, &inv.Status, &inv.CreatedAt, &inv.CreatedBy); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &inv.Items); err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}
