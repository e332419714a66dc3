package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockdesk/stockdesk/internal/platform/db"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// Collection notification channels.
const (
	ProductsChannel = "products"
	LookupsChannel  = "lookups"
)

// Repository persists products and lookups in the remote store.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert writes one product.
func (r *Repository) Insert(ctx context.Context, p Product) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO products (id, sku, model, brand, category, description, reorder_point, is_serialized, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			p.ID, p.SKU, p.Model, p.Brand, p.Category, p.Description, p.ReorderPoint, p.IsSerialized, p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			return mapUnique(err, "sku", p.SKU)
		}
		_, err = tx.Exec(ctx, `SELECT pg_notify($1, '')`, ProductsChannel)
		return err
	})
}

// Update rewrites one product.
func (r *Repository) Update(ctx context.Context, p Product) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE products SET sku = $2, model = $3, brand = $4, category = $5, description = $6,
			        reorder_point = $7, is_serialized = $8, updated_at = $9
			 WHERE id = $1`,
			p.ID, p.SKU, p.Model, p.Brand, p.Category, p.Description, p.ReorderPoint, p.IsSerialized, p.UpdatedAt,
		)
		if err != nil {
			return mapUnique(err, "sku", p.SKU)
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		_, err = tx.Exec(ctx, `SELECT pg_notify($1, '')`, ProductsChannel)
		return err
	})
}

// Delete removes one product.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		_, err = tx.Exec(ctx, `SELECT pg_notify($1, '')`, ProductsChannel)
		return err
	})
}

// Snapshot reads the full product collection.
func (r *Repository) Snapshot(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, sku, model, brand, category, COALESCE(description, ''), reorder_point, is_serialized, created_at, updated_at
		 FROM products ORDER BY sku`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Model, &p.Brand, &p.Category, &p.Description, &p.ReorderPoint, &p.IsSerialized, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// AddValues merges lookup values into their lists, never overwriting.
func (r *Repository) AddValues(ctx context.Context, values []LookupValue) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := AddValuesTx(ctx, tx, values); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `SELECT pg_notify($1, '')`, LookupsChannel)
		return err
	})
}

// AddValuesTx merges lookup values inside an existing transaction. Used by
// the bulk import commit.
func AddValuesTx(ctx context.Context, tx pgx.Tx, values []LookupValue) error {
	for _, v := range values {
		_, err := tx.Exec(ctx,
			`INSERT INTO lookup_values (kind, value) VALUES ($1, $2) ON CONFLICT (kind, value) DO NOTHING`,
			v.Kind, v.Value,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// LookupSnapshot reads every lookup value.
func (r *Repository) LookupSnapshot(ctx context.Context) ([]LookupValue, error) {
	rows, err := r.pool.Query(ctx, `SELECT kind, value FROM lookup_values ORDER BY kind, value`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []LookupValue
	for rows.Next() {
		var v LookupValue
		if err := rows.Scan(&v.Kind, &v.Value); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// InsertProductsTx writes imported products inside an existing transaction.
func InsertProductsTx(ctx context.Context, tx pgx.Tx, products []Product) error {
	for _, p := range products {
		_, err := tx.Exec(ctx,
			`INSERT INTO products (id, sku, model, brand, category, description, reorder_point, is_serialized, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			p.ID, p.SKU, p.Model, p.Brand, p.Category, p.Description, p.ReorderPoint, p.IsSerialized, p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			return mapUnique(err, "sku", p.SKU)
		}
	}
	return nil
}

// mapUnique converts a unique-violation into the domain error. SQLSTATE
// 23505 is the backstop behind the in-memory SKU check.
func mapUnique(err error, field, value string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return &shared.UniquenessError{Field: field, Value: value}
	}
	return err
}
