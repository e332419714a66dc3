package partners

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockdesk/stockdesk/internal/platform/db"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// Collection notification channels.
const (
	CustomersChannel = "customers"
	SuppliersChannel = "suppliers"
)

// Repository persists both registries; each kind has its own table and
// notification channel.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func tableFor(kind Kind) (table, channel string, err error) {
	switch kind {
	case KindCustomer:
		return "customers", CustomersChannel, nil
	case KindSupplier:
		return "suppliers", SuppliersChannel, nil
	default:
		return "", "", fmt.Errorf("partners: unknown kind %q", kind)
	}
}

// Insert writes one party record.
func (r *Repository) Insert(ctx context.Context, kind Kind, p Party) error {
	table, channel, err := tableFor(kind)
	if err != nil {
		return err
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO `+table+` (id, display_id, name, contact_person, phone, email, address, price_type, notes, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			p.ID, p.DisplayID, p.Name, p.ContactPerson, p.Phone, p.Email, p.Address, p.PriceType, p.Notes, p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `SELECT pg_notify($1, '')`, channel)
		return err
	})
}

// Update rewrites one party record. The display id is immutable.
func (r *Repository) Update(ctx context.Context, kind Kind, p Party) error {
	table, channel, err := tableFor(kind)
	if err != nil {
		return err
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE `+table+` SET name = $2, contact_person = $3, phone = $4, email = $5, address = $6,
			        price_type = $7, notes = $8, updated_at = $9
			 WHERE id = $1`,
			p.ID, p.Name, p.ContactPerson, p.Phone, p.Email, p.Address, p.PriceType, p.Notes, p.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		_, err = tx.Exec(ctx, `SELECT pg_notify($1, '')`, channel)
		return err
	})
}

// Delete removes one party record.
func (r *Repository) Delete(ctx context.Context, kind Kind, id string) error {
	table, channel, err := tableFor(kind)
	if err != nil {
		return err
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		_, err = tx.Exec(ctx, `SELECT pg_notify($1, '')`, channel)
		return err
	})
}

// Snapshot reads one registry in full.
func (r *Repository) Snapshot(ctx context.Context, kind Kind) ([]Party, error) {
	table, _, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, display_id, name, COALESCE(contact_person, ''), COALESCE(phone, ''), COALESCE(email, ''),
		        COALESCE(address, ''), COALESCE(price_type, ''), COALESCE(notes, ''), created_at, updated_at
		 FROM `+table+` ORDER BY display_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parties []Party
	for rows.Next() {
		var p Party
		if err := rows.Scan(&p.ID, &p.DisplayID, &p.Name, &p.ContactPerson, &p.Phone, &p.Email, &p.Address, &p.PriceType, &p.Notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		parties = append(parties, p)
	}
	return parties, rows.Err()
}
