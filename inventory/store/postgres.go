package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	contractx "github.com/tanpawarit/Stocker-Inventory-Restock-Workflow/inventory/contract"
)

type productRow struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Name        string    `bun:"name,unique,notnull"`
	Quantity    int       `bun:"quantity,notnull,default:0"`
	LastUpdated time.Time `bun:"last_updated,nullzero,notnull,default:current_timestamp"`
}

// PostgresBackend persists quantities in the products table. Every
// operation runs select-validate-write inside one transaction scope; the
// connection is checked out for that single call and returned on every
// exit path. The transaction does not lock the row between read and write,
// so the same lost-update hazard as the memory backend exists inside a
// single call.
type PostgresBackend struct {
	db  *bun.DB
	now func() time.Time
}

func NewPostgresBackend(db *bun.DB) (*PostgresBackend, error) {
	if db == nil {
		return nil, errors.New("bun db is required")
	}
	return &PostgresBackend{db: db, now: time.Now}, nil
}

// Init creates the products table if it does not exist yet.
func (b *PostgresBackend) Init(ctx context.Context) error {
	if _, err := b.db.NewCreateTable().
		Model((*productRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("%w: create products table: %v", contractx.ErrBackendUnavailable, err)
	}
	return nil
}

// CheckStock reads the quantity by exact name. An unknown product is
// created with quantity 0 so the first and every later check agree.
func (b *PostgresBackend) CheckStock(ctx context.Context, name string) (int, error) {
	var quantity int
	err := b.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		current, found, err := selectQuantity(ctx, tx, name)
		if err != nil {
			return err
		}
		if found {
			quantity = current
			return nil
		}

		seed := &productRow{Name: name, LastUpdated: b.now().UTC()}
		if _, err := tx.NewInsert().
			Model(seed).
			On("CONFLICT (name) DO NOTHING").
			Exec(ctx); err != nil {
			return err
		}
		quantity = 0
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: check stock: %v", contractx.ErrBackendUnavailable, err)
	}
	return quantity, nil
}

// UpdateStock applies delta inside one transaction scope. A rejected delta
// rolls back with *contract.NegativeStockError and leaves the row as it was.
func (b *PostgresBackend) UpdateStock(ctx context.Context, name string, delta int) (int, int, error) {
	var old, updated int
	err := b.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		current, _, err := selectQuantity(ctx, tx, name)
		if err != nil {
			return err
		}

		old = current
		updated = current + delta
		if updated < 0 {
			updated = current
			return &contractx.NegativeStockError{
				Product:   name,
				Current:   current,
				Requested: delta,
			}
		}

		row := &productRow{
			Name:        name,
			Quantity:    updated,
			LastUpdated: b.now().UTC(),
		}
		_, err = tx.NewInsert().
			Model(row).
			On("CONFLICT (name) DO UPDATE").
			Set("quantity = EXCLUDED.quantity").
			Set("last_updated = EXCLUDED.last_updated").
			Exec(ctx)
		return err
	})
	if err != nil {
		var nsErr *contractx.NegativeStockError
		if errors.As(err, &nsErr) {
			return old, old, nsErr
		}
		return 0, 0, fmt.Errorf("%w: update stock: %v", contractx.ErrBackendUnavailable, err)
	}
	return old, updated, nil
}

func selectQuantity(ctx context.Context, tx bun.Tx, name string) (int, bool, error) {
	row := new(productRow)
	err := tx.NewSelect().
		Model(row).
		Column("quantity").
		Where("name = ?", name).
		Scan(ctx)
	if err == nil {
		return row.Quantity, true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	return 0, false, err
}
