package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Stocker-Inventory-Restock-Workflow/inventory/contract"
)

// Ledger is the quantity-tracking façade. It holds no state of its own and
// delegates both operations to whichever backend was selected at startup.
type Ledger struct {
	backend contractx.StockBackend
}

func New(backend contractx.StockBackend) (*Ledger, error) {
	if backend == nil {
		return nil, errors.New("stock backend is required")
	}
	return &Ledger{backend: backend}, nil
}

// CheckStock returns the current quantity for name, 0 when unknown.
// Names are matched exactly and case-sensitively.
func (l *Ledger) CheckStock(ctx context.Context, name string) (int, error) {
	product := strings.TrimSpace(name)
	if product == "" {
		return 0, contractx.ErrInvalidProduct
	}

	quantity, err := l.backend.CheckStock(ctx, product)
	if err != nil {
		return 0, err
	}

	log.Debug().Str("product", product).Int("quantity", quantity).Msg("stock checked")
	return quantity, nil
}

// UpdateStock applies delta and returns the quantities before and after.
func (l *Ledger) UpdateStock(ctx context.Context, name string, delta int) (int, int, error) {
	product := strings.TrimSpace(name)
	if product == "" {
		return 0, 0, contractx.ErrInvalidProduct
	}

	old, updated, err := l.backend.UpdateStock(ctx, product, delta)
	if err != nil {
		return old, updated, err
	}

	log.Debug().
		Str("product", product).
		Int("old", old).
		Int("new", updated).
		Msg("stock updated")
	return old, updated, nil
}
