package store

import (
	"context"
	"sync"

	contractx "github.com/tanpawarit/Stocker-Inventory-Restock-Workflow/inventory/contract"
)

// StarterCatalog seeds every new MemoryBackend with the demo products.
func StarterCatalog() map[string]int {
	return map[string]int{
		"Laptop":     5,
		"Smartphone": 20,
		"Headphones": 50,
	}
}

// MemoryBackend keeps quantities in a process-local map. The mutex guards
// map integrity only; a read in one call followed by an update in another
// is not serialized, so concurrent restocks of the same product can lose
// updates.
type MemoryBackend struct {
	mu sync.RWMutex
	m  map[string]int
}

// NewMemoryBackend returns a backend seeded with the starter catalog.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{m: StarterCatalog()}
}

// NewEmptyMemoryBackend returns a backend with no products.
func NewEmptyMemoryBackend() *MemoryBackend {
	return &MemoryBackend{m: make(map[string]int)}
}

// CheckStock reports the current quantity, 0 for unknown products. Unknown
// names are not materialized; repeated checks stay free of side effects.
func (b *MemoryBackend) CheckStock(_ context.Context, name string) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.m[name], nil
}

// UpdateStock applies delta and returns the quantities before and after.
// A delta that would drive the quantity negative is rejected with
// *contract.NegativeStockError and the map is left untouched.
func (b *MemoryBackend) UpdateStock(_ context.Context, name string, delta int) (int, int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.m[name]
	updated := current + delta
	if updated < 0 {
		return current, current, &contractx.NegativeStockError{
			Product:   name,
			Current:   current,
			Requested: delta,
		}
	}

	b.m[name] = updated
	return current, updated, nil
}

// Len reports how many products are materialized.
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.m)
}
