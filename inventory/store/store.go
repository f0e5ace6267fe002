package store

import (
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	contractx "github.com/tanpawarit/Stocker-Inventory-Restock-Workflow/inventory/contract"
)

// BackendKind selects the storage backend at process start. The selection
// is made once and never changes for the process lifetime.
type BackendKind string

const (
	BackendMemory   BackendKind = "memory"
	BackendPostgres BackendKind = "postgres"
)

// ParseBackendKind normalizes the env selector, defaulting to memory.
func ParseBackendKind(raw string) (BackendKind, error) {
	switch BackendKind(strings.ToLower(strings.TrimSpace(raw))) {
	case "", BackendMemory:
		return BackendMemory, nil
	case BackendPostgres:
		return BackendPostgres, nil
	default:
		return "", fmt.Errorf("unknown storage backend: %q", raw)
	}
}

// New constructs the backend for kind. db is required only for postgres.
func New(kind BackendKind, db *bun.DB) (contractx.StockBackend, error) {
	switch kind {
	case BackendMemory:
		return NewMemoryBackend(), nil
	case BackendPostgres:
		return NewPostgresBackend(db)
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", kind)
	}
}
