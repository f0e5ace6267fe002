package contract

import "context"

// StockBackend is the storage contract both backends satisfy. Callers must
// not be able to tell the implementations apart except by latency and
// failure mode.
type StockBackend interface {
	// CheckStock returns the current quantity, 0 for unknown products.
	CheckStock(ctx context.Context, name string) (int, error)
	// UpdateStock applies delta atomically within the call and returns the
	// quantities before and after. A delta that would drive the quantity
	// negative is rejected with *NegativeStockError and storage is left
	// unchanged.
	UpdateStock(ctx context.Context, name string, delta int) (old int, updated int, err error)
}

// SupplierGateway queries the external catalog and submits purchase orders.
type SupplierGateway interface {
	// Search returns up to three listings in the remote service's native
	// order. An empty result set is ([], nil), not an error.
	Search(ctx context.Context, query string) ([]SupplierListing, error)
	PlaceOrder(ctx context.Context, supplierID int, quantity int) (OrderReceipt, error)
}

// AuditSink receives fire-and-forget records of workflow invocations.
// Sink failures must never alter a workflow's own result.
type AuditSink interface {
	Log(ctx context.Context, entry AuditEntry) error
}
