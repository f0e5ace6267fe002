package contract

import "time"

// FinalState is the terminal state of a single restock workflow run.
type FinalState string

const (
	StateSufficient FinalState = "sufficient"
	StateDone       FinalState = "done"
	StateFailed     FinalState = "failed"
)

// StockLevel is the caller-facing result of a stock inspection.
type StockLevel struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// StockUpdate reports an accepted delta applied to one product.
type StockUpdate struct {
	Product  string `json:"product"`
	Previous int    `json:"previous"`
	Current  int    `json:"current"`
}

// SupplierListing is one catalog match returned by a supplier search.
// Produced per call, never persisted.
type SupplierListing struct {
	SupplierID     int     `json:"supplier_id"`
	Title          string  `json:"title"`
	UnitPrice      float64 `json:"unit_price"`
	AvailableStock int     `json:"available_stock"`
}

// OrderReceipt is the synchronous confirmation of a supplier order.
type OrderReceipt struct {
	SupplierID int    `json:"supplier_id"`
	Quantity   int    `json:"quantity"`
	Status     string `json:"status"`
	ETA        string `json:"eta"`
}

// WorkflowResult is the single structured payload every terminal state of
// the restock workflow yields. QuantityAfter and Order are set only on the
// paths that reached them; a failed reconciliation still carries the order
// that was already placed.
type WorkflowResult struct {
	Product        string        `json:"product"`
	FinalState     FinalState    `json:"final_state"`
	QuantityBefore int           `json:"quantity_before"`
	QuantityAfter  *int          `json:"quantity_after,omitempty"`
	Order          *OrderReceipt `json:"order,omitempty"`
	Error          string        `json:"error,omitempty"`
	ToolsUsed      []string      `json:"tools_used,omitempty"`
}

// AuditEntry is one append-only record of a workflow invocation.
type AuditEntry struct {
	SessionID   string    `json:"session_id"`
	UserMessage string    `json:"user_message"`
	Reasoning   string    `json:"reasoning,omitempty"`
	Response    string    `json:"response,omitempty"`
	ToolsUsed   []string  `json:"tools_used,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
