package restock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Stocker-Inventory-Restock-Workflow/inventory/contract"
	ledgerx "github.com/tanpawarit/Stocker-Inventory-Restock-Workflow/inventory/ledger"
)

const (
	DefaultThreshold   = 10
	DefaultTargetLevel = 20

	toolCheckInventory     = "check_inventory"
	toolSearchSupplier     = "search_supplier"
	toolPlaceSupplierOrder = "place_supplier_order"
	toolUpdateInventory    = "update_inventory"
)

// SelectListingFunc picks the listing to order from. Search results keep
// the remote service's ranking.
type SelectListingFunc func(product string, listings []contractx.SupplierListing) contractx.SupplierListing

// FirstListing is the inherited default policy: trust the remote ranking
// and take the first match.
func FirstListing(_ string, listings []contractx.SupplierListing) contractx.SupplierListing {
	return listings[0]
}

type Config struct {
	// Threshold is the minimum acceptable stock level. A quantity exactly
	// at the threshold counts as sufficient.
	Threshold int
	// TargetLevel is the post-restock stock level; the ordered quantity is
	// TargetLevel minus the current quantity.
	TargetLevel int
	// SessionID keys this service's audit entries. Defaults to a fresh
	// uuid per process.
	SessionID string
}

// Option customizes Service.
type Option func(*Service)

func WithListingSelector(selector SelectListingFunc) Option {
	return func(s *Service) {
		if selector != nil {
			s.selectListing = selector
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service composes ledger inspection, supplier search, ordering, and
// reconciliation into one sequential workflow per invocation. It is the
// surface the instruction layer calls operations on by name.
type Service struct {
	ledger   *ledgerx.Ledger
	supplier contractx.SupplierGateway
	audit    contractx.AuditSink

	selectListing SelectListingFunc
	threshold     int
	targetLevel   int
	sessionID     string

	graphRunner compose.Runnable[GraphInput, contractx.WorkflowResult]

	now func() time.Time
}

func New(
	ledger *ledgerx.Ledger,
	supplier contractx.SupplierGateway,
	audit contractx.AuditSink,
	cfg Config,
	opts ...Option,
) (*Service, error) {
	if ledger == nil {
		return nil, errors.New("stock ledger is required")
	}
	if supplier == nil {
		return nil, errors.New("supplier gateway is required")
	}
	if audit == nil {
		audit = nopAuditSink{}
	}

	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	targetLevel := cfg.TargetLevel
	if targetLevel == 0 {
		targetLevel = DefaultTargetLevel
	}
	if threshold < 0 {
		return nil, fmt.Errorf("threshold must be >= 0, got %d", threshold)
	}
	if targetLevel <= threshold {
		return nil, fmt.Errorf("target level %d must exceed threshold %d", targetLevel, threshold)
	}

	sessionID := strings.TrimSpace(cfg.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	s := &Service{
		ledger:        ledger,
		supplier:      supplier,
		audit:         audit,
		selectListing: FirstListing,
		threshold:     threshold,
		targetLevel:   targetLevel,
		sessionID:     sessionID,
		now:           time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	graphRunner, err := s.compileRestockGraph(context.Background())
	if err != nil {
		return nil, err
	}
	s.graphRunner = graphRunner

	return s, nil
}

// RestockIfNeeded runs one restock workflow for product. Domain failures
// land in the result's Failed state; the returned error is reserved for
// invalid input.
func (s *Service) RestockIfNeeded(ctx context.Context, product string) (contractx.WorkflowResult, error) {
	res, err := s.graphRunner.Invoke(ctx, GraphInput{Product: product})
	if err != nil {
		return contractx.WorkflowResult{}, err
	}

	s.notifyAudit(ctx, contractx.AuditEntry{
		UserMessage: fmt.Sprintf("restock_if_needed product=%s", res.Product),
		Reasoning:   s.reasoningFor(res),
		Response:    responseFor(res),
		ToolsUsed:   res.ToolsUsed,
	})
	return res, nil
}

// CheckStock reports the current quantity for one product.
func (s *Service) CheckStock(ctx context.Context, name string) (contractx.StockLevel, error) {
	quantity, err := s.ledger.CheckStock(ctx, name)
	if err != nil {
		return contractx.StockLevel{}, err
	}

	level := contractx.StockLevel{
		Product:  strings.TrimSpace(name),
		Quantity: quantity,
	}
	s.notifyAudit(ctx, contractx.AuditEntry{
		UserMessage: fmt.Sprintf("check_stock product=%s", level.Product),
		Response:    fmt.Sprintf("Product: %s, Quantity: %d", level.Product, level.Quantity),
		ToolsUsed:   []string{toolCheckInventory},
	})
	return level, nil
}

// UpdateStock applies delta to one product. A rejected delta surfaces the
// *contract.NegativeStockError unchanged.
func (s *Service) UpdateStock(ctx context.Context, name string, delta int) (contractx.StockUpdate, error) {
	old, updated, err := s.ledger.UpdateStock(ctx, name, delta)
	if err != nil {
		return contractx.StockUpdate{}, err
	}

	update := contractx.StockUpdate{
		Product:  strings.TrimSpace(name),
		Previous: old,
		Current:  updated,
	}
	s.notifyAudit(ctx, contractx.AuditEntry{
		UserMessage: fmt.Sprintf("update_stock product=%s delta=%d", update.Product, delta),
		Response:    fmt.Sprintf("Updated %s. Old: %d, New: %d", update.Product, update.Previous, update.Current),
		ToolsUsed:   []string{toolUpdateInventory},
	})
	return update, nil
}

// notifyAudit is fire-and-forget: a failing sink is logged and ignored so
// it can never alter the workflow's own result.
func (s *Service) notifyAudit(ctx context.Context, entry contractx.AuditEntry) {
	entry.SessionID = s.sessionID
	entry.CreatedAt = s.now().UTC()

	if err := s.audit.Log(ctx, entry); err != nil {
		log.Warn().
			Err(err).
			Str("session_id", s.sessionID).
			Msg("audit log failed")
	}
}

func (s *Service) reasoningFor(res contractx.WorkflowResult) string {
	switch res.FinalState {
	case contractx.StateSufficient:
		return fmt.Sprintf("quantity %d at or above threshold %d, no restock needed",
			res.QuantityBefore, s.threshold)
	case contractx.StateDone:
		return fmt.Sprintf("quantity %d below threshold %d, ordered %d from supplier %d to reach target %d",
			res.QuantityBefore, s.threshold, res.Order.Quantity, res.Order.SupplierID, s.targetLevel)
	default:
		return fmt.Sprintf("quantity %d below threshold %d, restock aborted",
			res.QuantityBefore, s.threshold)
	}
}

func responseFor(res contractx.WorkflowResult) string {
	switch res.FinalState {
	case contractx.StateSufficient:
		return fmt.Sprintf("Product: %s, Quantity: %d", res.Product, res.QuantityBefore)
	case contractx.StateDone:
		return fmt.Sprintf("Restocked %s. Old: %d, New: %d. Estimated delivery: %s",
			res.Product, res.QuantityBefore, *res.QuantityAfter, res.Order.ETA)
	default:
		return fmt.Sprintf("Restock failed for %s: %s", res.Product, res.Error)
	}
}

type nopAuditSink struct{}

func (nopAuditSink) Log(context.Context, contractx.AuditEntry) error {
	return nil
}
