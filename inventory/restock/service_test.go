package restock

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	contractx "github.com/tanpawarit/Stocker-Inventory-Restock-Workflow/inventory/contract"
	ledgerx "github.com/tanpawarit/Stocker-Inventory-Restock-Workflow/inventory/ledger"
)

type fakeBackend struct {
	quantities map[string]int
	checkErr   error
	updateErr  error
}

func newFakeBackend(quantities map[string]int) *fakeBackend {
	m := make(map[string]int, len(quantities))
	for name, quantity := range quantities {
		m[name] = quantity
	}
	return &fakeBackend{quantities: m}
}

func (f *fakeBackend) CheckStock(_ context.Context, name string) (int, error) {
	if f.checkErr != nil {
		return 0, f.checkErr
	}
	return f.quantities[name], nil
}

func (f *fakeBackend) UpdateStock(_ context.Context, name string, delta int) (int, int, error) {
	current := f.quantities[name]
	if f.updateErr != nil {
		return current, current, f.updateErr
	}
	updated := current + delta
	if updated < 0 {
		return current, current, &contractx.NegativeStockError{
			Product:   name,
			Current:   current,
			Requested: delta,
		}
	}
	f.quantities[name] = updated
	return current, updated, nil
}

type orderCall struct {
	supplierID int
	quantity   int
}

type fakeSupplier struct {
	listings  []contractx.SupplierListing
	searchErr error
	orderErr  error

	searchCalls []string
	orderCalls  []orderCall
}

func (f *fakeSupplier) Search(_ context.Context, query string) ([]contractx.SupplierListing, error) {
	f.searchCalls = append(f.searchCalls, query)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return append([]contractx.SupplierListing(nil), f.listings...), nil
}

func (f *fakeSupplier) PlaceOrder(_ context.Context, supplierID int, quantity int) (contractx.OrderReceipt, error) {
	f.orderCalls = append(f.orderCalls, orderCall{supplierID: supplierID, quantity: quantity})
	if f.orderErr != nil {
		return contractx.OrderReceipt{}, f.orderErr
	}
	return contractx.OrderReceipt{
		SupplierID: supplierID,
		Quantity:   quantity,
		Status:     "confirmed",
		ETA:        "2 days",
	}, nil
}

type fakeAudit struct {
	entries []contractx.AuditEntry
	err     error
}

func (f *fakeAudit) Log(_ context.Context, entry contractx.AuditEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

func laptopListing() contractx.SupplierListing {
	return contractx.SupplierListing{
		SupplierID:     42,
		Title:          "Laptop",
		UnitPrice:      999.99,
		AvailableStock: 100,
	}
}

func newTestService(t *testing.T, backend *fakeBackend, gateway *fakeSupplier, sink contractx.AuditSink, opts ...Option) *Service {
	t.Helper()

	l, err := ledgerx.New(backend)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	svc, err := New(l, gateway, sink, Config{SessionID: "test-session"}, opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc
}

func TestRestockBelowThresholdCompletes(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(map[string]int{"Laptop": 5})
	gateway := &fakeSupplier{listings: []contractx.SupplierListing{laptopListing()}}
	sink := &fakeAudit{}
	svc := newTestService(t, backend, gateway, sink)

	res, err := svc.RestockIfNeeded(context.Background(), "Laptop")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.FinalState != contractx.StateDone {
		t.Fatalf("final state: got %s, want %s", res.FinalState, contractx.StateDone)
	}
	if res.QuantityBefore != 5 {
		t.Fatalf("quantity before: got %d, want 5", res.QuantityBefore)
	}
	if res.QuantityAfter == nil || *res.QuantityAfter != 20 {
		t.Fatalf("quantity after: got %v, want 20", res.QuantityAfter)
	}
	if res.Order == nil || res.Order.Quantity != 15 || res.Order.SupplierID != 42 {
		t.Fatalf("unexpected order: %+v", res.Order)
	}
	if res.Order.ETA != "2 days" {
		t.Fatalf("order eta: got %q", res.Order.ETA)
	}
	if backend.quantities["Laptop"] != 20 {
		t.Fatalf("stored quantity: got %d, want 20", backend.quantities["Laptop"])
	}

	wantTools := []string{"check_inventory", "search_supplier", "place_supplier_order", "update_inventory"}
	if !reflect.DeepEqual(res.ToolsUsed, wantTools) {
		t.Fatalf("tools used: got %v, want %v", res.ToolsUsed, wantTools)
	}

	if len(sink.entries) != 1 {
		t.Fatalf("audit entries: got %d, want 1", len(sink.entries))
	}
	entry := sink.entries[0]
	if entry.SessionID != "test-session" {
		t.Fatalf("audit session: got %q", entry.SessionID)
	}
	if !reflect.DeepEqual(entry.ToolsUsed, wantTools) {
		t.Fatalf("audit tools: got %v, want %v", entry.ToolsUsed, wantTools)
	}
}

func TestRestockSufficientSkipsSupplier(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(map[string]int{"Smartphone": 20})
	gateway := &fakeSupplier{listings: []contractx.SupplierListing{laptopListing()}}
	svc := newTestService(t, backend, gateway, &fakeAudit{})

	res, err := svc.RestockIfNeeded(context.Background(), "Smartphone")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.FinalState != contractx.StateSufficient {
		t.Fatalf("final state: got %s, want %s", res.FinalState, contractx.StateSufficient)
	}
	if res.QuantityBefore != 20 {
		t.Fatalf("quantity before: got %d, want 20", res.QuantityBefore)
	}
	if res.QuantityAfter != nil || res.Order != nil {
		t.Fatalf("sufficient run must not order, got %+v", res)
	}
	if len(gateway.searchCalls) != 0 || len(gateway.orderCalls) != 0 {
		t.Fatalf("supplier must not be called, search=%d order=%d", len(gateway.searchCalls), len(gateway.orderCalls))
	}
	if backend.quantities["Smartphone"] != 20 {
		t.Fatalf("quantity changed: %d", backend.quantities["Smartphone"])
	}
	if !reflect.DeepEqual(res.ToolsUsed, []string{"check_inventory"}) {
		t.Fatalf("tools used: got %v", res.ToolsUsed)
	}
}

func TestRestockThresholdBoundaryIsInclusive(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(map[string]int{"Keyboard": 10})
	gateway := &fakeSupplier{listings: []contractx.SupplierListing{laptopListing()}}
	svc := newTestService(t, backend, gateway, &fakeAudit{})

	res, err := svc.RestockIfNeeded(context.Background(), "Keyboard")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.FinalState != contractx.StateSufficient {
		t.Fatalf("quantity at threshold must be sufficient, got %s", res.FinalState)
	}
	if len(gateway.searchCalls) != 0 {
		t.Fatal("supplier searched for a sufficient product")
	}
}

func TestRestockTargetMath(t *testing.T) {
	t.Parallel()

	for quantity := 0; quantity < 10; quantity++ {
		quantity := quantity
		t.Run(fmt.Sprintf("from_%d", quantity), func(t *testing.T) {
			t.Parallel()

			backend := newFakeBackend(map[string]int{"Mouse": quantity})
			gateway := &fakeSupplier{listings: []contractx.SupplierListing{laptopListing()}}
			svc := newTestService(t, backend, gateway, &fakeAudit{})

			res, err := svc.RestockIfNeeded(context.Background(), "Mouse")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.FinalState != contractx.StateDone {
				t.Fatalf("final state: got %s", res.FinalState)
			}
			if res.Order.Quantity != 20-quantity {
				t.Fatalf("order quantity: got %d, want %d", res.Order.Quantity, 20-quantity)
			}
			if *res.QuantityAfter != 20 {
				t.Fatalf("quantity after: got %d, want 20", *res.QuantityAfter)
			}
		})
	}
}

func TestRestockNoMatches(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(map[string]int{"Laptop": 5})
	gateway := &fakeSupplier{}
	svc := newTestService(t, backend, gateway, &fakeAudit{})

	res, err := svc.RestockIfNeeded(context.Background(), "Laptop")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.FinalState != contractx.StateFailed {
		t.Fatalf("final state: got %s, want %s", res.FinalState, contractx.StateFailed)
	}
	if !strings.Contains(res.Error, "no matches") {
		t.Fatalf("unexpected failure reason: %q", res.Error)
	}
	if len(gateway.orderCalls) != 0 {
		t.Fatal("no order may be placed without listings")
	}
	if backend.quantities["Laptop"] != 5 {
		t.Fatalf("quantity changed: %d", backend.quantities["Laptop"])
	}
}

func TestRestockSearchErrorFails(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(map[string]int{"Laptop": 5})
	gateway := &fakeSupplier{searchErr: fmt.Errorf("%w: connection refused", contractx.ErrSupplierUnreachable)}
	svc := newTestService(t, backend, gateway, &fakeAudit{})

	res, err := svc.RestockIfNeeded(context.Background(), "Laptop")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.FinalState != contractx.StateFailed {
		t.Fatalf("final state: got %s", res.FinalState)
	}
	if !strings.Contains(res.Error, "supplier search") {
		t.Fatalf("unexpected failure reason: %q", res.Error)
	}
	if len(gateway.orderCalls) != 0 {
		t.Fatal("no order may be placed after a failed search")
	}
	if backend.quantities["Laptop"] != 5 {
		t.Fatalf("quantity changed: %d", backend.quantities["Laptop"])
	}
}

func TestRestockOrderErrorFails(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(map[string]int{"Laptop": 5})
	gateway := &fakeSupplier{
		listings: []contractx.SupplierListing{laptopListing()},
		orderErr: fmt.Errorf("%w: out of capacity", contractx.ErrOrderRejected),
	}
	svc := newTestService(t, backend, gateway, &fakeAudit{})

	res, err := svc.RestockIfNeeded(context.Background(), "Laptop")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.FinalState != contractx.StateFailed {
		t.Fatalf("final state: got %s", res.FinalState)
	}
	if res.Order != nil {
		t.Fatalf("failed order must not be attached: %+v", res.Order)
	}
	if backend.quantities["Laptop"] != 5 {
		t.Fatalf("inventory changed after failed order: %d", backend.quantities["Laptop"])
	}
}

func TestRestockReconcileFailureKeepsOrder(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(map[string]int{"Laptop": 5})
	backend.updateErr = fmt.Errorf("%w: connection reset", contractx.ErrBackendUnavailable)
	gateway := &fakeSupplier{listings: []contractx.SupplierListing{laptopListing()}}
	svc := newTestService(t, backend, gateway, &fakeAudit{})

	res, err := svc.RestockIfNeeded(context.Background(), "Laptop")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.FinalState != contractx.StateFailed {
		t.Fatalf("final state: got %s", res.FinalState)
	}
	if !strings.Contains(res.Error, "reconcile") {
		t.Fatalf("unexpected failure reason: %q", res.Error)
	}
	// The order was already placed; the result must not hide it.
	if res.Order == nil || res.Order.Quantity != 15 {
		t.Fatalf("placed order missing from failed result: %+v", res.Order)
	}
}

func TestRestockBackendCheckFailure(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(nil)
	backend.checkErr = fmt.Errorf("%w: dial timeout", contractx.ErrBackendUnavailable)
	gateway := &fakeSupplier{listings: []contractx.SupplierListing{laptopListing()}}
	svc := newTestService(t, backend, gateway, &fakeAudit{})

	res, err := svc.RestockIfNeeded(context.Background(), "Laptop")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.FinalState != contractx.StateFailed {
		t.Fatalf("final state: got %s", res.FinalState)
	}
	if len(gateway.searchCalls) != 0 {
		t.Fatal("supplier must not be called when inspection fails")
	}
}

func TestRestockInvalidProduct(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeBackend(nil), &fakeSupplier{}, &fakeAudit{})

	if _, err := svc.RestockIfNeeded(context.Background(), "   "); !errors.Is(err, contractx.ErrInvalidProduct) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRestockAuditFailureDoesNotAlterResult(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(map[string]int{"Laptop": 5})
	gateway := &fakeSupplier{listings: []contractx.SupplierListing{laptopListing()}}
	svc := newTestService(t, backend, gateway, &fakeAudit{err: errors.New("sink down")})

	res, err := svc.RestockIfNeeded(context.Background(), "Laptop")
	if err != nil {
		t.Fatalf("audit failure leaked: %v", err)
	}
	if res.FinalState != contractx.StateDone {
		t.Fatalf("final state: got %s", res.FinalState)
	}
	if backend.quantities["Laptop"] != 20 {
		t.Fatalf("stored quantity: got %d", backend.quantities["Laptop"])
	}
}

func TestRestockListingSelectorOverride(t *testing.T) {
	t.Parallel()

	second := contractx.SupplierListing{SupplierID: 7, Title: "Laptop Pro", UnitPrice: 1299, AvailableStock: 10}
	backend := newFakeBackend(map[string]int{"Laptop": 5})
	gateway := &fakeSupplier{listings: []contractx.SupplierListing{laptopListing(), second}}
	svc := newTestService(t, backend, gateway, &fakeAudit{},
		WithListingSelector(func(_ string, listings []contractx.SupplierListing) contractx.SupplierListing {
			return listings[len(listings)-1]
		}),
	)

	res, err := svc.RestockIfNeeded(context.Background(), "Laptop")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Order == nil || res.Order.SupplierID != 7 {
		t.Fatalf("selector not applied: %+v", res.Order)
	}
}

func TestCheckStockOperation(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(map[string]int{"Laptop": 5})
	sink := &fakeAudit{}
	svc := newTestService(t, backend, &fakeSupplier{}, sink)

	level, err := svc.CheckStock(context.Background(), "Laptop")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if level.Product != "Laptop" || level.Quantity != 5 {
		t.Fatalf("unexpected level: %+v", level)
	}

	unknown, err := svc.CheckStock(context.Background(), "Ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if unknown.Quantity != 0 {
		t.Fatalf("unknown product quantity: got %d, want 0", unknown.Quantity)
	}

	if len(sink.entries) != 2 {
		t.Fatalf("audit entries: got %d, want 2", len(sink.entries))
	}
	if !reflect.DeepEqual(sink.entries[0].ToolsUsed, []string{"check_inventory"}) {
		t.Fatalf("audit tools: got %v", sink.entries[0].ToolsUsed)
	}
}

func TestUpdateStockOperationRejectsNegative(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(map[string]int{"Headphones": 50})
	sink := &fakeAudit{}
	svc := newTestService(t, backend, &fakeSupplier{}, sink)

	_, err := svc.UpdateStock(context.Background(), "Headphones", -1000)
	var nsErr *contractx.NegativeStockError
	if !errors.As(err, &nsErr) {
		t.Fatalf("unexpected error: %v", err)
	}
	if nsErr.Current != 50 {
		t.Fatalf("error current: got %d, want 50", nsErr.Current)
	}
	if backend.quantities["Headphones"] != 50 {
		t.Fatalf("stored quantity: got %d, want 50", backend.quantities["Headphones"])
	}
	if len(sink.entries) != 0 {
		t.Fatalf("rejected update must not audit a success, got %d entries", len(sink.entries))
	}
}

func TestUpdateStockOperation(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(map[string]int{"Headphones": 50})
	svc := newTestService(t, backend, &fakeSupplier{}, &fakeAudit{})

	update, err := svc.UpdateStock(context.Background(), "Headphones", -10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if update.Previous != 50 || update.Current != 40 {
		t.Fatalf("unexpected update: %+v", update)
	}
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	l, err := ledgerx.New(newFakeBackend(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := New(nil, &fakeSupplier{}, nil, Config{}); err == nil {
		t.Fatal("expected error for nil ledger")
	}
	if _, err := New(l, nil, nil, Config{}); err == nil {
		t.Fatal("expected error for nil supplier")
	}
	if _, err := New(l, &fakeSupplier{}, nil, Config{Threshold: 20, TargetLevel: 20}); err == nil {
		t.Fatal("expected error for target <= threshold")
	}
	if _, err := New(l, &fakeSupplier{}, nil, Config{Threshold: -1, TargetLevel: 20}); err == nil {
		t.Fatal("expected error for negative threshold")
	}

	svc, err := New(l, &fakeSupplier{}, nil, Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.threshold != DefaultThreshold || svc.targetLevel != DefaultTargetLevel {
		t.Fatalf("defaults not applied: threshold=%d target=%d", svc.threshold, svc.targetLevel)
	}
}

func TestWithClock(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2025, 11, 3, 10, 30, 0, 0, time.UTC)
	backend := newFakeBackend(map[string]int{"Smartphone": 20})
	sink := &fakeAudit{}
	svc := newTestService(t, backend, &fakeSupplier{}, sink, WithClock(func() time.Time { return fixed }))

	if _, err := svc.RestockIfNeeded(context.Background(), "Smartphone"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sink.entries) != 1 {
		t.Fatalf("audit entries: got %d, want 1", len(sink.entries))
	}
	if !sink.entries[0].CreatedAt.Equal(fixed) {
		t.Fatalf("audit timestamp: got %v, want %v", sink.entries[0].CreatedAt, fixed)
	}
}
