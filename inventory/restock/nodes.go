package restock

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Stocker-Inventory-Restock-Workflow/inventory/contract"
)

type GraphInput struct {
	Product string
}

// graphState carries one restock run between nodes. A non-empty failReason
// marks the run as failed; later pipeline nodes pass the state through
// untouched so the terminal node can report it.
type graphState struct {
	product        string
	quantityBefore int
	orderQty       int
	listing        *contractx.SupplierListing
	order          *contractx.OrderReceipt
	quantityAfter  *int
	failReason     string
	toolsUsed      []string
}

func (st *graphState) failed() bool {
	return st.failReason != ""
}

func (st *graphState) fail(reason string) *graphState {
	st.failReason = reason
	return st
}

func (st *graphState) usedTool(tool string) {
	st.toolsUsed = append(st.toolsUsed, tool)
}

// inspectStock reads the current quantity. Input validation errors abort
// the graph; a degraded backend becomes a failed run instead.
func (s *Service) inspectStock(ctx context.Context, in GraphInput) (*graphState, error) {
	product := strings.TrimSpace(in.Product)
	if product == "" {
		return nil, contractx.ErrInvalidProduct
	}

	st := &graphState{product: product}
	st.usedTool(toolCheckInventory)

	quantity, err := s.ledger.CheckStock(ctx, product)
	if err != nil {
		return st.fail(fmt.Sprintf("check stock: %v", err)), nil
	}
	st.quantityBefore = quantity
	return st, nil
}

// searchSupplier queries the catalog and picks the listing to order from.
// Zero listings and an unreachable supplier both end the run, with
// distinct messages: the former is a legitimate nothing-to-order outcome.
func (s *Service) searchSupplier(ctx context.Context, st *graphState) (*graphState, error) {
	if st == nil {
		return nil, fmt.Errorf("restock graph state is nil")
	}
	if st.failed() {
		return st, nil
	}

	st.usedTool(toolSearchSupplier)
	listings, err := s.supplier.Search(ctx, st.product)
	if err != nil {
		return st.fail(fmt.Sprintf("supplier search: %v", err)), nil
	}
	if len(listings) == 0 {
		return st.fail(fmt.Sprintf("no matches for %q at supplier", st.product)), nil
	}

	chosen := s.selectListing(st.product, listings)
	st.listing = &chosen
	st.orderQty = s.targetLevel - st.quantityBefore
	return st, nil
}

func (s *Service) placeOrder(ctx context.Context, st *graphState) (*graphState, error) {
	if st == nil {
		return nil, fmt.Errorf("restock graph state is nil")
	}
	if st.failed() {
		return st, nil
	}

	st.usedTool(toolPlaceSupplierOrder)
	receipt, err := s.supplier.PlaceOrder(ctx, st.listing.SupplierID, st.orderQty)
	if err != nil {
		return st.fail(fmt.Sprintf("place order: %v", err)), nil
	}
	st.order = &receipt
	return st, nil
}

// reconcileStock applies the ordered quantity to the ledger. When the
// update fails the already-placed order stays attached to the result; no
// compensating cancellation exists.
func (s *Service) reconcileStock(ctx context.Context, st *graphState) (*graphState, error) {
	if st == nil {
		return nil, fmt.Errorf("restock graph state is nil")
	}
	if st.failed() {
		return st, nil
	}

	st.usedTool(toolUpdateInventory)
	_, updated, err := s.ledger.UpdateStock(ctx, st.product, st.orderQty)
	if err != nil {
		return st.fail(fmt.Sprintf("reconcile stock: %v", err)), nil
	}
	st.quantityAfter = &updated
	return st, nil
}

func (s *Service) reportSufficient(st *graphState) (contractx.WorkflowResult, error) {
	if st == nil {
		return contractx.WorkflowResult{}, fmt.Errorf("restock graph state is nil")
	}
	return contractx.WorkflowResult{
		Product:        st.product,
		FinalState:     contractx.StateSufficient,
		QuantityBefore: st.quantityBefore,
		ToolsUsed:      st.toolsUsed,
	}, nil
}

func (s *Service) reportFailure(st *graphState) (contractx.WorkflowResult, error) {
	if st == nil {
		return contractx.WorkflowResult{}, fmt.Errorf("restock graph state is nil")
	}
	return contractx.WorkflowResult{
		Product:        st.product,
		FinalState:     contractx.StateFailed,
		QuantityBefore: st.quantityBefore,
		Order:          st.order,
		Error:          st.failReason,
		ToolsUsed:      st.toolsUsed,
	}, nil
}

func (s *Service) finalizeRestock(st *graphState) (contractx.WorkflowResult, error) {
	if st == nil {
		return contractx.WorkflowResult{}, fmt.Errorf("restock graph state is nil")
	}
	if st.failed() {
		return s.reportFailure(st)
	}
	return contractx.WorkflowResult{
		Product:        st.product,
		FinalState:     contractx.StateDone,
		QuantityBefore: st.quantityBefore,
		QuantityAfter:  st.quantityAfter,
		Order:          st.order,
		ToolsUsed:      st.toolsUsed,
	}, nil
}
