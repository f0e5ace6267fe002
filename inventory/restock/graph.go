package restock

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/tanpawarit/Stocker-Inventory-Restock-Workflow/inventory/contract"
)

// compileRestockGraph wires the state machine:
//
//	inspect_stock -> report_sufficient            (quantity >= threshold)
//	              -> report_failure               (inspection failed)
//	              -> search_supplier -> place_order -> reconcile_stock -> finalize_restock
//
// Failures inside the restock path mark the state and fall through to the
// terminal node; the graph itself only errors on invalid input.
func (s *Service) compileRestockGraph(
	ctx context.Context,
) (compose.Runnable[GraphInput, contractx.WorkflowResult], error) {
	graph := compose.NewGraph[GraphInput, contractx.WorkflowResult]()

	if err := graph.AddLambdaNode("inspect_stock",
		compose.InvokableLambda(func(ctx context.Context, in GraphInput) (*graphState, error) {
			return s.inspectStock(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node inspect_stock: %w", err)
	}

	if err := graph.AddLambdaNode("report_sufficient",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (contractx.WorkflowResult, error) {
			return s.reportSufficient(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node report_sufficient: %w", err)
	}

	if err := graph.AddLambdaNode("report_failure",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (contractx.WorkflowResult, error) {
			return s.reportFailure(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node report_failure: %w", err)
	}

	if err := graph.AddLambdaNode("search_supplier",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return s.searchSupplier(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node search_supplier: %w", err)
	}

	if err := graph.AddLambdaNode("place_order",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return s.placeOrder(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node place_order: %w", err)
	}

	if err := graph.AddLambdaNode("reconcile_stock",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (*graphState, error) {
			return s.reconcileStock(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node reconcile_stock: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_restock",
		compose.InvokableLambda(func(ctx context.Context, in *graphState) (contractx.WorkflowResult, error) {
			return s.finalizeRestock(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_restock: %w", err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *graphState) (string, error) {
			if in == nil {
				return "", fmt.Errorf("restock graph state is nil")
			}
			switch {
			case in.failed():
				return "report_failure", nil
			case in.quantityBefore >= s.threshold:
				return "report_sufficient", nil
			default:
				return "search_supplier", nil
			}
		},
		map[string]bool{
			"report_failure":    true,
			"report_sufficient": true,
			"search_supplier":   true,
		},
	)

	if err := graph.AddBranch("inspect_stock", branch); err != nil {
		return nil, fmt.Errorf("add restock branch: %w", err)
	}

	edges := [][2]string{
		{compose.START, "inspect_stock"},
		{"search_supplier", "place_order"},
		{"place_order", "reconcile_stock"},
		{"reconcile_stock", "finalize_restock"},
		{"report_sufficient", compose.END},
		{"report_failure", compose.END},
		{"finalize_restock", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("restock.restock_if_needed"))
	if err != nil {
		return nil, fmt.Errorf("compile restock graph: %w", err)
	}
	return runner, nil
}
