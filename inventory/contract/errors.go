package contract

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidProduct      = errors.New("product name is empty")
	ErrBackendUnavailable  = errors.New("inventory backend unavailable")
	ErrSupplierUnreachable = errors.New("supplier unreachable")
	ErrOrderRejected       = errors.New("supplier order rejected")
)

// NegativeStockError rejects an update that would breach the non-negativity
// invariant. The stored quantity is unchanged when it is returned.
type NegativeStockError struct {
	Product   string
	Current   int
	Requested int
}

func (e *NegativeStockError) Error() string {
	return fmt.Sprintf("cannot reduce stock below 0: product=%s current=%d requested=%d",
		e.Product, e.Current, e.Requested)
}
