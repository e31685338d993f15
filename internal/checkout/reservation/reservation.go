package reservation

import (
	"context"

	"github.com/google/uuid"

	pkgerrors "github.com/elarose/storefront/pkg/errors"
)

// StockReserver decrements product stock when enough units remain.
type StockReserver interface {
	ReserveStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error)
}

// InventoryReservationRequest asks for qty units of one product.
type InventoryReservationRequest struct {
	ProductID uuid.UUID
	Qty       int
}

// InventoryReservationResult reports the outcome for one request.
type InventoryReservationResult struct {
	ProductID uuid.UUID
	Qty       int
	Reserved  bool
	Reason    string
}

// ReserveInventory attempts every request in order. A request that cannot
// be met is reported with a reason; later requests are still attempted so
// callers can surface every shortage at once. Callers run it inside a
// transaction and roll back when any request fails.
func ReserveInventory(ctx context.Context, stock StockReserver, requests []InventoryReservationRequest) ([]InventoryReservationResult, error) {
	for _, req := range requests {
		if req.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
		}
		if req.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
	}

	results := make([]InventoryReservationResult, 0, len(requests))
	for _, req := range requests {
		ok, err := stock.ReserveStock(ctx, req.ProductID, req.Qty)
		if err != nil {
			return nil, err
		}
		result := InventoryReservationResult{ProductID: req.ProductID, Qty: req.Qty, Reserved: ok}
		if !ok {
			result.Reason = "insufficient stock"
		}
		results = append(results, result)
	}
	return results, nil
}

// Shortages returns the product ids whose reservation failed.
func Shortages(results []InventoryReservationResult) map[string]string {
	out := map[string]string{}
	for _, r := range results {
		if !r.Reserved {
			out[r.ProductID.String()] = r.Reason
		}
	}
	return out
}
