package reservation

import (
	"context"

	pkgerrors "github.com/confeccionesismael/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockReservationRequest asks for qty units of a variant on behalf of a
// cart line.
type StockReservationRequest struct {
	CartItemID uuid.UUID
	VariantID  uuid.UUID
	Qty        int
}

// StockReservationResult reports the outcome for one request.
type StockReservationResult struct {
	CartItemID uuid.UUID
	VariantID  uuid.UUID
	Qty        int
	Reserved   bool
	Reason     string
}

// ReserveStock decrements variant stock for each request with a single
// conditional UPDATE per line. A request that matches zero rows (stock moved
// underneath us) is reported as not reserved; the caller decides whether to
// roll back the surrounding transaction. Requests must run inside one
// transaction so a failed line undoes the earlier decrements.
func ReserveStock(ctx context.Context, tx *gorm.DB, requests []StockReservationRequest) ([]StockReservationResult, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock reservation")
	}

	results := make([]StockReservationResult, 0, len(requests))
	for _, req := range requests {
		if req.VariantID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant id required for reservation")
		}
		if req.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation quantity must be positive")
		}

		res := tx.WithContext(ctx).Exec(`
			UPDATE variants
			SET stock = stock - ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND stock >= ?
		`, req.Qty, req.VariantID, req.Qty)
		if res.Error != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reserve stock")
		}

		result := StockReservationResult{
			CartItemID: req.CartItemID,
			VariantID:  req.VariantID,
			Qty:        req.Qty,
			Reserved:   res.RowsAffected == 1,
		}
		if !result.Reserved {
			result.Reason = "stock changed during checkout"
		}
		results = append(results, result)
	}
	return results, nil
}

// ReleaseStock returns qty units to a variant. Used by cancellation restock;
// the increment is unconditional because snapshots never exceed what was
// reserved.
func ReleaseStock(ctx context.Context, tx *gorm.DB, variantID uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock release")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE variants
		SET stock = stock + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, variantID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "release stock")
	}
	return nil
}
