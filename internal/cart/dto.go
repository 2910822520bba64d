package cart

import (
	"github.com/confeccionesismael/storefront-backend/internal/catalog"
	"github.com/confeccionesismael/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineDTO is one cart row as served to clients.
type LineDTO struct {
	ID                 uuid.UUID       `json:"id"`
	VariantID          uuid.UUID       `json:"variant_id"`
	ProductName        string          `json:"product_name"`
	VariantDescription string          `json:"variant_description"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	Quantity           int             `json:"quantity"`
	LineTotal          decimal.Decimal `json:"line_total"`
	AvailableStock     int             `json:"available_stock"`
}

// CartDTO is the full cart projection.
type CartDTO struct {
	ID       uuid.UUID       `json:"id"`
	Items    []LineDTO       `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func toDTO(cart *models.Cart) *CartDTO {
	dto := &CartDTO{
		ID:       cart.ID,
		Items:    make([]LineDTO, 0, len(cart.Items)),
		Subtotal: decimal.Zero,
	}
	for _, item := range cart.Items {
		line := LineDTO{
			ID:        item.ID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		}
		if item.Variant != nil {
			line.UnitPrice = item.Variant.Price
			line.AvailableStock = item.Variant.Stock
			line.VariantDescription = catalog.VariantDescription(*item.Variant)
			if item.Variant.Product != nil {
				line.ProductName = item.Variant.Product.Name
			}
		}
		line.LineTotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		dto.Subtotal = dto.Subtotal.Add(line.LineTotal)
		dto.Items = append(dto.Items, line)
	}
	return dto
}
