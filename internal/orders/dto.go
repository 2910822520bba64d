package orders

import (
	"time"

	"github.com/confeccionesismael/storefront-backend/pkg/db/models"
	"github.com/confeccionesismael/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemDTO is one immutable snapshot line of an order.
type ItemDTO struct {
	ID                 uuid.UUID       `json:"id"`
	ProductName        string          `json:"product_name"`
	VariantDescription string          `json:"variant_description"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	Quantity           int             `json:"quantity"`
	LineTotal          decimal.Decimal `json:"line_total"`
}

// OrderDTO is the order as served to clients and external receipt renderers.
type OrderDTO struct {
	ID                  uuid.UUID           `json:"id"`
	Status              enums.OrderStatus   `json:"status"`
	CustomerName        string              `json:"customer_name"`
	CustomerPhone       string              `json:"customer_phone"`
	CustomerEmail       string              `json:"customer_email"`
	CustomerAddress     string              `json:"customer_address"`
	Notes               string              `json:"notes"`
	IsPickup            bool                `json:"is_pickup"`
	ShippingZoneName    *string             `json:"shipping_zone_name,omitempty"`
	ShippingCost        decimal.Decimal     `json:"shipping_cost"`
	Subtotal            decimal.Decimal     `json:"subtotal"`
	Total               decimal.Decimal     `json:"total"`
	PaymentMethod       enums.PaymentMethod `json:"payment_method"`
	PaymentInstructions string              `json:"payment_instructions"`
	Items               []ItemDTO           `json:"items"`
	CreatedAt           time.Time           `json:"created_at"`
}

// OrderPage wraps a list result with its cursor.
type OrderPage struct {
	Items      []OrderDTO `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// FromModel builds the public projection of an order.
func FromModel(order *models.Order) OrderDTO {
	dto := OrderDTO{
		ID:                  order.ID,
		Status:              order.Status,
		CustomerName:        order.CustomerName,
		CustomerPhone:       order.CustomerPhone,
		CustomerEmail:       order.CustomerEmail,
		CustomerAddress:     order.CustomerAddress,
		Notes:               order.Notes,
		IsPickup:            order.IsPickup,
		ShippingCost:        order.ShippingCost,
		Subtotal:            order.Subtotal,
		Total:               order.Total,
		PaymentMethod:       order.PaymentMethod,
		PaymentInstructions: order.PaymentInstructions,
		Items:               make([]ItemDTO, 0, len(order.Items)),
		CreatedAt:           order.CreatedAt,
	}
	if order.ShippingZone != nil {
		name := order.ShippingZone.Name
		dto.ShippingZoneName = &name
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, ItemDTO{
			ID:                 item.ID,
			ProductName:        item.ProductName,
			VariantDescription: item.VariantDescription,
			UnitPrice:          item.UnitPrice,
			Quantity:           item.Quantity,
			LineTotal:          item.LineTotal,
		})
	}
	return dto
}
