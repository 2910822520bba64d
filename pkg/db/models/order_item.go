package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderItem is a snapshot line. VariantID is a weak reference kept only so
// cancellation can restock; the displayed fields never re-read the catalog.
type OrderItem struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID            uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	VariantID          *uuid.UUID      `gorm:"column:variant_id;type:uuid"`
	ProductName        string          `gorm:"column:product_name;not null"`
	VariantDescription string          `gorm:"column:variant_description;not null;default:''"`
	UnitPrice          decimal.Decimal `gorm:"column:unit_price;type:decimal(10,2);not null"`
	Quantity           int             `gorm:"column:quantity;not null"`
	LineTotal          decimal.Decimal `gorm:"column:line_total;type:decimal(10,2);not null"`
}

func (o *OrderItem) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
