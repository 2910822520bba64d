package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/confeccionesismael/storefront-backend/pkg/enums"
)

// Order is the immutable snapshot produced at checkout. Customer and money
// fields are copied in at creation and never re-synced from the catalog.
// StockReverted is the one-shot flag guarding cancellation restock.
type Order struct {
	ID                  uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID              *uuid.UUID          `gorm:"column:user_id;type:uuid;index"`
	Status              enums.OrderStatus   `gorm:"column:status;not null;default:'pending'"`
	CustomerName        string              `gorm:"column:customer_name;not null;default:''"`
	CustomerPhone       string              `gorm:"column:customer_phone;not null;default:''"`
	CustomerEmail       string              `gorm:"column:customer_email;not null;default:''"`
	CustomerAddress     string              `gorm:"column:customer_address;not null;default:''"`
	Notes               string              `gorm:"column:notes;not null;default:''"`
	IsPickup            bool                `gorm:"column:is_pickup;not null;default:false"`
	ShippingZoneID      *uuid.UUID          `gorm:"column:shipping_zone_id;type:uuid"`
	ShippingCost        decimal.Decimal     `gorm:"column:shipping_cost;type:decimal(10,2);not null"`
	Subtotal            decimal.Decimal     `gorm:"column:subtotal;type:decimal(10,2);not null"`
	Total               decimal.Decimal     `gorm:"column:total;type:decimal(10,2);not null"`
	PaymentMethod       enums.PaymentMethod `gorm:"column:payment_method;not null;default:'arrange'"`
	PaymentInstructions string              `gorm:"column:payment_instructions;not null;default:''"`
	StockReverted       bool                `gorm:"column:stock_reverted;not null;default:false"`
	ShippingZone        *ShippingZone       `gorm:"foreignKey:ShippingZoneID;constraint:OnDelete:SET NULL"`
	Items               []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
