package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartItem is one variant line inside a cart. The composite unique index
// enforces at most one line per (cart, variant) pair.
type CartItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CartID    uuid.UUID `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:idx_cart_items_cart_variant"`
	VariantID uuid.UUID `gorm:"column:variant_id;type:uuid;not null;uniqueIndex:idx_cart_items_cart_variant"`
	Quantity  int       `gorm:"column:quantity;not null;default:1"`
	Variant   *Variant  `gorm:"foreignKey:VariantID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *CartItem) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
