package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Variant is the purchasable SKU of a Product. Stock is never written
// directly by services; it only moves through the conditional decrement in
// checkout and the atomic increment in cancellation restock.
type Variant struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	ProductID      uuid.UUID          `gorm:"column:product_id;type:uuid;not null"`
	ColorID        *uuid.UUID         `gorm:"column:color_id;type:uuid"`
	VariantImageID *uuid.UUID         `gorm:"column:variant_image_id;type:uuid"`
	SKU            string             `gorm:"column:sku;not null;default:''"`
	Price          decimal.Decimal    `gorm:"column:price;type:decimal(10,2);not null"`
	Stock          int                `gorm:"column:stock;not null;default:0"`
	IsActive       bool               `gorm:"column:is_active;not null;default:true"`
	Product        *Product           `gorm:"foreignKey:ProductID"`
	Color          *Color             `gorm:"foreignKey:ColorID;constraint:OnDelete:SET NULL"`
	Attributes     []VariantAttribute `gorm:"foreignKey:VariantID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *Variant) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return v.validateImage(tx)
}

func (v *Variant) BeforeUpdate(tx *gorm.DB) error {
	return v.validateImage(tx)
}

// validateImage rejects a variant image that belongs to another product.
func (v *Variant) validateImage(tx *gorm.DB) error {
	if v.VariantImageID == nil || v.ProductID == uuid.Nil {
		return nil
	}
	var image ProductImage
	if err := tx.Select("product_id").First(&image, "id = ?", *v.VariantImageID).Error; err != nil {
		return err
	}
	if image.ProductID != v.ProductID {
		return errors.New("variant image belongs to a different product")
	}
	return nil
}
