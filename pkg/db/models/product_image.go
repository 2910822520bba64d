package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductImage stores the public URL of an uploaded product photo.
type ProductImage struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	URL       string    `gorm:"column:url;not null"`
	AltText   string    `gorm:"column:alt_text;not null;default:''"`
}

func (p *ProductImage) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
