package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is the catalog listing; purchasable units are its Variants.
type Product struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	CategoryID  *uuid.UUID     `gorm:"column:category_id;type:uuid"`
	Name        string         `gorm:"column:name;not null"`
	Slug        string         `gorm:"column:slug;not null;uniqueIndex"`
	Description string         `gorm:"column:description;not null;default:''"`
	IsActive    bool           `gorm:"column:is_active;not null;default:true"`
	Category    *Category      `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	Images      []ProductImage `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Variants    []Variant      `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
