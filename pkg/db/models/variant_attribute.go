package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VariantAttribute is a free-form name/value pair ("Talla: M").
type VariantAttribute struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	VariantID uuid.UUID `gorm:"column:variant_id;type:uuid;not null"`
	Name      string    `gorm:"column:name;not null"`
	Value     string    `gorm:"column:value;not null"`
}

func (v *VariantAttribute) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
