package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Color is a named swatch variants can reference.
type Color struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name    string    `gorm:"column:name;not null"`
	HexCode string    `gorm:"column:hex_code;not null"`
}

func (c *Color) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
