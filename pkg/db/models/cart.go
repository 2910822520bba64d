package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cart belongs to exactly one anonymous session or one user, never both.
// SessionKey stays empty on user-owned carts and UserID nil on guest carts.
type Cart struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	SessionKey string     `gorm:"column:session_key;not null;default:'';index"`
	UserID     *uuid.UUID `gorm:"column:user_id;type:uuid;index"`
	IsActive   bool       `gorm:"column:is_active;not null;default:true"`
	Items      []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Cart) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
