package accounts

import (
	"time"

	"github.com/confeccionesismael/storefront-backend/pkg/db/models"
	"github.com/confeccionesismael/storefront-backend/pkg/enums"
	"github.com/google/uuid"
)

// ProfileDTO is the transport shape that omits credentials.
type ProfileDTO struct {
	ID        uuid.UUID      `json:"id"`
	Email     string         `json:"email"`
	FullName  string         `json:"full_name"`
	Phone     string         `json:"phone,omitempty"`
	Address   string         `json:"address,omitempty"`
	Role      enums.UserRole `json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// AuthSession carries the tokens and profile returned by register and login.
type AuthSession struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         *ProfileDTO `json:"user"`
}

// FromModel converts a user row into its transport shape.
func FromModel(u *models.User) *ProfileDTO {
	if u == nil {
		return nil
	}
	return &ProfileDTO{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     u.Phone,
		Address:   u.Address,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
