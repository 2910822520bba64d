package shipping

import (
	"context"

	"github.com/confeccionesismael/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository encapsulates shipping zone persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a shipping repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// ListActive returns active zones ordered by name.
func (r *Repository) ListActive(ctx context.Context) ([]models.ShippingZone, error) {
	var rows []models.ShippingZone
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads a zone regardless of active state.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ShippingZone, error) {
	var zone models.ShippingZone
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&zone).Error; err != nil {
		return nil, err
	}
	return &zone, nil
}
