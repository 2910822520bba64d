package shipping

import (
	"context"
	"errors"
	"fmt"

	"github.com/confeccionesismael/storefront-backend/pkg/db/models"
	pkgerrors "github.com/confeccionesismael/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type zoneRepository interface {
	ListActive(ctx context.Context) ([]models.ShippingZone, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.ShippingZone, error)
}

// Service exposes shipping zone reads used by checkout and the storefront.
type Service interface {
	ListZones(ctx context.Context) ([]models.ShippingZone, error)
	GetZone(ctx context.Context, id uuid.UUID) (*models.ShippingZone, error)
}

type service struct {
	repo zoneRepository
}

// NewService builds a shipping service.
func NewService(repo zoneRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shipping repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListZones(ctx context.Context) ([]models.ShippingZone, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shipping zones")
	}
	return rows, nil
}

// GetZone returns an active zone usable for delivery pricing.
func (s *service) GetZone(ctx context.Context, id uuid.UUID) (*models.ShippingZone, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping zone id is required")
	}
	zone, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipping zone not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipping zone")
	}
	if !zone.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipping zone not found")
	}
	return zone, nil
}
