package cart

import (
	"context"

	"github.com/confeccionesismael/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartRepository abstracts cart persistence so services can run against a
// transaction-bound copy.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindActiveBySession(ctx context.Context, sessionKey string) (*models.Cart, error)
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	FindItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error)
	FindItemByVariant(ctx context.Context, cartID, variantID uuid.UUID) (*models.CartItem, error)
	FindVariantForUpdate(ctx context.Context, variantID uuid.UUID) (*models.Variant, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	ClearItems(ctx context.Context, cartID uuid.UUID) error
	Deactivate(ctx context.Context, cartID uuid.UUID) error
	Reload(ctx context.Context, cartID uuid.UUID) (*models.Cart, error)
}
