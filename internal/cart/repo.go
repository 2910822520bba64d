package cart

import (
	"context"

	pkgdb "github.com/confeccionesismael/storefront-backend/pkg/db"
	"github.com/confeccionesismael/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes persistence operations for carts and their items.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) preloadCart(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.created_at ASC")
		}).
		Preload("Items.Variant").
		Preload("Items.Variant.Product").
		Preload("Items.Variant.Color").
		Preload("Items.Variant.Attributes")
}

// FindActiveBySession loads the newest active guest cart for the session key.
func (r *Repository) FindActiveBySession(ctx context.Context, sessionKey string) (*models.Cart, error) {
	var cart models.Cart
	err := r.preloadCart(ctx).
		Where("session_key = ? AND user_id IS NULL AND is_active = ?", sessionKey, true).
		Order("created_at DESC").
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindActiveByUser loads the newest active cart owned by the user.
func (r *Repository) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.preloadCart(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// Create inserts a new cart.
func (r *Repository) Create(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	cart.IsActive = true
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// FindItem loads a cart line scoped to the owning cart.
func (r *Repository) FindItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := pkgdb.ForUpdate(r.db.WithContext(ctx)).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindItemByVariant loads the line for a (cart, variant) pair under lock.
func (r *Repository) FindItemByVariant(ctx context.Context, cartID, variantID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := pkgdb.ForUpdate(r.db.WithContext(ctx)).
		Where("cart_id = ? AND variant_id = ?", cartID, variantID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindVariantForUpdate reads the variant row under lock for a fresh stock
// value. Product, color and attributes ride along for order-line snapshots.
func (r *Repository) FindVariantForUpdate(ctx context.Context, variantID uuid.UUID) (*models.Variant, error) {
	var variant models.Variant
	err := pkgdb.ForUpdate(r.db.WithContext(ctx)).
		Preload("Product").
		Preload("Color").
		Preload("Attributes").
		Where("id = ?", variantID).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// CreateItem inserts a cart line.
func (r *Repository) CreateItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateItemQuantity sets the absolute quantity of a line.
func (r *Repository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

// DeleteItem removes a cart line.
func (r *Repository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", itemID).
		Delete(&models.CartItem{}).Error
}

// ClearItems removes all lines belonging to a cart.
func (r *Repository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error
}

// Deactivate flags the cart as no longer usable.
func (r *Repository) Deactivate(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("is_active", false).Error
}

// Reload fetches the cart with its full item graph.
func (r *Repository) Reload(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.preloadCart(ctx).
		Where("id = ?", cartID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}
