package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/confeccionesismael/storefront-backend/pkg/db/models"
	pkgerrors "github.com/confeccionesismael/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Owner identifies who a cart belongs to: an anonymous session or a user.
// Exactly one of the two fields is set.
type Owner struct {
	SessionKey string
	UserID     *uuid.UUID
}

func (o Owner) validate() error {
	hasSession := strings.TrimSpace(o.SessionKey) != ""
	hasUser := o.UserID != nil && *o.UserID != uuid.Nil
	if hasSession == hasUser {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart owner must be a session or a user, not both")
	}
	return nil
}

// Service exposes cart operations.
type Service interface {
	GetCart(ctx context.Context, owner Owner) (*CartDTO, error)
	AddItem(ctx context.Context, owner Owner, variantID uuid.UUID, quantity int) (*CartDTO, error)
	SetQuantity(ctx context.Context, owner Owner, itemID uuid.UUID, quantity int) (*CartDTO, error)
	RemoveItem(ctx context.Context, owner Owner, itemID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, owner Owner) (*CartDTO, error)
	MergeGuestCart(ctx context.Context, sessionKey string, userID uuid.UUID) error
}

type service struct {
	repo CartRepository
	tx   txRunner
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// GetCart returns the owner's active cart, creating one when missing.
func (s *service) GetCart(ctx context.Context, owner Owner) (*CartDTO, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}

	var dto *CartDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := s.findOrCreate(ctx, repo, owner)
		if err != nil {
			return err
		}
		dto = toDTO(cart)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// AddItem adds quantity of a variant to the owner's cart. Quantities below
// one are clamped to one; the resulting line quantity must fit current stock.
func (s *service) AddItem(ctx context.Context, owner Owner, variantID uuid.UUID, quantity int) (*CartDTO, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}
	if variantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant id is required")
	}
	if quantity < 1 {
		quantity = 1
	}

	var dto *CartDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := s.findOrCreate(ctx, repo, owner)
		if err != nil {
			return err
		}

		variant, err := loadPurchasableVariant(ctx, repo, variantID)
		if err != nil {
			return err
		}

		existing, err := repo.FindItemByVariant(ctx, cart.ID, variantID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
		}

		target := quantity
		if existing != nil {
			target = existing.Quantity + quantity
		}
		if target > variant.Stock {
			return insufficientStock(variantID, target, variant.Stock)
		}

		if existing != nil {
			if err := repo.UpdateItemQuantity(ctx, existing.ID, target); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
			}
		} else {
			item := &models.CartItem{
				CartID:    cart.ID,
				VariantID: variantID,
				Quantity:  target,
			}
			if err := repo.CreateItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart line")
			}
		}

		return s.reload(ctx, repo, cart.ID, &dto)
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// SetQuantity sets the absolute quantity of a line. Zero or negative removes it.
func (s *service) SetQuantity(ctx context.Context, owner Owner, itemID uuid.UUID, quantity int) (*CartDTO, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}

	var dto *CartDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := s.findOwned(ctx, repo, owner)
		if err != nil {
			return err
		}

		item, err := repo.FindItem(ctx, cart.ID, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
		}

		if quantity <= 0 {
			if err := repo.DeleteItem(ctx, item.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart line")
			}
			return s.reload(ctx, repo, cart.ID, &dto)
		}

		variant, err := loadPurchasableVariant(ctx, repo, item.VariantID)
		if err != nil {
			return err
		}
		if quantity > variant.Stock {
			return insufficientStock(item.VariantID, quantity, variant.Stock)
		}

		if err := repo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
		}
		return s.reload(ctx, repo, cart.ID, &dto)
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// RemoveItem drops a line from the owner's cart.
func (s *service) RemoveItem(ctx context.Context, owner Owner, itemID uuid.UUID) (*CartDTO, error) {
	return s.SetQuantity(ctx, owner, itemID, 0)
}

// Clear empties the owner's cart.
func (s *service) Clear(ctx context.Context, owner Owner) (*CartDTO, error) {
	if err := owner.validate(); err != nil {
		return nil, err
	}

	var dto *CartDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := s.findOwned(ctx, repo, owner)
		if err != nil {
			return err
		}
		if err := repo.ClearItems(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		return s.reload(ctx, repo, cart.ID, &dto)
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// MergeGuestCart folds the guest session cart into the user's cart at login.
// Quantities add up but are clamped to current stock; the guest cart is
// deactivated afterwards.
func (s *service) MergeGuestCart(ctx context.Context, sessionKey string, userID uuid.UUID) error {
	if strings.TrimSpace(sessionKey) == "" || userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "session key and user id are required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		guest, err := repo.FindActiveBySession(ctx, sessionKey)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load guest cart")
		}
		if len(guest.Items) == 0 {
			return repo.Deactivate(ctx, guest.ID)
		}

		target, err := s.findOrCreate(ctx, repo, Owner{UserID: &userID})
		if err != nil {
			return err
		}

		for _, line := range guest.Items {
			variant, err := repo.FindVariantForUpdate(ctx, line.VariantID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
			}
			if !variant.IsActive || variant.Stock < 1 {
				continue
			}

			existing, err := repo.FindItemByVariant(ctx, target.ID, line.VariantID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
			}

			quantity := line.Quantity
			if existing != nil {
				quantity += existing.Quantity
			}
			if quantity > variant.Stock {
				quantity = variant.Stock
			}

			if existing != nil {
				if err := repo.UpdateItemQuantity(ctx, existing.ID, quantity); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge cart line")
				}
			} else {
				item := &models.CartItem{
					CartID:    target.ID,
					VariantID: line.VariantID,
					Quantity:  quantity,
				}
				if err := repo.CreateItem(ctx, item); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge cart line")
				}
			}
		}

		return repo.Deactivate(ctx, guest.ID)
	})
}

func (s *service) findOrCreate(ctx context.Context, repo CartRepository, owner Owner) (*models.Cart, error) {
	cart, err := s.findOwned(ctx, repo, owner)
	if err == nil {
		return cart, nil
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		return nil, err
	}

	fresh := &models.Cart{SessionKey: owner.SessionKey, UserID: owner.UserID}
	created, err := repo.Create(ctx, fresh)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return created, nil
}

func (s *service) findOwned(ctx context.Context, repo CartRepository, owner Owner) (*models.Cart, error) {
	var (
		cart *models.Cart
		err  error
	)
	if owner.UserID != nil && *owner.UserID != uuid.Nil {
		cart, err = repo.FindActiveByUser(ctx, *owner.UserID)
	} else {
		cart, err = repo.FindActiveBySession(ctx, owner.SessionKey)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "active cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

func (s *service) reload(ctx context.Context, repo CartRepository, cartID uuid.UUID, out **CartDTO) error {
	cart, err := repo.Reload(ctx, cartID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
	}
	*out = toDTO(cart)
	return nil
}

func loadPurchasableVariant(ctx context.Context, repo CartRepository, variantID uuid.UUID) (*models.Variant, error) {
	variant, err := repo.FindVariantForUpdate(ctx, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}
	if !variant.IsActive || (variant.Product != nil && !variant.Product.IsActive) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}
	if variant.Stock < 1 {
		return nil, insufficientStock(variantID, 1, 0)
	}
	return variant, nil
}

func insufficientStock(variantID uuid.UUID, attempted, available int) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "requested quantity exceeds available stock").
		WithDetails(map[string]any{
			"variant_id": variantID,
			"attempted":  attempted,
			"available":  available,
		})
}
