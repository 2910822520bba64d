package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/confeccionesismael/storefront-backend/internal/cart"
	"github.com/confeccionesismael/storefront-backend/internal/catalog"
	"github.com/confeccionesismael/storefront-backend/internal/checkout/reservation"
	"github.com/confeccionesismael/storefront-backend/internal/orders"
	"github.com/confeccionesismael/storefront-backend/pkg/config"
	"github.com/confeccionesismael/storefront-backend/pkg/db/models"
	"github.com/confeccionesismael/storefront-backend/pkg/enums"
	pkgerrors "github.com/confeccionesismael/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type zoneLoader interface {
	GetZone(ctx context.Context, id uuid.UUID) (*models.ShippingZone, error)
}

type profileWriter interface {
	UpdateContact(ctx context.Context, tx *gorm.DB, userID uuid.UUID, phone, address string) error
}

type reservationRunner interface {
	Reserve(ctx context.Context, tx *gorm.DB, requests []reservation.StockReservationRequest) ([]reservation.StockReservationResult, error)
}

type reservationEngine struct{}

func (reservationEngine) Reserve(ctx context.Context, tx *gorm.DB, requests []reservation.StockReservationRequest) ([]reservation.StockReservationResult, error) {
	return reservation.ReserveStock(ctx, tx, requests)
}

// Input captures the checkout form.
type Input struct {
	Owner         cart.Owner
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	Address       string
	Notes         string
	IsPickup      bool
	ShippingZone  *uuid.UUID
	PaymentMethod enums.PaymentMethod
}

// Service converts a cart into an immutable order.
type Service interface {
	Execute(ctx context.Context, input Input) (*orders.OrderDTO, error)
}

type service struct {
	tx          txRunner
	cartRepo    cart.CartRepository
	ordersRepo  orders.Repository
	zones       zoneLoader
	profiles    profileWriter
	reservation reservationRunner
	store       config.StoreConfig
}

// ServiceParams bundles checkout dependencies.
type ServiceParams struct {
	Tx          txRunner
	CartRepo    cart.CartRepository
	OrdersRepo  orders.Repository
	Zones       zoneLoader
	Profiles    profileWriter
	Reservation reservationRunner
	Store       config.StoreConfig
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.CartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.OrdersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Zones == nil {
		return nil, fmt.Errorf("zone loader required")
	}
	if params.Reservation == nil {
		params.Reservation = reservationEngine{}
	}
	return &service{
		tx:          params.Tx,
		cartRepo:    params.CartRepo,
		ordersRepo:  params.OrdersRepo,
		zones:       params.Zones,
		profiles:    params.Profiles,
		reservation: params.Reservation,
		store:       params.Store,
	}, nil
}

// Execute runs the whole conversion in one transaction: fresh stock reads,
// conditional decrements, order + snapshot creation, cart emptying. Any line
// failure rolls back everything.
func (s *service) Execute(ctx context.Context, input Input) (*orders.OrderDTO, error) {
	if err := s.validate(&input); err != nil {
		return nil, err
	}

	var dto *orders.OrderDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)

		record, err := s.loadCart(ctx, cartRepo, input.Owner)
		if err != nil {
			return err
		}
		if len(record.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart contains no items")
		}

		shippingCost, zoneID, err := s.resolveShipping(ctx, input)
		if err != nil {
			return err
		}

		requests := make([]reservation.StockReservationRequest, 0, len(record.Items))
		lines := make([]models.OrderItem, 0, len(record.Items))
		subtotal := decimal.Zero

		for _, item := range record.Items {
			variant, err := cartRepo.FindVariantForUpdate(ctx, item.VariantID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "cart references a missing variant")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
			}
			if !variant.IsActive || (variant.Product != nil && !variant.Product.IsActive) {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart references an unavailable variant").
					WithDetails(map[string]any{"variant_id": variant.ID})
			}
			if item.Quantity > variant.Stock {
				return pkgerrors.New(pkgerrors.CodeInsufficientStock, "requested quantity exceeds available stock").
					WithDetails(map[string]any{
						"variant_id": variant.ID,
						"attempted":  item.Quantity,
						"available":  variant.Stock,
					})
			}

			requests = append(requests, reservation.StockReservationRequest{
				CartItemID: item.ID,
				VariantID:  item.VariantID,
				Qty:        item.Quantity,
			})

			lineTotal := variant.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			subtotal = subtotal.Add(lineTotal)

			variantID := item.VariantID
			productName := ""
			if variant.Product != nil {
				productName = variant.Product.Name
			}
			lines = append(lines, models.OrderItem{
				VariantID:          &variantID,
				ProductName:        productName,
				VariantDescription: catalog.VariantDescription(*variant),
				UnitPrice:          variant.Price,
				Quantity:           item.Quantity,
				LineTotal:          lineTotal,
			})
		}

		results, err := s.reservation.Reserve(ctx, tx, requests)
		if err != nil {
			return err
		}
		for _, result := range results {
			if !result.Reserved {
				return pkgerrors.New(pkgerrors.CodeStockRaceLost, "stock changed during checkout").
					WithDetails(map[string]any{
						"variant_id": result.VariantID,
						"attempted":  result.Qty,
					})
			}
		}

		order := &models.Order{
			UserID:              input.Owner.UserID,
			Status:              enums.OrderStatusPending,
			CustomerName:        input.CustomerName,
			CustomerPhone:       input.CustomerPhone,
			CustomerEmail:       input.CustomerEmail,
			CustomerAddress:     input.Address,
			Notes:               input.Notes,
			IsPickup:            input.IsPickup,
			ShippingZoneID:      zoneID,
			ShippingCost:        shippingCost,
			Subtotal:            subtotal,
			Total:               subtotal.Add(shippingCost),
			PaymentMethod:       input.PaymentMethod,
			PaymentInstructions: paymentInstructions(input.PaymentMethod, s.store),
		}
		created, err := ordersRepo.Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		for i := range lines {
			lines[i].OrderID = created.ID
		}
		if err := ordersRepo.CreateItems(ctx, lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}

		if err := cartRepo.ClearItems(ctx, record.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "empty cart")
		}

		if s.profiles != nil && input.Owner.UserID != nil {
			if err := s.profiles.UpdateContact(ctx, tx, *input.Owner.UserID, input.CustomerPhone, input.Address); err != nil {
				return err
			}
		}

		loaded, err := ordersRepo.FindByID(ctx, created.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		projected := orders.FromModel(loaded)
		dto = &projected
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (s *service) validate(input *Input) error {
	if strings.TrimSpace(input.CustomerName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if strings.TrimSpace(input.CustomerPhone) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer phone is required")
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = enums.PaymentMethodArrange
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if input.IsPickup {
		input.ShippingZone = nil
		return nil
	}
	if input.ShippingZone == nil || *input.ShippingZone == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery requires a shipping zone")
	}
	if strings.TrimSpace(input.Address) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery requires an address")
	}
	return nil
}

func (s *service) loadCart(ctx context.Context, repo cart.CartRepository, owner cart.Owner) (*models.Cart, error) {
	var (
		record *models.Cart
		err    error
	)
	if owner.UserID != nil && *owner.UserID != uuid.Nil {
		record, err = repo.FindActiveByUser(ctx, *owner.UserID)
	} else if strings.TrimSpace(owner.SessionKey) != "" {
		record, err = repo.FindActiveBySession(ctx, owner.SessionKey)
	} else {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart contains no items")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return record, nil
}

func (s *service) resolveShipping(ctx context.Context, input Input) (decimal.Decimal, *uuid.UUID, error) {
	if input.IsPickup {
		return decimal.Zero, nil, nil
	}
	zone, err := s.zones.GetZone(ctx, *input.ShippingZone)
	if err != nil {
		return decimal.Zero, nil, err
	}
	id := zone.ID
	return zone.Cost, &id, nil
}
