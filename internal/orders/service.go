package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/confeccionesismael/storefront-backend/internal/checkout/reservation"
	"github.com/confeccionesismael/storefront-backend/pkg/db/models"
	"github.com/confeccionesismael/storefront-backend/pkg/enums"
	pkgerrors "github.com/confeccionesismael/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Actor identifies who is reading or mutating an order.
type Actor struct {
	UserID *uuid.UUID
	Role   enums.UserRole
}

func (a Actor) isAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// UpdateStatusInput carries an admin status transition.
type UpdateStatusInput struct {
	OrderID uuid.UUID
	Status  enums.OrderStatus
	Actor   Actor
}

// Service defines order reads and the admin-driven lifecycle.
type Service interface {
	GetOrder(ctx context.Context, id uuid.UUID, actor Actor) (*OrderDTO, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID, cursor string, limit int) (*OrderPage, error)
	ListOrders(ctx context.Context, actor Actor, status *enums.OrderStatus, cursor string, limit int) (*OrderPage, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderDTO, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds an order service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// GetOrder returns the order when the actor owns it or is an admin.
func (s *service) GetOrder(ctx context.Context, id uuid.UUID, actor Actor) (*OrderDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if !actor.isAdmin() {
		owned := actor.UserID != nil && order.UserID != nil && *actor.UserID == *order.UserID
		if !owned {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
	}

	dto := FromModel(order)
	return &dto, nil
}

func (s *service) ListUserOrders(ctx context.Context, userID uuid.UUID, cursor string, limit int) (*OrderPage, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	rows, nextCursor, err := s.repo.ListByUser(ctx, userID, cursor, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return buildPage(rows, nextCursor), nil
}

func (s *service) ListOrders(ctx context.Context, actor Actor, status *enums.OrderStatus, cursor string, limit int) (*OrderPage, error) {
	if !actor.isAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status filter")
	}

	rows, nextCursor, err := s.repo.ListAll(ctx, status, cursor, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return buildPage(rows, nextCursor), nil
}

// UpdateStatus moves an order through its lifecycle. Entering cancelled
// restocks every snapshot line whose variant still exists, exactly once:
// stock_reverted is re-checked after the order row lock is held, so a second
// or concurrent cancel finds it set and skips the restock.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderDTO, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if !input.Actor.isAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}

	var dto *OrderDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByIDForUpdate(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if order.Status != input.Status {
			if isTerminal(order.Status) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "order status is final").
					WithDetails(map[string]any{"current": order.Status, "requested": input.Status})
			}
			if err := repo.UpdateStatus(ctx, order.ID, input.Status); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
			}
			order.Status = input.Status
		}

		if input.Status == enums.OrderStatusCancelled && !order.StockReverted {
			items, err := repo.ListItems(ctx, order.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
			}
			for _, item := range items {
				if item.VariantID == nil {
					continue
				}
				if err := reservation.ReleaseStock(ctx, tx, *item.VariantID, item.Quantity); err != nil {
					return err
				}
			}
			if err := repo.MarkStockReverted(ctx, order.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark stock reverted")
			}
			order.StockReverted = true
		}

		loaded, err := repo.FindByID(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		projected := FromModel(loaded)
		dto = &projected
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func isTerminal(status enums.OrderStatus) bool {
	return status == enums.OrderStatusCancelled || status == enums.OrderStatusDelivered
}

func buildPage(rows []models.Order, nextCursor string) *OrderPage {
	page := &OrderPage{
		Items:      make([]OrderDTO, 0, len(rows)),
		NextCursor: nextCursor,
	}
	for i := range rows {
		page.Items = append(page.Items, FromModel(&rows[i]))
	}
	return page
}
