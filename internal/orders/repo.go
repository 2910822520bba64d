package orders

import (
	"context"
	"strings"

	pkgdb "github.com/confeccionesismael/storefront-backend/pkg/db"
	"github.com/confeccionesismael/storefront-backend/pkg/db/models"
	"github.com/confeccionesismael/storefront-backend/pkg/enums"
	"github.com/confeccionesismael/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository encapsulates order persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateItems(ctx context.Context, items []models.OrderItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	ListByUser(ctx context.Context, userID uuid.UUID, cursor string, limit int) ([]models.Order, string, error)
	ListAll(ctx context.Context, status *enums.OrderStatus, cursor string, limit int) ([]models.Order, string, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
	MarkStockReverted(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs an order repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("ShippingZone").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDForUpdate locks the order row for the rest of the transaction.
// Items are not preloaded; callers needing them load separately.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := pkgdb.ForUpdate(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, cursor string, limit int) ([]models.Order, string, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Preload("ShippingZone").
		Where("user_id = ?", userID)
	return paginateOrders(query, cursor, limit)
}

func (r *repository) ListAll(ctx context.Context, status *enums.OrderStatus, cursor string, limit int) ([]models.Order, string, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Preload("ShippingZone")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	return paginateOrders(query, cursor, limit)
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repository) MarkStockReverted(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("stock_reverted", true).Error
}

func paginateOrders(query *gorm.DB, cursor string, limit int) ([]models.Order, string, error) {
	normalizedLimit := pagination.NormalizeLimit(limit)
	limitWithBuffer := pagination.LimitWithBuffer(limit)

	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(cursor))
	if err != nil {
		return nil, "", err
	}
	if decodedCursor != nil {
		query = query.Where(
			"(orders.created_at < ?) OR (orders.created_at = ? AND orders.id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID,
		)
	}

	var rows []models.Order
	if err := query.
		Order("orders.created_at DESC").
		Order("orders.id DESC").
		Limit(limitWithBuffer).
		Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > normalizedLimit {
		rows = rows[:normalizedLimit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return rows, nextCursor, nil
}
