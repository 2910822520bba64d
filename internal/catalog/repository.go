package catalog

import (
	"context"
	"strings"

	"github.com/confeccionesismael/storefront-backend/pkg/db/models"
	"github.com/confeccionesismael/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository encapsulates catalog persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided gorm DB.
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

// ListFilter narrows the product listing.
type ListFilter struct {
	CategorySlug string
	Cursor       string
	Limit        int
}

// ListActiveProducts returns a cursor page of active products with their
// variants and images preloaded.
func (r *Repository) ListActiveProducts(ctx context.Context, filter ListFilter) ([]models.Product, string, int64, error) {
	normalizedLimit := pagination.NormalizeLimit(filter.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(filter.Limit)

	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(filter.Cursor))
	if err != nil {
		return nil, "", 0, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Preload("Category").
		Preload("Images").
		Preload("Variants", "is_active = ?", true).
		Preload("Variants.Color").
		Preload("Variants.Attributes").
		Where("products.is_active = ?", true)

	countQuery := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("products.is_active = ?", true)

	if slug := strings.TrimSpace(filter.CategorySlug); slug != "" {
		join := "JOIN categories ON categories.id = products.category_id AND categories.slug = ?"
		query = query.Joins(join, slug)
		countQuery = countQuery.Joins(join, slug)
	}

	if decodedCursor != nil {
		query = query.Where(
			"(products.created_at < ?) OR (products.created_at = ? AND products.id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID,
		)
	}

	var rows []models.Product
	if err := query.
		Order("products.created_at DESC").
		Order("products.id DESC").
		Limit(limitWithBuffer).
		Find(&rows).Error; err != nil {
		return nil, "", 0, err
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

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, "", 0, err
	}

	return rows, nextCursor, total, nil
}

// FindProductBySlug loads an active product with its full detail graph.
func (r *Repository) FindProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Images").
		Preload("Variants", "is_active = ?", true).
		Preload("Variants.Color").
		Preload("Variants.Attributes").
		Where("slug = ? AND is_active = ?", slug, true).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindVariantByID loads a variant with its product, color, and attributes.
func (r *Repository) FindVariantByID(ctx context.Context, id uuid.UUID) (*models.Variant, error) {
	var variant models.Variant
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Color").
		Preload("Attributes").
		Where("id = ?", id).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// ListCategories returns every category ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	if err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
