package catalog

import (
	"time"

	"github.com/confeccionesismael/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryDTO is the public shape of a catalog category.
type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
}

// VariantDTO is the public shape of a purchasable variant.
type VariantDTO struct {
	ID          uuid.UUID       `json:"id"`
	SKU         string          `json:"sku"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	IsActive    bool            `json:"is_active"`
	ColorName   *string         `json:"color_name,omitempty"`
	ColorHex    *string         `json:"color_hex,omitempty"`
	Description string          `json:"description"`
	ImageURL    *string         `json:"image_url,omitempty"`
}

// ProductSummary is the list-view projection of a product.
type ProductSummary struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	CategorySlug *string         `json:"category_slug,omitempty"`
	MinPrice     decimal.Decimal `json:"min_price"`
	ThumbnailURL *string         `json:"thumbnail_url,omitempty"`
	InStock      bool            `json:"in_stock"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ProductDetail is the full projection served by the detail endpoint.
type ProductDetail struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	Description string       `json:"description"`
	Category    *CategoryDTO `json:"category,omitempty"`
	Images      []ImageDTO   `json:"images"`
	Variants    []VariantDTO `json:"variants"`
}

// ImageDTO is a product photo reference.
type ImageDTO struct {
	ID      uuid.UUID `json:"id"`
	URL     string    `json:"url"`
	AltText string    `json:"alt_text"`
}

// ProductPage wraps a list result with its cursor.
type ProductPage struct {
	Items      []ProductSummary `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
	Total      int64            `json:"total"`
}

func categoryToDTO(category *models.Category) *CategoryDTO {
	if category == nil {
		return nil
	}
	return &CategoryDTO{
		ID:          category.ID,
		Name:        category.Name,
		Slug:        category.Slug,
		Description: category.Description,
	}
}

func variantToDTO(variant models.Variant, images []models.ProductImage) VariantDTO {
	dto := VariantDTO{
		ID:          variant.ID,
		SKU:         variant.SKU,
		Price:       variant.Price,
		Stock:       variant.Stock,
		IsActive:    variant.IsActive,
		Description: VariantDescription(variant),
	}
	if variant.Color != nil {
		name := variant.Color.Name
		hex := variant.Color.HexCode
		dto.ColorName = &name
		dto.ColorHex = &hex
	}
	if variant.VariantImageID != nil {
		for _, image := range images {
			if image.ID == *variant.VariantImageID {
				url := image.URL
				dto.ImageURL = &url
				break
			}
		}
	}
	return dto
}
