package catalog

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

type productRepository interface {
	ListActiveProducts(ctx context.Context, filter ListFilter) ([]models.Product, string, int64, error)
	FindProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	FindVariantByID(ctx context.Context, id uuid.UUID) (*models.Variant, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// Service exposes the public catalog surface.
type Service interface {
	ListProducts(ctx context.Context, filter ListFilter) (*ProductPage, error)
	GetProduct(ctx context.Context, slug string) (*ProductDetail, error)
	GetVariant(ctx context.Context, id uuid.UUID) (*models.Variant, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
}

type service struct {
	repo productRepository
}

// NewService builds a catalog service.
func NewService(repo productRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListProducts(ctx context.Context, filter ListFilter) (*ProductPage, error) {
	rows, nextCursor, total, err := s.repo.ListActiveProducts(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	items := make([]ProductSummary, 0, len(rows))
	for _, product := range rows {
		items = append(items, summarize(product))
	}

	return &ProductPage{
		Items:      items,
		NextCursor: nextCursor,
		Total:      total,
	}, nil
}

func (s *service) GetProduct(ctx context.Context, slug string) (*ProductDetail, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product slug is required")
	}

	product, err := s.repo.FindProductBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	detail := &ProductDetail{
		ID:          product.ID,
		Name:        product.Name,
		Slug:        product.Slug,
		Description: product.Description,
		Category:    categoryToDTO(product.Category),
		Images:      make([]ImageDTO, 0, len(product.Images)),
		Variants:    make([]VariantDTO, 0, len(product.Variants)),
	}
	for _, image := range product.Images {
		detail.Images = append(detail.Images, ImageDTO{
			ID:      image.ID,
			URL:     image.URL,
			AltText: image.AltText,
		})
	}
	for _, variant := range product.Variants {
		detail.Variants = append(detail.Variants, variantToDTO(variant, product.Images))
	}
	return detail, nil
}

// GetVariant returns an active, purchasable variant or not-found.
func (s *service) GetVariant(ctx context.Context, id uuid.UUID) (*models.Variant, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant id is required")
	}

	variant, err := s.repo.FindVariantByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}
	if !variant.IsActive || (variant.Product != nil && !variant.Product.IsActive) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}
	return variant, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	items := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *categoryToDTO(&rows[i]))
	}
	return items, nil
}

func summarize(product models.Product) ProductSummary {
	summary := ProductSummary{
		ID:        product.ID,
		Name:      product.Name,
		Slug:      product.Slug,
		CreatedAt: product.CreatedAt,
	}
	if product.Category != nil {
		slug := product.Category.Slug
		summary.CategorySlug = &slug
	}
	if len(product.Images) > 0 {
		url := product.Images[0].URL
		summary.ThumbnailURL = &url
	}
	for i, variant := range product.Variants {
		if variant.Stock > 0 {
			summary.InStock = true
		}
		if i == 0 || variant.Price.LessThan(summary.MinPrice) {
			summary.MinPrice = variant.Price
		}
	}
	return summary
}
