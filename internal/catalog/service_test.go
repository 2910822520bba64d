package catalog

import (
	"context"
	"testing"

	"github.com/confeccionesismael/storefront-backend/pkg/db/models"
	pkgerrors "github.com/confeccionesismael/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Category{},
		&models.Color{},
		&models.Product{},
		&models.ProductImage{},
		&models.Variant{},
		&models.VariantAttribute{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name, slug string, active bool, stock int) *models.Product {
	t.Helper()
	product := &models.Product{Name: name, Slug: slug, IsActive: active}
	require.NoError(t, db.Create(product).Error)
	variant := &models.Variant{
		ProductID: product.ID,
		SKU:       slug + "-v1",
		Price:     decimal.NewFromFloat(24.50),
		Stock:     stock,
		IsActive:  true,
	}
	require.NoError(t, db.Create(variant).Error)
	return product
}

func TestListProductsHidesInactive(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	seedProduct(t, db, "Camisa lino", "camisa-lino", true, 3)
	seedProduct(t, db, "Descontinuado", "descontinuado", false, 3)

	page, err := svc.ListProducts(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "camisa-lino", page.Items[0].Slug)
	assert.True(t, page.Items[0].InStock)
	assert.Equal(t, int64(1), page.Total)
}

func TestListProductsCategoryFilterAndCursor(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	category := &models.Category{Name: "Guayaberas", Slug: "guayaberas"}
	require.NoError(t, db.Create(category).Error)

	for i, slug := range []string{"guayabera-blanca", "guayabera-azul", "guayabera-crema"} {
		product := seedProduct(t, db, slug, slug, true, i+1)
		require.NoError(t, db.Model(product).Update("category_id", category.ID).Error)
	}
	seedProduct(t, db, "Pantalon", "pantalon", true, 2)

	page, err := svc.ListProducts(context.Background(), ListFilter{CategorySlug: "guayaberas", Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)
	assert.Equal(t, int64(3), page.Total)

	rest, err := svc.ListProducts(context.Background(), ListFilter{
		CategorySlug: "guayaberas",
		Limit:        2,
		Cursor:       page.NextCursor,
	})
	require.NoError(t, err)
	require.Len(t, rest.Items, 1)
	assert.Empty(t, rest.NextCursor)
}

func TestGetProductDetail(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	color := &models.Color{Name: "Azul", HexCode: "#1e3a8a"}
	require.NoError(t, db.Create(color).Error)

	product := seedProduct(t, db, "Camisa lino", "camisa-lino", true, 3)

	var variant models.Variant
	require.NoError(t, db.First(&variant, "product_id = ?", product.ID).Error)
	require.NoError(t, db.Model(&variant).Update("color_id", color.ID).Error)
	require.NoError(t, db.Create(&models.VariantAttribute{
		VariantID: variant.ID,
		Name:      "Talla",
		Value:     "M",
	}).Error)

	detail, err := svc.GetProduct(context.Background(), "camisa-lino")
	require.NoError(t, err)
	require.Len(t, detail.Variants, 1)
	assert.Equal(t, "Color: Azul, Talla: M", detail.Variants[0].Description)
}

func TestGetProductNotFound(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	_, err = svc.GetProduct(context.Background(), "missing")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestGetVariantRejectsInactive(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	product := seedProduct(t, db, "Camisa", "camisa", true, 3)
	var variant models.Variant
	require.NoError(t, db.First(&variant, "product_id = ?", product.ID).Error)
	require.NoError(t, db.Model(&variant).Update("is_active", false).Error)

	_, err = svc.GetVariant(context.Background(), variant.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestVariantDescriptionSkipsBlankAttributes(t *testing.T) {
	t.Parallel()

	variant := models.Variant{
		Attributes: []models.VariantAttribute{
			{Name: "Talla", Value: "L"},
			{Name: " ", Value: "x"},
			{Name: "Tela", Value: "Lino"},
		},
	}
	assert.Equal(t, "Talla: L, Tela: Lino", VariantDescription(variant))
}
