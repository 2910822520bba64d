package cart

import (
	"context"
	"testing"

	pkgdb "github.com/confeccionesismael/storefront-backend/pkg/db"
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
	dsn := "file:cart_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Color{},
		&models.Product{},
		&models.ProductImage{},
		&models.Variant{},
		&models.VariantAttribute{},
		&models.Cart{},
		&models.CartItem{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc, err := NewService(NewRepository(db), pkgdb.FromGorm(db))
	require.NoError(t, err)
	return svc, db
}

func seedVariant(t *testing.T, db *gorm.DB, stock int, price float64) *models.Variant {
	t.Helper()
	product := &models.Product{Name: "Camisa lino", Slug: "camisa-" + uuid.NewString()[:8], IsActive: true}
	require.NoError(t, db.Create(product).Error)
	variant := &models.Variant{
		ProductID: product.ID,
		Price:     decimal.NewFromFloat(price),
		Stock:     stock,
		IsActive:  true,
	}
	require.NoError(t, db.Create(variant).Error)
	return variant
}

func TestAddItemClampsAndAccumulates(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	variant := seedVariant(t, db, 10, 25.00)
	owner := Owner{SessionKey: "sess-1"}
	ctx := context.Background()

	dto, err := svc.AddItem(ctx, owner, variant.ID, 0)
	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, 1, dto.Items[0].Quantity)

	dto, err = svc.AddItem(ctx, owner, variant.ID, 3)
	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, 4, dto.Items[0].Quantity)
	assert.True(t, dto.Subtotal.Equal(decimal.NewFromInt(100)), "subtotal %s", dto.Subtotal)
}

func TestAddItemRejectsBeyondStock(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	variant := seedVariant(t, db, 2, 25.00)
	owner := Owner{SessionKey: "sess-2"}
	ctx := context.Background()

	_, err := svc.AddItem(ctx, owner, variant.ID, 2)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, owner, variant.ID, 1)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())

	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 3, details["attempted"])
	assert.Equal(t, 2, details["available"])
}

func TestAddItemRejectsInactiveVariant(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	variant := seedVariant(t, db, 5, 25.00)
	require.NoError(t, db.Model(variant).Update("is_active", false).Error)

	_, err := svc.AddItem(context.Background(), Owner{SessionKey: "sess-3"}, variant.ID, 1)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestSetQuantityZeroDeletesLine(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	variant := seedVariant(t, db, 5, 25.00)
	owner := Owner{SessionKey: "sess-4"}
	ctx := context.Background()

	dto, err := svc.AddItem(ctx, owner, variant.ID, 2)
	require.NoError(t, err)
	itemID := dto.Items[0].ID

	dto, err = svc.SetQuantity(ctx, owner, itemID, 0)
	require.NoError(t, err)
	assert.Empty(t, dto.Items)
	assert.True(t, dto.Subtotal.IsZero())
}

func TestSetQuantityValidatesStock(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	variant := seedVariant(t, db, 3, 25.00)
	owner := Owner{SessionKey: "sess-5"}
	ctx := context.Background()

	dto, err := svc.AddItem(ctx, owner, variant.ID, 1)
	require.NoError(t, err)
	itemID := dto.Items[0].ID

	_, err = svc.SetQuantity(ctx, owner, itemID, 7)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())

	dto, err = svc.SetQuantity(ctx, owner, itemID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, dto.Items[0].Quantity)
}

func TestSetQuantityUnknownItem(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	variant := seedVariant(t, db, 3, 25.00)
	owner := Owner{SessionKey: "sess-6"}
	ctx := context.Background()

	_, err := svc.AddItem(ctx, owner, variant.ID, 1)
	require.NoError(t, err)

	_, err = svc.SetQuantity(ctx, owner, uuid.New(), 2)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestCartsAreIsolatedPerOwner(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	variant := seedVariant(t, db, 10, 25.00)
	ctx := context.Background()

	userID := uuid.New()
	require.NoError(t, db.Create(&models.User{
		ID: userID, Email: "iso@example.com", PasswordHash: "x", Role: "customer", IsActive: true,
	}).Error)

	_, err := svc.AddItem(ctx, Owner{SessionKey: "sess-a"}, variant.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, Owner{UserID: &userID}, variant.ID, 5)
	require.NoError(t, err)

	guest, err := svc.GetCart(ctx, Owner{SessionKey: "sess-a"})
	require.NoError(t, err)
	user, err := svc.GetCart(ctx, Owner{UserID: &userID})
	require.NoError(t, err)

	assert.Equal(t, 2, guest.Items[0].Quantity)
	assert.Equal(t, 5, user.Items[0].Quantity)
	assert.NotEqual(t, guest.ID, user.ID)
}

func TestMergeGuestCartClampsToStock(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	variant := seedVariant(t, db, 5, 25.00)
	ctx := context.Background()

	userID := uuid.New()
	require.NoError(t, db.Create(&models.User{
		ID: userID, Email: "merge@example.com", PasswordHash: "x", Role: "customer", IsActive: true,
	}).Error)

	_, err := svc.AddItem(ctx, Owner{SessionKey: "sess-m"}, variant.ID, 4)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, Owner{UserID: &userID}, variant.ID, 3)
	require.NoError(t, err)

	require.NoError(t, svc.MergeGuestCart(ctx, "sess-m", userID))

	merged, err := svc.GetCart(ctx, Owner{UserID: &userID})
	require.NoError(t, err)
	require.Len(t, merged.Items, 1)
	assert.Equal(t, 5, merged.Items[0].Quantity)

	var guest models.Cart
	require.NoError(t, db.First(&guest, "session_key = ?", "sess-m").Error)
	assert.False(t, guest.IsActive)
}

func TestOwnerValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	_, err := svc.GetCart(context.Background(), Owner{})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
