package checkout

import (
	"context"
	"testing"

	"github.com/confeccionesismael/storefront-backend/internal/cart"
	"github.com/confeccionesismael/storefront-backend/internal/checkout/reservation"
	"github.com/confeccionesismael/storefront-backend/internal/orders"
	"github.com/confeccionesismael/storefront-backend/internal/shipping"
	"github.com/confeccionesismael/storefront-backend/pkg/config"
	pkgdb "github.com/confeccionesismael/storefront-backend/pkg/db"
	"github.com/confeccionesismael/storefront-backend/pkg/db/models"
	"github.com/confeccionesismael/storefront-backend/pkg/enums"
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
	dsn := "file:checkout_" + uuid.NewString() + "?mode=memory&cache=shared"
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
		&models.ShippingZone{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type contactRecorder struct {
	db *gorm.DB
}

func (c contactRecorder) UpdateContact(ctx context.Context, tx *gorm.DB, userID uuid.UUID, phone, address string) error {
	return tx.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{"phone": phone, "address": address}).Error
}

func newTestService(t *testing.T, db *gorm.DB, res reservationRunner) Service {
	t.Helper()
	zones, err := shipping.NewService(shipping.NewRepository(db))
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{
		Tx:          pkgdb.FromGorm(db),
		CartRepo:    cart.NewRepository(db),
		OrdersRepo:  orders.NewRepository(db),
		Zones:       zones,
		Profiles:    contactRecorder{db: db},
		Reservation: res,
		Store:       config.StoreConfig{Name: "Confecciones Ismael", TransferNotes: "CLABE 0123456789"},
	})
	require.NoError(t, err)
	return svc
}

func seedVariant(t *testing.T, db *gorm.DB, name string, stock int, price int64) *models.Variant {
	t.Helper()
	product := &models.Product{Name: name, Slug: name + "-" + uuid.NewString()[:8], IsActive: true}
	require.NoError(t, db.Create(product).Error)
	variant := &models.Variant{
		ProductID: product.ID,
		Price:     decimal.NewFromInt(price),
		Stock:     stock,
		IsActive:  true,
	}
	require.NoError(t, db.Create(variant).Error)
	return variant
}

func seedCart(t *testing.T, db *gorm.DB, sessionKey string, lines map[uuid.UUID]int) *models.Cart {
	t.Helper()
	record := &models.Cart{SessionKey: sessionKey, IsActive: true}
	require.NoError(t, db.Create(record).Error)
	for variantID, qty := range lines {
		require.NoError(t, db.Create(&models.CartItem{
			CartID:    record.ID,
			VariantID: variantID,
			Quantity:  qty,
		}).Error)
	}
	return record
}

func variantStock(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var variant models.Variant
	require.NoError(t, db.First(&variant, "id = ?", id).Error)
	return variant.Stock
}

func pickupInput(sessionKey string) Input {
	return Input{
		Owner:         cart.Owner{SessionKey: sessionKey},
		CustomerName:  "Ismael Contreras",
		CustomerPhone: "555-0101",
		IsPickup:      true,
		PaymentMethod: enums.PaymentMethodArrange,
	}
}

func TestExecutePickupHappyPath(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db, nil)
	ctx := context.Background()

	variant := seedVariant(t, db, "Camisa", 5, 40)
	record := seedCart(t, db, "sess-1", map[uuid.UUID]int{variant.ID: 3})

	dto, err := svc.Execute(ctx, pickupInput("sess-1"))
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusPending, dto.Status)
	assert.True(t, dto.ShippingCost.IsZero())
	assert.True(t, dto.Subtotal.Equal(decimal.NewFromInt(120)), "subtotal %s", dto.Subtotal)
	assert.True(t, dto.Total.Equal(decimal.NewFromInt(120)))
	require.Len(t, dto.Items, 1)
	assert.Equal(t, "Camisa", dto.Items[0].ProductName)
	assert.True(t, dto.Items[0].LineTotal.Equal(dto.Items[0].UnitPrice.Mul(decimal.NewFromInt(3))))
	assert.NotEmpty(t, dto.PaymentInstructions)

	assert.Equal(t, 2, variantStock(t, db, variant.ID))

	var remaining int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("cart_id = ?", record.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)
}

func TestExecuteDeliveryAddsZoneCost(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db, nil)
	ctx := context.Background()

	zone := &models.ShippingZone{Name: "Centro", Cost: decimal.NewFromInt(30), IsActive: true}
	require.NoError(t, db.Create(zone).Error)
	variant := seedVariant(t, db, "Camisa", 5, 40)
	seedCart(t, db, "sess-2", map[uuid.UUID]int{variant.ID: 1})

	input := pickupInput("sess-2")
	input.IsPickup = false
	input.ShippingZone = &zone.ID
	input.Address = "Av. Juarez 12"
	input.PaymentMethod = enums.PaymentMethodTransfer

	dto, err := svc.Execute(ctx, input)
	require.NoError(t, err)
	assert.True(t, dto.ShippingCost.Equal(decimal.NewFromInt(30)))
	assert.True(t, dto.Total.Equal(decimal.NewFromInt(70)))
	require.NotNil(t, dto.ShippingZoneName)
	assert.Equal(t, "Centro", *dto.ShippingZoneName)
	assert.Equal(t, "CLABE 0123456789", dto.PaymentInstructions)
}

func TestExecuteDeliveryRequiresZone(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db, nil)

	input := pickupInput("sess-3")
	input.IsPickup = false
	input.Address = "Av. Juarez 12"

	_, err := svc.Execute(context.Background(), input)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestExecuteEmptyCart(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db, nil)

	seedCart(t, db, "sess-4", nil)

	_, err := svc.Execute(context.Background(), pickupInput("sess-4"))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestExecuteInsufficientStockRollsBackEverything(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db, nil)
	ctx := context.Background()

	plenty := seedVariant(t, db, "Camisa", 10, 40)
	scarce := seedVariant(t, db, "Pantalon", 1, 60)
	record := seedCart(t, db, "sess-5", map[uuid.UUID]int{plenty.ID: 2, scarce.ID: 3})

	_, err := svc.Execute(ctx, pickupInput("sess-5"))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())

	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 3, details["attempted"])
	assert.Equal(t, 1, details["available"])

	// nothing moved: stock, orders, cart all untouched
	assert.Equal(t, 10, variantStock(t, db, plenty.ID))
	assert.Equal(t, 1, variantStock(t, db, scarce.ID))

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)

	var itemCount int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("cart_id = ?", record.ID).Count(&itemCount).Error)
	assert.Equal(t, int64(2), itemCount)
}

type losingReservation struct{}

func (losingReservation) Reserve(ctx context.Context, tx *gorm.DB, requests []reservation.StockReservationRequest) ([]reservation.StockReservationResult, error) {
	results, err := reservation.ReserveStock(ctx, tx, requests)
	if err != nil {
		return nil, err
	}
	// simulate a concurrent checkout winning the last line
	if len(results) > 0 {
		results[len(results)-1].Reserved = false
		results[len(results)-1].Reason = "stock changed during checkout"
	}
	return results, nil
}

func TestExecuteStockRaceLostRollsBack(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db, losingReservation{})
	ctx := context.Background()

	variant := seedVariant(t, db, "Camisa", 5, 40)
	seedCart(t, db, "sess-6", map[uuid.UUID]int{variant.ID: 2})

	_, err := svc.Execute(ctx, pickupInput("sess-6"))
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStockRaceLost, typed.Code())

	// the decrement inside the transaction was rolled back
	assert.Equal(t, 5, variantStock(t, db, variant.ID))

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)
}

func TestExecuteTwoCartsOneUnit(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db, nil)
	ctx := context.Background()

	variant := seedVariant(t, db, "Camisa", 1, 40)
	seedCart(t, db, "sess-a", map[uuid.UUID]int{variant.ID: 1})
	seedCart(t, db, "sess-b", map[uuid.UUID]int{variant.ID: 1})

	_, errA := svc.Execute(ctx, pickupInput("sess-a"))
	_, errB := svc.Execute(ctx, pickupInput("sess-b"))

	require.NoError(t, errA)
	typed := pkgerrors.As(errB)
	require.NotNil(t, typed)
	assert.Contains(t,
		[]pkgerrors.Code{pkgerrors.CodeInsufficientStock, pkgerrors.CodeStockRaceLost},
		typed.Code(),
	)
	assert.Equal(t, 0, variantStock(t, db, variant.ID))

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Equal(t, int64(1), orderCount)
}

func TestExecuteWritesBackProfileContact(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db, nil)
	ctx := context.Background()

	userID := uuid.New()
	require.NoError(t, db.Create(&models.User{
		ID: userID, Email: "buyer@example.com", PasswordHash: "x", Role: "customer", IsActive: true,
	}).Error)

	variant := seedVariant(t, db, "Camisa", 5, 40)
	record := &models.Cart{UserID: &userID, IsActive: true}
	require.NoError(t, db.Create(record).Error)
	require.NoError(t, db.Create(&models.CartItem{
		CartID: record.ID, VariantID: variant.ID, Quantity: 1,
	}).Error)

	input := pickupInput("")
	input.Owner = cart.Owner{UserID: &userID}
	input.CustomerPhone = "555-0199"
	input.Address = "Calle Hidalgo 4"

	dto, err := svc.Execute(ctx, input)
	require.NoError(t, err)
	require.NotNil(t, dto)

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", userID).Error)
	assert.Equal(t, "555-0199", user.Phone)
	assert.Equal(t, "Calle Hidalgo 4", user.Address)
}

func TestExecuteSnapshotSurvivesVariantChanges(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db, nil)
	ctx := context.Background()

	variant := seedVariant(t, db, "Camisa", 5, 40)
	seedCart(t, db, "sess-7", map[uuid.UUID]int{variant.ID: 2})

	dto, err := svc.Execute(ctx, pickupInput("sess-7"))
	require.NoError(t, err)

	// later catalog edits never rewrite the snapshot
	require.NoError(t, db.Model(&models.Variant{}).
		Where("id = ?", variant.ID).
		Update("price", decimal.NewFromInt(99)).Error)

	var item models.OrderItem
	require.NoError(t, db.First(&item, "order_id = ?", dto.ID).Error)
	assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(40)))
	assert.True(t, item.LineTotal.Equal(decimal.NewFromInt(80)))
}

func TestExecuteSnapshotsVariantDescription(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db, nil)
	ctx := context.Background()

	variant := seedVariant(t, db, "Blusa", 5, 30)
	color := &models.Color{Name: "Azul"}
	require.NoError(t, db.Create(color).Error)
	require.NoError(t, db.Model(&models.Variant{}).
		Where("id = ?", variant.ID).
		Update("color_id", color.ID).Error)
	require.NoError(t, db.Create(&models.VariantAttribute{
		VariantID: variant.ID,
		Name:      "Talla",
		Value:     "M",
	}).Error)

	seedCart(t, db, "sess-12", map[uuid.UUID]int{variant.ID: 1})

	dto, err := svc.Execute(ctx, pickupInput("sess-12"))
	require.NoError(t, err)

	var item models.OrderItem
	require.NoError(t, db.First(&item, "order_id = ?", dto.ID).Error)
	assert.Equal(t, "Blusa", item.ProductName)
	assert.Equal(t, "Color: Azul, Talla: M", item.VariantDescription)
}
