package shipping

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
	dsn := "file:shipping_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.ShippingZone{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestListZonesReturnsOnlyActive(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.ShippingZone{
		Name: "Centro", Cost: decimal.NewFromInt(30), IsActive: true,
	}).Error)
	require.NoError(t, db.Create(&models.ShippingZone{
		Name: "Foranea", Cost: decimal.NewFromInt(120), IsActive: false,
	}).Error)

	zones, err := svc.ListZones(context.Background())
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.Equal(t, "Centro", zones[0].Name)
}

func TestGetZoneRejectsInactive(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	zone := &models.ShippingZone{Name: "Foranea", Cost: decimal.NewFromInt(120), IsActive: false}
	require.NoError(t, db.Create(zone).Error)

	_, err = svc.GetZone(context.Background(), zone.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestGetZoneMissing(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	_, err = svc.GetZone(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
