package repo

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/daru-pasal/liquor_shop/internal/models"
)

func newTestRepo(t *testing.T) (*GormRepo, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	))
	return &GormRepo{DB: db}, db
}

func TestCreateOrder_RollbackLeavesNothingBehind(t *testing.T) {
	r, db := newTestRepo(t)
	ctx := context.Background()

	vodka := models.Product{
		Name: "Ruslan Vodka", Category: "vodka", Price: 1400,
		Description: "triple distilled", StockQuantity: 6,
	}
	require.NoError(t, db.Create(&vodka).Error)

	order := &models.Order{
		CustomerName:    "Test",
		CustomerEmail:   "test@example.com",
		DeliveryAddress: "Thamel",
		PaymentMethod:   models.PaymentCOD,
		TotalAmount:     2800,
		Status:          models.StatusPending,
	}
	// The second item violates the quantity check constraint, failing the
	// transaction after the first item already decremented stock.
	items := []models.OrderItem{
		{ProductID: vodka.ID, ProductName: "Ruslan Vodka", Quantity: 2, Price: 1400},
		{ProductID: vodka.ID, ProductName: "Ruslan Vodka", Quantity: 0, Price: 1400},
	}

	err := r.CreateOrder(ctx, order, items)
	require.Error(t, err)

	var orderCount, itemCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&itemCount).Error)
	assert.Zero(t, orderCount, "rollback must remove the order header")
	assert.Zero(t, itemCount, "rollback must remove all items")

	var got models.Product
	require.NoError(t, db.First(&got, vodka.ID).Error)
	assert.Equal(t, uint(6), got.StockQuantity, "rollback must undo partial stock decrements")
}

func TestCreateOrder_ConditionalDecrementIsGuarded(t *testing.T) {
	r, db := newTestRepo(t)
	ctx := context.Background()

	tuborg := models.Product{
		Name: "Tuborg", Category: "beer", Price: 250,
		Description: "gold", StockQuantity: 3,
	}
	require.NoError(t, db.Create(&tuborg).Error)

	place := func(qty uint) error {
		order := &models.Order{
			CustomerName:    "Test",
			CustomerEmail:   "test@example.com",
			DeliveryAddress: "Thamel",
			PaymentMethod:   models.PaymentCOD,
			TotalAmount:     float64(qty) * 250,
			Status:          models.StatusPending,
		}
		return r.CreateOrder(ctx, order, []models.OrderItem{
			{ProductID: tuborg.ID, ProductName: "Tuborg", Quantity: qty, Price: 250},
		})
	}

	require.NoError(t, place(2))
	var got models.Product
	require.NoError(t, db.First(&got, tuborg.ID).Error)
	assert.Equal(t, uint(1), got.StockQuantity)

	// Asking for more than remains: the guarded update matches zero rows
	// and the order still commits.
	require.NoError(t, place(2))
	require.NoError(t, db.First(&got, tuborg.ID).Error)
	assert.Equal(t, uint(1), got.StockQuantity)

	require.NoError(t, place(1))
	require.NoError(t, db.First(&got, tuborg.ID).Error)
	assert.Equal(t, uint(0), got.StockQuantity)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "", Summarize(nil))

	items := []models.OrderItem{
		{ProductName: "Nepal Ice Beer", Quantity: 2},
		{ProductName: "Khukuri Rum", Quantity: 1},
	}
	assert.Equal(t, "Nepal Ice Beer (2), Khukuri Rum (1)", Summarize(items))
}
