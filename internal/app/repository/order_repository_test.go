package repository

import (
	"testing"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOrderTest(t *testing.T) (*gorm.DB, OrderRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return testDB, NewOrderRepository(testDB)
}

func newOrder(userID, checkoutID string) *model.Order {
	now := time.Now()
	return &model.Order{
		UserID:     userID,
		CheckoutID: checkoutID,
		OrderItems: model.LineItems{
			{ProductID: "p-1", Name: "Tee", Price: 100, Quantity: 1},
		},
		PaymentMethod: "PayPal",
		TotalPrice:    100,
		IsPaid:        true,
		PaidAt:        &now,
		PaymentStatus: model.PaymentStatusPaid,
	}
}

func TestOrderRepository_CreateDefaultsToProcessing(t *testing.T) {
	_, repo := setupOrderTest(t)

	order := newOrder("user-1", "co-1")
	require.NoError(t, repo.Create(order))

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusProcessing, found.Status)
	assert.True(t, found.IsPaid)
	assert.Len(t, found.OrderItems, 1)
}

func TestOrderRepository_CheckoutIDIsUnique(t *testing.T) {
	_, repo := setupOrderTest(t)

	require.NoError(t, repo.Create(newOrder("user-1", "co-1")))
	assert.Error(t, repo.Create(newOrder("user-1", "co-1")))
}

func TestOrderRepository_FindByUserIDAndStatus(t *testing.T) {
	_, repo := setupOrderTest(t)

	require.NoError(t, repo.Create(newOrder("user-1", "co-1")))
	require.NoError(t, repo.Create(newOrder("user-1", "co-2")))
	shipped := newOrder("user-2", "co-3")
	shipped.Status = model.OrderStatusShipped
	require.NoError(t, repo.Create(shipped))

	mine, err := repo.FindByUserID("user-1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := repo.FindAll("")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	filtered, err := repo.FindAll(model.OrderStatusShipped)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, shipped.ID, filtered[0].ID)
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	_, repo := setupOrderTest(t)

	order := newOrder("user-1", "co-1")
	require.NoError(t, repo.Create(order))

	now := time.Now()
	order.Status = model.OrderStatusDelivered
	order.IsDelivered = true
	order.DeliveredAt = &now
	order.TotalPrice = 1 // not a status field, must not be written
	require.NoError(t, repo.UpdateStatus(order))

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, found.Status)
	assert.True(t, found.IsDelivered)
	assert.NotNil(t, found.DeliveredAt)
	assert.Equal(t, 100.0, found.TotalPrice)
}

func TestOrderRepository_Delete(t *testing.T) {
	_, repo := setupOrderTest(t)

	order := newOrder("user-1", "co-1")
	require.NoError(t, repo.Create(order))

	require.NoError(t, repo.Delete(order.ID))
	assert.ErrorIs(t, repo.Delete(order.ID), gorm.ErrRecordNotFound)
}
