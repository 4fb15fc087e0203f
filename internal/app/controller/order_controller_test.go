package controller

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// placeOrder runs a checkout to completion for who
func (f *checkoutFixture) placeOrder(t *testing.T, who caller) model.Order {
	checkoutID := f.paidCheckout(t, who)

	w := perform(t, f.router, who, http.MethodPost, "/api/v1/checkout/"+checkoutID+"/finalize", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var order model.Order
	decode(t, w, &order)
	return order
}

func TestOrderController_Ownership(t *testing.T) {
	f := setupCheckoutControllerTest(t)
	order := f.placeOrder(t, customer("user-1"))

	w := perform(t, f.router, customer("user-1"), http.MethodGet, "/api/v1/orders/"+order.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(t, f.router, customer("user-2"), http.MethodGet, "/api/v1/orders/"+order.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Order not found", messageOf(t, w))

	w = perform(t, f.router, admin, http.MethodGet, "/api/v1/orders/"+order.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(t, f.router, customer("user-2"), http.MethodGet, "/api/v1/orders/my-orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var orders []model.Order
	decode(t, w, &orders)
	assert.Empty(t, orders)
}

func TestOrderController_AdminStatusUpdates(t *testing.T) {
	f := setupCheckoutControllerTest(t)
	order := f.placeOrder(t, customer("user-1"))
	path := "/api/v1/admin/orders/" + order.ID

	w := perform(t, f.router, admin, http.MethodPut, path, gin.H{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid order status", messageOf(t, w))

	w = perform(t, f.router, admin, http.MethodPut, path, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(t, f.router, admin, http.MethodPut, path, gin.H{"status": "delivered"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated model.Order
	decode(t, w, &updated)
	assert.Equal(t, model.OrderStatusDelivered, updated.Status)
	assert.True(t, updated.IsDelivered)
	require.NotNil(t, updated.DeliveredAt)

	w = perform(t, f.router, admin, http.MethodGet, "/api/v1/admin/orders?status=delivered", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var orders []model.Order
	decode(t, w, &orders)
	assert.Len(t, orders, 1)

	w = perform(t, f.router, admin, http.MethodGet, "/api/v1/admin/orders?status=shipped", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &orders)
	assert.Empty(t, orders)

	w = perform(t, f.router, admin, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(t, f.router, admin, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(t, f.router, admin, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderController_Analytics(t *testing.T) {
	f := setupCheckoutControllerTest(t)
	f.placeOrder(t, customer("user-1"))
	f.placeOrder(t, customer("user-2"))

	w := perform(t, f.router, admin, http.MethodGet, "/api/v1/admin/orders/analytics", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var analytics service.OrderAnalytics
	decode(t, w, &analytics)
	assert.Equal(t, 2, analytics.TotalOrders)
	assert.Equal(t, 182.0, analytics.TotalRevenue)
	assert.Equal(t, 91.0, analytics.AverageOrderValue)
	assert.Equal(t, 2, analytics.StatusCounts[string(model.OrderStatusProcessing)])
	assert.Len(t, analytics.MonthlyRevenue, 1)
}
