package controller

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type checkoutFixture struct {
	router  *gin.Engine
	db      *gorm.DB
	product *model.Product
}

func setupCheckoutControllerTest(t *testing.T) *checkoutFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	product := &model.Product{Name: "Hoodie", Price: 45.5, SKU: "HOOD", IsPublished: true}
	require.NoError(t, testDB.Create(product).Error)

	checkoutRepo := repository.NewCheckoutRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)

	addressService := service.NewAddressService(repository.NewAddressRepository(testDB))
	checkoutCtrl := NewCheckoutController(
		service.NewCheckoutService(checkoutRepo, orderRepo, cartRepo, productRepo, 0.01),
		addressService,
	)
	addressCtrl := NewAddressController(addressService)
	orderCtrl := NewOrderController(service.NewOrderService(orderRepo))

	router := newTestRouter()
	api := router.Group("/api/v1")
	api.POST("/checkout", checkoutCtrl.CreateCheckout)
	api.GET("/checkout/:id", checkoutCtrl.GetCheckout)
	api.PUT("/checkout/:id/pay", checkoutCtrl.PayCheckout)
	api.POST("/checkout/:id/finalize", checkoutCtrl.FinalizeCheckout)
	api.GET("/addresses", addressCtrl.ListAddresses)
	api.POST("/addresses", addressCtrl.CreateAddress)
	api.PUT("/addresses/:id", addressCtrl.UpdateAddress)
	api.DELETE("/addresses/:id", addressCtrl.DeleteAddress)
	api.PUT("/addresses/:id/default", addressCtrl.SetDefaultAddress)
	api.GET("/orders/my-orders", orderCtrl.GetMyOrders)
	api.GET("/orders/:id", orderCtrl.GetOrder)

	adminOrders := api.Group("/admin/orders")
	adminOrders.GET("", orderCtrl.ListOrders)
	adminOrders.GET("/analytics", orderCtrl.GetAnalytics)
	adminOrders.GET("/:id", orderCtrl.GetOrderAdmin)
	adminOrders.PUT("/:id", orderCtrl.UpdateOrderStatus)
	adminOrders.DELETE("/:id", orderCtrl.DeleteOrder)

	return &checkoutFixture{router: router, db: testDB, product: product}
}

func (f *checkoutFixture) checkoutBody(quantity int, total float64) gin.H {
	return gin.H{
		"checkoutItems": []gin.H{{
			"productId": f.product.ID,
			"name":      f.product.Name,
			"price":     f.product.Price,
			"size":      "L",
			"color":     "Grey",
			"quantity":  quantity,
		}},
		"shippingAddress": gin.H{"address": "1 Main St", "city": "Seoul", "postalCode": "04524", "country": "KR"},
		"paymentMethod":   "card",
		"totalPrice":      total,
	}
}

// paidCheckout creates and pays a checkout for who, returning its id
func (f *checkoutFixture) paidCheckout(t *testing.T, who caller) string {
	w := perform(t, f.router, who, http.MethodPost, "/api/v1/checkout", f.checkoutBody(2, 91))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var checkout model.Checkout
	decode(t, w, &checkout)

	w = perform(t, f.router, who, http.MethodPut, "/api/v1/checkout/"+checkout.ID+"/pay",
		gin.H{"paymentStatus": "Paid", "paymentDetails": gin.H{"transactionId": "tx-1"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return checkout.ID
}

func TestCheckoutController_CreateCheckout(t *testing.T) {
	f := setupCheckoutControllerTest(t)
	user := customer("user-1")

	w := perform(t, f.router, user, http.MethodPost, "/api/v1/checkout", f.checkoutBody(2, 91))
	require.Equal(t, http.StatusCreated, w.Code)

	var checkout model.Checkout
	decode(t, w, &checkout)
	assert.Equal(t, "user-1", checkout.UserID)
	assert.Equal(t, 91.0, checkout.TotalPrice)
	assert.Equal(t, model.PaymentStatusPending, checkout.PaymentStatus)
	assert.False(t, checkout.IsPaid)

	w = perform(t, f.router, user, http.MethodGet, "/api/v1/checkout/"+checkout.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(t, f.router, customer("user-2"), http.MethodGet, "/api/v1/checkout/"+checkout.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckoutController_CreateCheckoutRejects(t *testing.T) {
	f := setupCheckoutControllerTest(t)
	user := customer("user-1")

	noAddress := f.checkoutBody(1, 0)
	noAddress["shippingAddress"] = gin.H{"address": "1 Main St"}
	noMethod := f.checkoutBody(1, 0)
	noMethod["paymentMethod"] = " "
	noItems := f.checkoutBody(1, 0)
	noItems["checkoutItems"] = []gin.H{}
	freeItem := f.checkoutBody(2, 0)
	freeItem["checkoutItems"].([]gin.H)[0]["price"] = 0

	tests := []struct {
		name    string
		body    gin.H
		wantMsg string
	}{
		{"no items", noItems, "No items in checkout"},
		{"incomplete address", noAddress, "Shipping address requires address, city, postalCode and country"},
		{"no payment method", noMethod, "Payment method is required"},
		{"tampered total", f.checkoutBody(2, 1), "Total price mismatch"},
		{"zero item price", freeItem, "Item price does not match the catalog"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(t, f.router, user, http.MethodPost, "/api/v1/checkout", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantMsg, messageOf(t, w))
		})
	}
}

func TestCheckoutController_PayRejectsPending(t *testing.T) {
	f := setupCheckoutControllerTest(t)
	user := customer("user-1")

	w := perform(t, f.router, user, http.MethodPost, "/api/v1/checkout", f.checkoutBody(1, 0))
	require.Equal(t, http.StatusCreated, w.Code)
	var checkout model.Checkout
	decode(t, w, &checkout)

	w = perform(t, f.router, user, http.MethodPut, "/api/v1/checkout/"+checkout.ID+"/pay", gin.H{"paymentStatus": "pending"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid Payment Status", messageOf(t, w))

	w = perform(t, f.router, user, http.MethodPost, "/api/v1/checkout/"+checkout.ID+"/finalize", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Checkout is not paid", messageOf(t, w))

	w = perform(t, f.router, user, http.MethodPut, "/api/v1/checkout/not-an-id/pay", gin.H{"paymentStatus": "Paid"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutController_FinalizeOnce(t *testing.T) {
	f := setupCheckoutControllerTest(t)
	user := customer("user-1")

	require.NoError(t, f.db.Create(&model.Cart{UserID: "user-1", Products: model.LineItems{{ProductID: f.product.ID, Quantity: 1}}}).Error)

	checkoutID := f.paidCheckout(t, user)

	w := perform(t, f.router, user, http.MethodPost, "/api/v1/checkout/"+checkoutID+"/finalize", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var order model.Order
	decode(t, w, &order)
	assert.Equal(t, checkoutID, order.CheckoutID)
	assert.Equal(t, model.OrderStatusProcessing, order.Status)
	assert.Equal(t, 91.0, order.TotalPrice)
	assert.True(t, order.IsPaid)

	w = perform(t, f.router, user, http.MethodPost, "/api/v1/checkout/"+checkoutID+"/finalize", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Checkout already finalized", messageOf(t, w))

	var carts int64
	require.NoError(t, f.db.Model(&model.Cart{}).Where("user_id = ?", "user-1").Count(&carts).Error)
	assert.Zero(t, carts)

	w = perform(t, f.router, user, http.MethodGet, "/api/v1/orders/my-orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var orders []model.Order
	decode(t, w, &orders)
	assert.Len(t, orders, 1)
}
