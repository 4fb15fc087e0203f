package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetMyOrders lists the caller's orders, newest first
// GET /api/v1/orders/my-orders
func (ctrl *OrderController) GetMyOrders(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	orders, err := ctrl.orderService.GetMyOrders(userID)
	if err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

// GetOrder returns one order to its owner or an admin
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)

	order, err := ctrl.orderService.GetOrder(userID, role, c.Param("id"))
	if err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// ListOrders lists every order, optionally by status
// GET /api/v1/admin/orders?status=shipped
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	orders, err := ctrl.orderService.ListOrders(c.Query("status"))
	if err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

// GetOrderAdmin returns any order
// GET /api/v1/admin/orders/:id
func (ctrl *OrderController) GetOrderAdmin(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	order, err := ctrl.orderService.GetOrder(userID, model.RoleAdmin, c.Param("id"))
	if err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus moves an order through fulfilment
// PUT /api/v1/admin/orders/:id
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid order status request", map[string]interface{}{
			"order_id": c.Param("id"),
			"error":    err.Error(),
		})
		errors.BadRequest(c, "Status is required")
		return
	}

	order, err := ctrl.orderService.UpdateOrderStatus(c.Param("id"), req.Status)
	if err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// DeleteOrder removes an order permanently
// DELETE /api/v1/admin/orders/:id
func (ctrl *OrderController) DeleteOrder(c *gin.Context) {
	if err := ctrl.orderService.DeleteOrder(c.Param("id")); err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order removed",
	})
}

// GetAnalytics aggregates revenue and status counts across all orders
// GET /api/v1/admin/orders/analytics
func (ctrl *OrderController) GetAnalytics(c *gin.Context) {
	analytics, err := ctrl.orderService.GetAnalytics()
	if err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}
