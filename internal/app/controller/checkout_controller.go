package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type CheckoutController struct {
	checkoutService service.CheckoutService
	addressService  service.AddressService
}

func NewCheckoutController(checkoutService service.CheckoutService, addressService service.AddressService) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
		addressService:  addressService,
	}
}

// CreateCheckoutRequest takes either an inline shippingAddress or the id of
// a saved address; addressId wins when both are sent.
type CreateCheckoutRequest struct {
	CheckoutItems   model.LineItems       `json:"checkoutItems"`
	ShippingAddress model.ShippingAddress `json:"shippingAddress"`
	AddressID       string                `json:"addressId"`
	PaymentMethod   string                `json:"paymentMethod"`
	TotalPrice      float64               `json:"totalPrice"`
}

type PayCheckoutRequest struct {
	PaymentStatus  string                 `json:"paymentStatus"`
	PaymentDetails map[string]interface{} `json:"paymentDetails"`
}

// CreateCheckout starts a purchase from the client's cart snapshot
// POST /api/v1/checkout
func (ctrl *CheckoutController) CreateCheckout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	var req CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid checkout request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		errors.BadRequest(c, "Invalid request data")
		return
	}

	if req.AddressID != "" {
		address, err := ctrl.addressService.ShippingAddressFor(userID, req.AddressID)
		if err != nil {
			errors.Respond(c, err)
			return
		}
		req.ShippingAddress = address
	}

	checkout, err := ctrl.checkoutService.CreateCheckout(userID, service.CreateCheckoutInput{
		Items:           req.CheckoutItems,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		TotalPrice:      req.TotalPrice,
	})
	if err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, checkout)
}

// GetCheckout returns one of the caller's checkouts
// GET /api/v1/checkout/:id
func (ctrl *CheckoutController) GetCheckout(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	checkout, err := ctrl.checkoutService.GetCheckout(userID, c.Param("id"))
	if err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, checkout)
}

// PayCheckout records a successful payment
// PUT /api/v1/checkout/:id/pay
func (ctrl *CheckoutController) PayCheckout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	var req PayCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid pay request", map[string]interface{}{
			"checkout_id": c.Param("id"),
			"error":       err.Error(),
		})
		errors.BadRequest(c, "Invalid request data")
		return
	}

	checkout, err := ctrl.checkoutService.MarkPaid(userID, c.Param("id"), req.PaymentStatus, req.PaymentDetails)
	if err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, checkout)
}

// FinalizeCheckout converts a paid checkout into an order
// POST /api/v1/checkout/:id/finalize
func (ctrl *CheckoutController) FinalizeCheckout(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	order, err := ctrl.checkoutService.Finalize(userID, c.Param("id"))
	if err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}
