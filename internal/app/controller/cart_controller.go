package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

// CartItemRequest addresses one line of the caller's cart. UserID is only
// accepted when it matches the bearer token.
type CartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	GuestID   string `json:"guestId"`
	UserID    string `json:"userId"`
}

func (r CartItemRequest) input() service.CartItemInput {
	return service.CartItemInput{
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
		Size:      r.Size,
		Color:     r.Color,
	}
}

type MergeCartRequest struct {
	GuestID string `json:"guestId"`
}

func resolveIdentity(c *gin.Context, userID, guestID string) (service.Identity, error) {
	principal, _ := middleware.GetUserID(c)
	return service.ResolveIdentity(principal, userID, guestID)
}

// bindCartRequest binds the body and resolves whose cart it addresses
func bindCartRequest(c *gin.Context) (CartItemRequest, service.Identity, bool) {
	log := middleware.GetLoggerFromContext(c)

	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid cart request", map[string]interface{}{
			"error": err.Error(),
		})
		errors.BadRequest(c, "Invalid request data")
		return req, service.Identity{}, false
	}

	identity, err := resolveIdentity(c, req.UserID, req.GuestID)
	if err != nil {
		errors.Respond(c, err)
		return req, service.Identity{}, false
	}
	return req, identity, true
}

// GetCart returns the caller's cart
// GET /api/v1/cart?guestId=...
func (ctrl *CartController) GetCart(c *gin.Context) {
	identity, err := resolveIdentity(c, c.Query("userId"), c.Query("guestId"))
	if err != nil {
		errors.Respond(c, err)
		return
	}

	cart, err := ctrl.cartService.GetCart(identity)
	if err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// AddToCart adds a product variant, creating the cart on first use
// POST /api/v1/cart
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	req, identity, ok := bindCartRequest(c)
	if !ok {
		return
	}

	cart, created, err := ctrl.cartService.AddItem(identity, req.input())
	if err != nil {
		log.Warn("Failed to add item to cart", map[string]interface{}{
			"product_id": req.ProductID,
			"error":      err.Error(),
		})
		errors.Respond(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, cart)
}

// UpdateCartItem sets the quantity of one line; zero removes it
// PUT /api/v1/cart
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	req, identity, ok := bindCartRequest(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.UpdateItem(identity, req.input())
	if err != nil {
		errors.Respond(c, err)
		return
	}
	respondCartOrDeleted(c, cart)
}

// RemoveFromCart removes one line
// DELETE /api/v1/cart
func (ctrl *CartController) RemoveFromCart(c *gin.Context) {
	req, identity, ok := bindCartRequest(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.RemoveItem(identity, req.input())
	if err != nil {
		errors.Respond(c, err)
		return
	}
	respondCartOrDeleted(c, cart)
}

// respondCartOrDeleted reports an emptied cart explicitly instead of a body
// that looks like an empty cart
func respondCartOrDeleted(c *gin.Context, cart *model.Cart) {
	if cart == nil {
		c.JSON(http.StatusOK, gin.H{
			"message": "Cart is empty and has been deleted",
			"cart":    nil,
		})
		return
	}
	c.JSON(http.StatusOK, cart)
}

// ClearCart empties the caller's cart
// DELETE /api/v1/cart/clear?guestId=...
func (ctrl *CartController) ClearCart(c *gin.Context) {
	identity, err := resolveIdentity(c, c.Query("userId"), c.Query("guestId"))
	if err != nil {
		errors.Respond(c, err)
		return
	}

	if err := ctrl.cartService.ClearCart(identity); err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared",
		"cart":    nil,
	})
}

// MergeCart folds the guest cart into the signed-in user's cart
// POST /api/v1/cart/merge
func (ctrl *CartController) MergeCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		errors.Unauthenticated(c, "")
		return
	}

	var req MergeCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid merge request", map[string]interface{}{
			"error": err.Error(),
		})
		errors.BadRequest(c, "Invalid request data")
		return
	}

	cart, err := ctrl.cartService.MergeGuestCart(userID, req.GuestID)
	if err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}
