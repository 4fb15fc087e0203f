package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

// AddressController serves the signed-in user's address book
type AddressController struct {
	addressService service.AddressService
}

func NewAddressController(addressService service.AddressService) *AddressController {
	return &AddressController{
		addressService: addressService,
	}
}

type AddressRequest struct {
	Label      string `json:"label"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	IsDefault  bool   `json:"isDefault"`
}

func (r AddressRequest) input() service.AddressInput {
	return service.AddressInput{
		Label:      r.Label,
		Address:    r.Address,
		City:       r.City,
		PostalCode: r.PostalCode,
		Country:    r.Country,
		IsDefault:  r.IsDefault,
	}
}

// ListAddresses returns the caller's addresses, default first
// GET /api/v1/addresses
func (ctrl *AddressController) ListAddresses(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	addresses, err := ctrl.addressService.ListAddresses(userID)
	if err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"addresses": addresses,
		"count":     len(addresses),
	})
}

// CreateAddress
// POST /api/v1/addresses
func (ctrl *AddressController) CreateAddress(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create address request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		errors.BadRequest(c, "Invalid request data")
		return
	}

	address, err := ctrl.addressService.CreateAddress(userID, req.input())
	if err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, address)
}

// UpdateAddress
// PUT /api/v1/addresses/:id
func (ctrl *AddressController) UpdateAddress(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.BadRequest(c, "Invalid request data")
		return
	}

	address, err := ctrl.addressService.UpdateAddress(userID, c.Param("id"), req.input())
	if err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, address)
}

// DeleteAddress
// DELETE /api/v1/addresses/:id
func (ctrl *AddressController) DeleteAddress(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	if err := ctrl.addressService.DeleteAddress(userID, c.Param("id")); err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Address removed",
	})
}

// SetDefaultAddress
// PUT /api/v1/addresses/:id/default
func (ctrl *AddressController) SetDefaultAddress(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	address, err := ctrl.addressService.SetDefaultAddress(userID, c.Param("id"))
	if err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, address)
}
