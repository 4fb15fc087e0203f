package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

// UserController serves the admin user management screens
type UserController struct {
	userService service.UserService
}

func NewUserController(userService service.UserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// ListUsers
// GET /api/v1/admin/users
func (ctrl *UserController) ListUsers(c *gin.Context) {
	users, err := ctrl.userService.ListUsers()
	if err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// UpdateRole
// PUT /api/v1/admin/users/:id/role
func (ctrl *UserController) UpdateRole(c *gin.Context) {
	actorID, _ := middleware.GetUserID(c)

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.BadRequest(c, "Role is required")
		return
	}

	user, err := ctrl.userService.UpdateRole(actorID, c.Param("id"), req.Role)
	if err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser
// DELETE /api/v1/admin/users/:id
func (ctrl *UserController) DeleteUser(c *gin.Context) {
	actorID, _ := middleware.GetUserID(c)

	if err := ctrl.userService.DeleteUser(actorID, c.Param("id")); err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted",
	})
}
