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

func setupUserControllerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	ctrl := NewUserController(service.NewUserService(repository.NewUserRepository(testDB)))

	router := newTestRouter()
	router.GET("/admin/users", ctrl.ListUsers)
	router.PUT("/admin/users/:id/role", ctrl.UpdateRole)
	router.DELETE("/admin/users/:id", ctrl.DeleteUser)
	return router, testDB
}

func TestUserController_ManageRoles(t *testing.T) {
	router, testDB := setupUserControllerTest(t)

	actor := &model.User{Name: "Admin", Email: "admin@example.com", PasswordHash: "x", Role: model.RoleAdmin}
	shopper := &model.User{Name: "Shopper", Email: "shopper@example.com", PasswordHash: "x"}
	require.NoError(t, testDB.Create(actor).Error)
	require.NoError(t, testDB.Create(shopper).Error)
	as := caller{userID: actor.ID, role: model.RoleAdmin}

	w := perform(t, router, as, http.MethodGet, "/admin/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var users []model.User
	decode(t, w, &users)
	assert.Len(t, users, 2)

	w = perform(t, router, as, http.MethodPut, "/admin/users/"+shopper.ID+"/role", gin.H{"role": "admin"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated model.User
	decode(t, w, &updated)
	assert.Equal(t, model.RoleAdmin, updated.Role)

	w = perform(t, router, as, http.MethodPut, "/admin/users/"+shopper.ID+"/role", gin.H{"role": "owner"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid role", messageOf(t, w))

	w = perform(t, router, as, http.MethodPut, "/admin/users/"+actor.ID+"/role", gin.H{"role": "customer"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Admins cannot demote or delete themselves", messageOf(t, w))

	w = perform(t, router, as, http.MethodDelete, "/admin/users/"+actor.ID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(t, router, as, http.MethodDelete, "/admin/users/"+shopper.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(t, router, as, http.MethodDelete, "/admin/users/"+shopper.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
