package controller

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/stretchr/testify/require"
)

const (
	testUserHeader = "X-Test-User"
	testRoleHeader = "X-Test-Role"
)

// testPrincipal stands in for the JWT middleware: the caller is whoever the
// test headers name
func testPrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetHeader(testUserHeader); userID != "" {
			role := model.UserRole(c.GetHeader(testRoleHeader))
			if role == "" {
				role = model.RoleCustomer
			}
			c.Set(middleware.UserIDKey, userID)
			c.Set(middleware.UserRoleKey, role)
		}
		c.Next()
	}
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(testPrincipal())
	return router
}

type caller struct {
	userID string
	role   model.UserRole
}

var (
	anonymous = caller{}
	admin     = caller{userID: "admin-1", role: model.RoleAdmin}
)

func customer(userID string) caller {
	return caller{userID: userID, role: model.RoleCustomer}
}

func perform(t *testing.T, router *gin.Engine, who caller, method, path string, body interface{}) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if who.userID != "" {
		req.Header.Set(testUserHeader, who.userID)
		req.Header.Set(testRoleHeader, string(who.role))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func messageOf(t *testing.T, w *httptest.ResponseRecorder) string {
	var body map[string]interface{}
	decode(t, w, &body)
	msg, _ := body["message"].(string)
	return msg
}
