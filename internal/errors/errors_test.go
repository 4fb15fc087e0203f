package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("bad id"), http.StatusBadRequest},
		{"conflict", Conflict("already finalized"), http.StatusBadRequest},
		{"not found", NotFound("Cart not found"), http.StatusNotFound},
		{"unauthorized", Unauthorized("no token"), http.StatusUnauthorized},
		{"forbidden", Forbidden("admins only"), http.StatusForbidden},
		{"busy", Busy("Cart was modified concurrently, please retry"), http.StatusConflict},
		{"upstream", Upstream(stderrors.New("conn reset"), "Failed to save cart"), http.StatusInternalServerError},
		{"plain error", stderrors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("finalize: %w", NotFound("Checkout not found")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestMessage_HidesCause(t *testing.T) {
	err := Upstream(stderrors.New("dial tcp 10.0.0.1:5432"), "Failed to save cart")
	assert.Equal(t, "Failed to save cart", Message(err))
	assert.Contains(t, err.Error(), "dial tcp")
	assert.Equal(t, "Server error", Message(stderrors.New("raw")))
}

func TestIs(t *testing.T) {
	sentinel := Conflict("Checkout already finalized")
	wrapped := fmt.Errorf("ctx: %w", sentinel)

	assert.True(t, Is(wrapped, KindStateConflict))
	assert.False(t, Is(wrapped, KindValidation))
	assert.True(t, stderrors.Is(wrapped, sentinel))
}

func TestRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Respond(c, Validation("Size and color are required"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Size and color are required"}`, w.Body.String())
}
