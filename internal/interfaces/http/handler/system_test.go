package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/invoiceapp/backend/internal/interfaces/http/dto"
	"github.com/invoiceapp/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemHandlerHealth(t *testing.T) {
	h := NewSystemHandler(nil)

	router := gin.New()
	router.GET("/health", h.Health)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ok", data["status"])
	assert.NotEmpty(t, data["time"])
}

func TestSystemHandlerGetSystemInfo(t *testing.T) {
	h := NewSystemHandler(nil)

	router := gin.New()
	router.GET("/system/info", h.GetSystemInfo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/system/info", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Invoice Backend API", data["name"])
	assert.NotEmpty(t, data["go_version"])
}

func TestSystemHandlerTriggerOverdueSweep(t *testing.T) {
	t.Run("requires authentication", func(t *testing.T) {
		h := NewSystemHandler(nil)

		router := gin.New()
		router.POST("/system/sweep-overdue", h.TriggerOverdueSweep)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/system/sweep-overdue", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("fails when sweeper is not configured", func(t *testing.T) {
		h := NewSystemHandler(nil)

		router := gin.New()
		router.POST("/system/sweep-overdue", func(c *gin.Context) {
			c.Set(middleware.JWTOwnerIDKey, uuid.New().String())
			h.TriggerOverdueSweep(c)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/system/sweep-overdue", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
	})
}
