package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createClientForm struct {
	Name  string `json:"name" binding:"required,min=1,max=200"`
	Email string `json:"email" binding:"required,email"`
}

func bindingRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.Use(RequestID())
	router.POST("/api/v1/clients", func(c *gin.Context) {
		var form createClientForm
		if err := c.ShouldBindJSON(&form); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})
	return router
}

func TestHandleValidationError(t *testing.T) {
	router := bindingRouter()

	t.Run("reports each failed field under its json name", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/clients",
			strings.NewReader(`{"name":"","email":"not-an-address"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, `"success":false`)
		assert.Contains(t, body, `"name"`)
		assert.Contains(t, body, "This field is required")
		assert.Contains(t, body, `"email"`)
		assert.Contains(t, body, "Invalid email format")
	})

	t.Run("valid payload passes through", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/clients",
			strings.NewReader(`{"name":"Acme GmbH","email":"billing@acme.example"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})
}

func TestValidationMessage(t *testing.T) {
	SetupValidator()
	router := gin.New()
	router.POST("/echo", func(c *gin.Context) {
		var form struct {
			Currency string `json:"currency" binding:"omitempty,len=3"`
			Order    string `json:"order" binding:"omitempty,oneof=asc desc"`
		}
		if err := c.ShouldBindJSON(&form); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo",
		strings.NewReader(`{"currency":"EURO","order":"sideways"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Must be exactly 3 characters")
	assert.Contains(t, w.Body.String(), "Must be one of: asc desc")
}
