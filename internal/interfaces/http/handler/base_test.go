package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoiceapp/backend/internal/domain/shared"
	"github.com/invoiceapp/backend/internal/interfaces/http/dto"
	"github.com/invoiceapp/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/invoices", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	t.Run("prefers the middleware value over the header", func(t *testing.T) {
		c, _ := testContext(t)
		c.Set("request_id", "ctx-id")
		c.Request.Header.Set("X-Request-ID", "header-id")
		assert.Equal(t, "ctx-id", getRequestID(c))
	})

	t.Run("falls back to the inbound header", func(t *testing.T) {
		c, _ := testContext(t)
		c.Request.Header.Set("X-Request-ID", "header-id")
		assert.Equal(t, "header-id", getRequestID(c))
	})

	t.Run("empty when neither is present", func(t *testing.T) {
		c, _ := testContext(t)
		assert.Empty(t, getRequestID(c))
	})
}

func TestGetOwnerID(t *testing.T) {
	t.Run("parses the owner from the claims", func(t *testing.T) {
		c, _ := testContext(t)
		want := uuid.New()
		c.Set(middleware.JWTOwnerIDKey, want.String())

		got, err := getOwnerID(c)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("errors when unauthenticated", func(t *testing.T) {
		c, _ := testContext(t)
		_, err := getOwnerID(c)
		assert.Error(t, err)
	})

	t.Run("errors on a malformed owner ID", func(t *testing.T) {
		c, _ := testContext(t)
		c.Set(middleware.JWTOwnerIDKey, "not-a-uuid")
		_, err := getOwnerID(c)
		assert.Error(t, err)
	})
}

func TestBaseHandlerSuccessResponses(t *testing.T) {
	h := &BaseHandler{}

	t.Run("Success wraps the payload", func(t *testing.T) {
		c, w := testContext(t)
		h.Success(c, gin.H{"number": "INV-2026-0001"})

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "INV-2026-0001", data["number"])
	})

	t.Run("SuccessWithMeta carries pagination", func(t *testing.T) {
		c, w := testContext(t)
		h.SuccessWithMeta(c, []string{"a", "b"}, 42, 2, 20)

		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(42), resp.Meta.Total)
		assert.Equal(t, 2, resp.Meta.Page)
		assert.Equal(t, 20, resp.Meta.PageSize)
	})

	t.Run("Created answers 201", func(t *testing.T) {
		c, w := testContext(t)
		h.Created(c, gin.H{"id": uuid.New().String()})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, decodeResponse(t, w).Success)
	})

	t.Run("NoContent answers a bare 204", func(t *testing.T) {
		c, w := testContext(t)
		h.NoContent(c)
		c.Writer.WriteHeaderNow()

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestBaseHandlerErrorResponses(t *testing.T) {
	h := &BaseHandler{}

	cases := []struct {
		name       string
		send       func(c *gin.Context)
		wantStatus int
		wantCode   string
	}{
		{"BadRequest", func(c *gin.Context) { h.BadRequest(c, "bad payload") }, http.StatusBadRequest, dto.ErrCodeBadRequest},
		{"NotFound", func(c *gin.Context) { h.NotFound(c, "invoice not found") }, http.StatusNotFound, dto.ErrCodeNotFound},
		{"Unauthorized", func(c *gin.Context) { h.Unauthorized(c, "missing token") }, http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"InternalError", func(c *gin.Context) { h.InternalError(c, "boom") }, http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, w := testContext(t)
			tc.send(c)

			assert.Equal(t, tc.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.wantCode, resp.Error.Code)
		})
	}

	t.Run("error envelope carries the request ID", func(t *testing.T) {
		c, w := testContext(t)
		c.Set("request_id", "req-789")
		h.NotFound(c, "invoice not found")

		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "req-789", resp.Error.RequestID)
	})
}

func TestBaseHandlerHandleError(t *testing.T) {
	h := &BaseHandler{}

	t.Run("translates a domain error through the code mapping", func(t *testing.T) {
		c, w := testContext(t)
		h.HandleError(c, shared.NewDomainError("NOT_FOUND", "invoice does not exist"))

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
		assert.Equal(t, "invoice does not exist", resp.Error.Message)
	})

	t.Run("unwraps a wrapped domain error", func(t *testing.T) {
		c, w := testContext(t)
		inner := shared.NewDomainError("INVALID_STATE_TRANSITION", "cannot pay a draft invoice")
		h.HandleError(c, errors.Join(errors.New("apply payment"), inner))

		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "cannot pay a draft invoice", resp.Error.Message)
		assert.NotEqual(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("hides non-domain errors behind a 500", func(t *testing.T) {
		c, w := testContext(t)
		h.HandleError(c, errors.New("pq: connection reset"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
		assert.NotContains(t, resp.Error.Message, "pq:")
	})

	t.Run("nil error writes nothing", func(t *testing.T) {
		c, w := testContext(t)
		h.HandleError(c, nil)
		assert.Empty(t, w.Body.String())
	})
}
