package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ok(c *gin.Context) {
	c.Status(http.StatusOK)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRouterMountsUnderVersionPrefix(t *testing.T) {
	t.Run("default v1 prefix", func(t *testing.T) {
		engine := gin.New()
		invoices := NewDomainGroup("invoices", "/invoices")
		invoices.GET("", ok)

		NewRouter(engine).Register(invoices).Setup()

		assert.Equal(t, http.StatusOK, serve(engine, "GET", "/api/v1/invoices").Code)
	})

	t.Run("custom version", func(t *testing.T) {
		engine := gin.New()
		invoices := NewDomainGroup("invoices", "/invoices")
		invoices.GET("", ok)

		NewRouter(engine, WithAPIVersion("v2")).Register(invoices).Setup()

		assert.Equal(t, http.StatusOK, serve(engine, "GET", "/api/v2/invoices").Code)
		assert.Equal(t, http.StatusNotFound, serve(engine, "GET", "/api/v1/invoices").Code)
	})
}

func TestRouterMiddlewareScopedToAPIGroup(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", ok)

	var sawMiddleware bool
	invoices := NewDomainGroup("invoices", "/invoices")
	invoices.GET("", ok)

	NewRouter(engine).
		Use(func(c *gin.Context) {
			sawMiddleware = true
			c.Next()
		}).
		Register(invoices).
		Setup()

	serve(engine, "GET", "/health")
	assert.False(t, sawMiddleware)

	serve(engine, "GET", "/api/v1/invoices")
	assert.True(t, sawMiddleware)
}

func TestRouterRegistersMultipleGroups(t *testing.T) {
	engine := gin.New()

	invoices := NewDomainGroup("invoices", "/invoices")
	invoices.GET("", ok)
	clients := NewDomainGroup("clients", "/clients")
	clients.GET("", ok)

	NewRouter(engine).Register(invoices).Register(clients).Setup()

	assert.Equal(t, http.StatusOK, serve(engine, "GET", "/api/v1/invoices").Code)
	assert.Equal(t, http.StatusOK, serve(engine, "GET", "/api/v1/clients").Code)
}

func TestDomainGroupMethods(t *testing.T) {
	engine := gin.New()

	invoices := NewDomainGroup("invoices", "/invoices")
	invoices.POST("", ok)
	invoices.GET("/:id", ok)
	invoices.PUT("/:id", ok)
	invoices.DELETE("/:id", ok)
	invoices.POST("/:id/send", ok)

	NewRouter(engine).Register(invoices).Setup()

	cases := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/invoices"},
		{"GET", "/api/v1/invoices/77"},
		{"PUT", "/api/v1/invoices/77"},
		{"DELETE", "/api/v1/invoices/77"},
		{"POST", "/api/v1/invoices/77/send"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			assert.Equal(t, http.StatusOK, serve(engine, tc.method, tc.path).Code)
		})
	}

	t.Run("unregistered method misses", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, serve(engine, "PATCH", "/api/v1/invoices/77").Code)
	})
}

func TestDomainGroupRouteParams(t *testing.T) {
	engine := gin.New()

	var gotID string
	invoices := NewDomainGroup("invoices", "/invoices")
	invoices.GET("/:id/pdf", func(c *gin.Context) {
		gotID = c.Param("id")
		c.Status(http.StatusOK)
	})

	NewRouter(engine).Register(invoices).Setup()

	serve(engine, "GET", "/api/v1/invoices/inv-42/pdf")
	assert.Equal(t, "inv-42", gotID)
}

func TestDomainGroupChaining(t *testing.T) {
	engine := gin.New()

	pay := NewDomainGroup("pay", "/pay").
		GET("/:token", ok).
		POST("/:token/confirm", ok)

	NewRouter(engine).Register(pay).Setup()

	assert.Equal(t, http.StatusOK, serve(engine, "GET", "/api/v1/pay/tok-1").Code)
	assert.Equal(t, http.StatusOK, serve(engine, "POST", "/api/v1/pay/tok-1/confirm").Code)
}

func TestDomainGroupHandlerChain(t *testing.T) {
	engine := gin.New()

	var order []string
	invoices := NewDomainGroup("invoices", "/invoices")
	invoices.GET("",
		func(c *gin.Context) {
			order = append(order, "first")
			c.Next()
		},
		func(c *gin.Context) {
			order = append(order, "second")
			c.Status(http.StatusOK)
		},
	)

	NewRouter(engine).Register(invoices).Setup()

	serve(engine, "GET", "/api/v1/invoices")
	assert.Equal(t, []string{"first", "second"}, order)
}
