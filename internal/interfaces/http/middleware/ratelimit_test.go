package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterAllow(t *testing.T) {
	t.Run("enforces the per-window budget", func(t *testing.T) {
		rl := NewRateLimiter(3, time.Minute)

		for i := 0; i < 3; i++ {
			assert.True(t, rl.Allow("10.0.0.1"), "request %d should pass", i+1)
		}
		assert.False(t, rl.Allow("10.0.0.1"))
	})

	t.Run("keys have independent budgets", func(t *testing.T) {
		rl := NewRateLimiter(1, time.Minute)

		assert.True(t, rl.Allow("10.0.0.1"))
		assert.False(t, rl.Allow("10.0.0.1"))
		assert.True(t, rl.Allow("10.0.0.2"))
	})

	t.Run("the budget refills after the window", func(t *testing.T) {
		rl := NewRateLimiter(1, 10*time.Millisecond)

		assert.True(t, rl.Allow("10.0.0.1"))
		assert.False(t, rl.Allow("10.0.0.1"))

		time.Sleep(15 * time.Millisecond)
		assert.True(t, rl.Allow("10.0.0.1"))
	})
}

func TestRateLimiterRemaining(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute)

	assert.Equal(t, 5, rl.Remaining("10.0.0.1"))
	rl.Allow("10.0.0.1")
	rl.Allow("10.0.0.1")
	assert.Equal(t, 3, rl.Remaining("10.0.0.1"))
}

func rateLimitedRouter(rl *RateLimiter, pre ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(pre...)
	router.Use(RateLimit(rl))
	router.GET("/api/v1/invoices", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestRateLimit(t *testing.T) {
	t.Run("passes requests within the budget and sets headers", func(t *testing.T) {
		router := rateLimitedRouter(NewRateLimiter(2, time.Minute))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("rejects over-budget requests with 429 and the error envelope", func(t *testing.T) {
		router := rateLimitedRouter(NewRateLimiter(1, time.Minute))

		first := httptest.NewRecorder()
		router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil))
		require.Equal(t, http.StatusOK, first.Code)

		second := httptest.NewRecorder()
		router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil))
		require.Equal(t, http.StatusTooManyRequests, second.Code)
		assert.Contains(t, second.Body.String(), "RATE_LIMIT_EXCEEDED")
	})

	t.Run("authenticated owners do not share an IP budget", func(t *testing.T) {
		rl := NewRateLimiter(1, time.Minute)
		ownerA := "2349cfd1-cf32-4eba-a78a-aaa111111111"
		ownerB := "2349cfd1-cf32-4eba-a78a-bbb222222222"

		hit := func(owner string) int {
			router := rateLimitedRouter(rl, func(c *gin.Context) {
				c.Set(JWTOwnerIDKey, owner)
				c.Next()
			})
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil))
			return w.Code
		}

		assert.Equal(t, http.StatusOK, hit(ownerA))
		assert.Equal(t, http.StatusTooManyRequests, hit(ownerA))
		assert.Equal(t, http.StatusOK, hit(ownerB))
	})
}
