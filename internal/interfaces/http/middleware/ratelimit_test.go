package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Take(t *testing.T) {
	t.Run("admits requests up to the limit", func(t *testing.T) {
		limiter := NewRateLimiter(3, time.Minute)

		for i := 0; i < 3; i++ {
			allowed, _ := limiter.Take("tenant-a:10.0.0.1")
			assert.True(t, allowed, "request %d should be admitted", i+1)
		}

		allowed, remaining := limiter.Take("tenant-a:10.0.0.1")
		assert.False(t, allowed)
		assert.Equal(t, 0, remaining)
	})

	t.Run("counts down the remaining slots", func(t *testing.T) {
		limiter := NewRateLimiter(5, time.Minute)

		_, remaining := limiter.Take("client")
		assert.Equal(t, 4, remaining)

		_, remaining = limiter.Take("client")
		assert.Equal(t, 3, remaining)
	})

	t.Run("keys buckets independently", func(t *testing.T) {
		limiter := NewRateLimiter(2, time.Minute)

		limiter.Take("tenant-a:10.0.0.1")
		limiter.Take("tenant-a:10.0.0.1")
		allowed, _ := limiter.Take("tenant-a:10.0.0.1")
		assert.False(t, allowed)

		// A different tenant behind the same proxy is untouched.
		allowed, _ = limiter.Take("tenant-b:10.0.0.1")
		assert.True(t, allowed)
	})

	t.Run("opens a fresh window after expiry", func(t *testing.T) {
		limiter := NewRateLimiter(2, 50*time.Millisecond)

		limiter.Take("client")
		limiter.Take("client")
		allowed, _ := limiter.Take("client")
		assert.False(t, allowed)

		time.Sleep(60 * time.Millisecond)

		allowed, remaining := limiter.Take("client")
		assert.True(t, allowed)
		assert.Equal(t, 1, remaining)
	})

	t.Run("never over-admits under concurrency", func(t *testing.T) {
		limiter := NewRateLimiter(50, time.Minute)

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			admitted int
		)
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if ok, _ := limiter.Take("shared"); ok {
					mu.Lock()
					admitted++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 50, admitted)
	})
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newEngine := func(limiter *RateLimiter) *gin.Engine {
		router := gin.New()
		router.Use(RateLimit(limiter))
		router.GET("/inventory/availability", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return router
	}

	t.Run("sets the rate limit headers on admitted requests", func(t *testing.T) {
		router := newEngine(NewRateLimiter(10, time.Minute))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/inventory/availability", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "9", w.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("rejects an exhausted window with 429", func(t *testing.T) {
		router := newEngine(NewRateLimiter(2, time.Minute))

		var w *httptest.ResponseRecorder
		for i := 0; i < 3; i++ {
			w = httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/inventory/availability", nil)
			router.ServeHTTP(w, req)
		}

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
	})

	t.Run("buckets each tenant separately", func(t *testing.T) {
		router := newEngine(NewRateLimiter(1, time.Minute))

		send := func(tenantID string) int {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/inventory/availability", nil)
			if tenantID != "" {
				req.Header.Set(TenantHeaderKey, tenantID)
			}
			router.ServeHTTP(w, req)
			return w.Code
		}

		assert.Equal(t, http.StatusOK, send("tenant-a"))
		assert.Equal(t, http.StatusTooManyRequests, send("tenant-a"))

		// Same client IP, different tenant header: fresh bucket.
		assert.Equal(t, http.StatusOK, send("tenant-b"))
		// No tenant header falls back to the bare IP bucket.
		assert.Equal(t, http.StatusOK, send(""))
	})
}
