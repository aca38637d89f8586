package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestIPRateLimitMiddleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router := gin.New()
	router.POST("/share", IPRateLimitMiddleware(ctx, 1.0, 2, createTestLogger()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	send := func(remoteAddr string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/share", nil)
		req.RemoteAddr = remoteAddr
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("Success_WithinBurst", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, send("10.0.0.1:1234").Code)
		assert.Equal(t, http.StatusOK, send("10.0.0.1:1234").Code)
	})

	t.Run("Error_ExceedsBurst", func(t *testing.T) {
		w := send("10.0.0.1:1234")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
	})

	t.Run("Success_IndependentIPs", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, send("10.0.0.2:1234").Code)
	})
}

func TestRateLimitMiddleware_PerPrincipal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	alice := testSession(false)
	bob := testSession(false)
	current := alice

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(WithSession(c.Request.Context(), current))
		c.Next()
	})
	router.GET("/v1/roles", RateLimitMiddleware(ctx, 1.0, 1, createTestLogger()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	send := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/roles", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())

	current = bob
	assert.Equal(t, http.StatusOK, send())
}
