package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	authHTTP "github.com/allisson/sentinel/internal/auth/http"
	authMocks "github.com/allisson/sentinel/internal/auth/usecase/mocks"
	"github.com/allisson/sentinel/internal/config"
	apperrors "github.com/allisson/sentinel/internal/errors"
	"github.com/allisson/sentinel/internal/metrics"
)

// TestMain sets Gin to test mode for all tests in this package.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// createTestServer creates a test server with a discarding logger.
func createTestServer() *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(nil, "localhost", 8080, logger)
}

// TestHealthHandler tests the health check endpoint handler.
func TestHealthHandler(t *testing.T) {
	server := createTestServer()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	server.healthHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "healthy", response["status"])
}

// TestReadinessHandler_NotReady_NilDB tests the readiness endpoint when DB is nil.
func TestReadinessHandler_NotReady_NilDB(t *testing.T) {
	server := createTestServer()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

	server.readinessHandler(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "not_ready", response["status"])

	components, ok := response["components"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "error", components["database"])
}

// TestCustomLoggerMiddleware tests the custom logging middleware.
func TestCustomLoggerMiddleware(t *testing.T) {
	// Create a test logger that discards output
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(logger))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "test", response["message"])
}

// TestRecoveryMiddleware tests Gin's built-in recovery middleware.
func TestRecoveryMiddleware(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CustomLoggerMiddleware(logger))
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)

	// Should not panic - Recovery middleware catches it
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// createMinimalRouter creates a minimal router with only health and ready endpoints for testing.
func createMinimalRouter(server *Server) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(server.logger))

	// Register only health endpoints for basic router tests
	router.GET("/health", server.healthHandler)
	router.GET("/ready", server.readinessHandler)

	return router
}

// TestRouter_HealthEndpoint tests the health endpoint through the full router.
func TestRouter_HealthEndpoint(t *testing.T) {
	server := createTestServer()
	router := createMinimalRouter(server)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "healthy", response["status"])
}

// TestRouter_ReadyEndpoint tests the ready endpoint through the full router when not ready.
func TestRouter_ReadyEndpoint(t *testing.T) {
	server := createTestServer()
	router := createMinimalRouter(server)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "not_ready", response["status"])

	components, ok := response["components"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "error", components["database"])
}

// TestRouter_NotFoundEndpoint tests 404 handling.
func TestRouter_NotFoundEndpoint(t *testing.T) {
	server := createTestServer()
	router := createMinimalRouter(server)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestServer_ShutdownGracefully tests graceful server shutdown.
func TestServer_ShutdownGracefully(t *testing.T) {
	server := createTestServer()

	// Initialize router with minimal setup
	router := createMinimalRouter(server)
	server.router = router

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// Give server time to start
	time.Sleep(100 * time.Millisecond)

	// Shutdown server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	err := server.Shutdown(shutdownCtx)
	assert.NoError(t, err)

	// Verify no startup errors
	select {
	case err := <-errChan:
		t.Fatalf("server startup failed: %v", err)
	default:
		// No error, good
	}
}

// TestRequestIDMiddleware_HeaderPresent verifies X-Request-Id header is present in response.
func TestRequestIDMiddleware_HeaderPresent(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	// Verify X-Request-Id header is present
	requestID := w.Header().Get("X-Request-Id")
	assert.NotEmpty(t, requestID, "X-Request-Id header should be present")

	// Verify it's a valid UUID
	parsedUUID, err := uuid.Parse(requestID)
	require.NoError(t, err, "X-Request-Id should be a valid UUID")
	assert.NotEqual(t, uuid.Nil, parsedUUID, "X-Request-Id should not be nil UUID")

	_ = logger // Prevent unused variable error
}

// TestMetricsServer_Endpoints tests the metrics server endpoints.
func TestMetricsServer_Endpoints(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// Create metrics provider
	provider, err := metrics.NewProvider("test_app")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	// Create metrics server
	metricsServer := NewMetricsServer("localhost", 8081, logger, provider)
	require.NotNil(t, metricsServer)

	// Test the handler from metricsServer exactly as it's configured
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	metricsServer.GetHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}

// TestReadinessHandler covers the database ping and registered dependency checks.
func TestReadinessHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Success_AllComponentsReady", func(t *testing.T) {
		db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		dbMock.ExpectPing()

		server := NewServer(db, "localhost", 8080, logger)
		server.AddReadinessCheck("redis", func(ctx context.Context) error { return nil })

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)
		server.readinessHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "ready", response["status"])
		components := response["components"].(map[string]any)
		assert.Equal(t, "ok", components["database"])
		assert.Equal(t, "ok", components["redis"])
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("Error_DependencyCheckFails", func(t *testing.T) {
		db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		dbMock.ExpectPing()

		server := NewServer(db, "localhost", 8080, logger)
		server.AddReadinessCheck("redis", func(ctx context.Context) error { return errors.New("connection refused") })

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)
		server.readinessHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		components := response["components"].(map[string]any)
		assert.Equal(t, "ok", components["database"])
		assert.Equal(t, "error", components["redis"])
	})

	t.Run("Error_DatabasePingFails", func(t *testing.T) {
		db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		dbMock.ExpectPing().WillReturnError(errors.New("down"))

		server := NewServer(db, "localhost", 8080, logger)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)
		server.readinessHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

// setupRouterServer builds a server with the full router. Handlers are constructed without
// use cases, so only requests stopped by middleware or served from the session may be sent.
func setupRouterServer(t *testing.T) (*Server, *authMocks.MockAuthUseCase) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authUC := &authMocks.MockAuthUseCase{}

	cfg := &config.Config{
		RateLimitEnabled:             true,
		RateLimitRequestsPerSec:      100,
		RateLimitBurst:               100,
		RateLimitShareEnabled:        true,
		RateLimitShareRequestsPerSec: 100,
		RateLimitShareBurst:          100,
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	server := NewServer(nil, "localhost", 8080, logger)
	server.SetupRouter(ctx, cfg, Handlers{
		Session: authHTTP.NewSessionHandler(authUC, logger),
	}, authUC, nil)
	return server, authUC
}

func bearerRequest(method, target, token string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// TestSetupRouter_AuthenticationGates verifies the middleware stack in front of the API routes.
func TestSetupRouter_AuthenticationGates(t *testing.T) {
	t.Run("Error_MissingTokenRejected", func(t *testing.T) {
		server, _ := setupRouterServer(t)

		w := httptest.NewRecorder()
		server.GetHandler().ServeHTTP(w, bearerRequest(http.MethodPost, "/v1/access/check", ""))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Error_InvalidTokenRejected", func(t *testing.T) {
		server, authUC := setupRouterServer(t)
		authUC.On("Authenticate", mock.Anything, "bad").Return(nil, apperrors.ErrUnauthorized)

		w := httptest.NewRecorder()
		server.GetHandler().ServeHTTP(w, bearerRequest(http.MethodGet, "/v1/roles", "bad"))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		authUC.AssertExpectations(t)
	})

	t.Run("Success_SessionEndpoint", func(t *testing.T) {
		server, authUC := setupRouterServer(t)
		session := &authDomain.Session{
			Principal: authDomain.Principal{
				UserID:     uuid.Must(uuid.NewV7()),
				SessionID:  "sid-1",
				TrustLevel: authDomain.TrustStandard,
			},
			ExpiresAt: time.Now().Add(time.Hour),
		}
		authUC.On("Authenticate", mock.Anything, "good").Return(session, nil)

		w := httptest.NewRecorder()
		server.GetHandler().ServeHTTP(w, bearerRequest(http.MethodGet, "/v1/sessions/current", "good"))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	})

	t.Run("Error_AdminRouteForbiddenForRegularUser", func(t *testing.T) {
		server, authUC := setupRouterServer(t)
		session := &authDomain.Session{
			Principal: authDomain.Principal{
				UserID:     uuid.Must(uuid.NewV7()),
				SessionID:  "sid-2",
				TrustLevel: authDomain.TrustStandard,
			},
			ExpiresAt: time.Now().Add(time.Hour),
		}
		authUC.On("Authenticate", mock.Anything, "user").Return(session, nil)

		for _, target := range []string{"/v1/audit-events", "/v1/clearances/review-due", "/v1/role-requests"} {
			w := httptest.NewRecorder()
			server.GetHandler().ServeHTTP(w, bearerRequest(http.MethodGet, target, "user"))
			assert.Equal(t, http.StatusForbidden, w.Code, target)
		}
	})

	t.Run("Error_ShareRejectsMalformedAuthorization", func(t *testing.T) {
		server, _ := setupRouterServer(t)

		req := httptest.NewRequest(http.MethodPost, "/v1/share/abc/verify", nil)
		req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
		w := httptest.NewRecorder()
		server.GetHandler().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

// TestServer_NoMetricsEndpoint verifies the API router does not expose /metrics.
func TestServer_NoMetricsEndpoint(t *testing.T) {
	server, _ := setupRouterServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	server.GetHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
