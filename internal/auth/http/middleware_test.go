package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	"github.com/allisson/sentinel/internal/auth/usecase/mocks"
)

// TestMain sets Gin to test mode for all tests in this package.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSession(isAdmin bool) *authDomain.Session {
	return &authDomain.Session{
		Principal: authDomain.Principal{
			UserID:     uuid.Must(uuid.NewV7()),
			SessionID:  uuid.Must(uuid.NewV7()).String(),
			TrustLevel: authDomain.TrustStandard,
			IsAdmin:    isAdmin,
		},
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

// principalEcho responds with the authenticated user ID or "anonymous".
func principalEcho(c *gin.Context) {
	if p := GetPrincipal(c.Request.Context()); p != nil {
		c.String(http.StatusOK, p.UserID.String())
		return
	}
	c.String(http.StatusOK, "anonymous")
}

func TestAuthenticationMiddleware(t *testing.T) {
	logger := createTestLogger()

	newRouter := func(authUC *mocks.MockAuthUseCase) *gin.Engine {
		router := gin.New()
		router.GET("/protected", AuthenticationMiddleware(authUC, logger), principalEcho)
		return router
	}

	t.Run("Success_ValidToken", func(t *testing.T) {
		authUC := &mocks.MockAuthUseCase{}
		session := testSession(false)
		authUC.On("Authenticate", mock.Anything, "tok-123").Return(session, nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer tok-123")
		newRouter(authUC).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, session.Principal.UserID.String(), w.Body.String())
		authUC.AssertExpectations(t)
	})

	t.Run("Success_CaseInsensitiveScheme", func(t *testing.T) {
		authUC := &mocks.MockAuthUseCase{}
		authUC.On("Authenticate", mock.Anything, "tok-123").Return(testSession(false), nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "bEaReR tok-123")
		newRouter(authUC).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Error_MissingHeader", func(t *testing.T) {
		authUC := &mocks.MockAuthUseCase{}

		w := httptest.NewRecorder()
		newRouter(authUC).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		authUC.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
	})

	t.Run("Error_MalformedHeader", func(t *testing.T) {
		authUC := &mocks.MockAuthUseCase{}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		newRouter(authUC).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Error_RevokedSession", func(t *testing.T) {
		authUC := &mocks.MockAuthUseCase{}
		authUC.On("Authenticate", mock.Anything, "tok-123").Return(nil, authDomain.ErrSessionRevoked).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer tok-123")
		newRouter(authUC).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Error_StoreUnavailable", func(t *testing.T) {
		authUC := &mocks.MockAuthUseCase{}
		authUC.On("Authenticate", mock.Anything, "tok-123").Return(nil, authDomain.ErrSessionStore).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer tok-123")
		newRouter(authUC).ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestOptionalAuthenticationMiddleware(t *testing.T) {
	logger := createTestLogger()

	newRouter := func(authUC *mocks.MockAuthUseCase) *gin.Engine {
		router := gin.New()
		router.POST("/share", OptionalAuthenticationMiddleware(authUC, logger), principalEcho)
		return router
	}

	t.Run("Success_Anonymous", func(t *testing.T) {
		authUC := &mocks.MockAuthUseCase{}

		w := httptest.NewRecorder()
		newRouter(authUC).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/share", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "anonymous", w.Body.String())
	})

	t.Run("Success_Authenticated", func(t *testing.T) {
		authUC := &mocks.MockAuthUseCase{}
		session := testSession(false)
		authUC.On("Authenticate", mock.Anything, "tok").Return(session, nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/share", nil)
		req.Header.Set("Authorization", "Bearer tok")
		newRouter(authUC).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, session.Principal.UserID.String(), w.Body.String())
	})

	t.Run("Error_InvalidTokenIsNotDowngraded", func(t *testing.T) {
		authUC := &mocks.MockAuthUseCase{}
		authUC.On("Authenticate", mock.Anything, "tok").Return(nil, authDomain.ErrInvalidToken).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/share", nil)
		req.Header.Set("Authorization", "Bearer tok")
		newRouter(authUC).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireAdminMiddleware(t *testing.T) {
	logger := createTestLogger()

	newRouter := func(session *authDomain.Session) *gin.Engine {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			if session != nil {
				c.Request = c.Request.WithContext(WithSession(c.Request.Context(), session))
			}
			c.Next()
		})
		router.GET("/admin", RequireAdminMiddleware(logger), principalEcho)
		return router
	}

	t.Run("Success_Admin", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(testSession(true)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Error_NotAdmin", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(testSession(false)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Error_NoSession", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
