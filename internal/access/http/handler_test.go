package http

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"errors"
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
	"github.com/stretchr/testify/require"

	accessDomain "github.com/allisson/sentinel/internal/access/domain"
	"github.com/allisson/sentinel/internal/access/http/dto"
	"github.com/allisson/sentinel/internal/access/usecase/mocks"
	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	authHTTP "github.com/allisson/sentinel/internal/auth/http"
	"github.com/allisson/sentinel/internal/httputil"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupTestHandler(t *testing.T) (*AccessHandler, *mocks.MockAccessUseCase) {
	t.Helper()
	uc := &mocks.MockAccessUseCase{}
	return NewAccessHandler(uc, slog.New(slog.NewTextHandler(io.Discard, nil))), uc
}

func createTestContext(body any, session *authDomain.Session) (*gin.Context, *httptest.ResponseRecorder) {
	raw, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/access/check", bytes.NewReader(raw))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.Header.Set("User-Agent", "badge-reader/2.1")
	c.Request.RemoteAddr = "10.1.2.3:5555"
	if session != nil {
		c.Request = c.Request.WithContext(authHTTP.WithSession(c.Request.Context(), session))
	}
	return c, w
}

func testSession() *authDomain.Session {
	return &authDomain.Session{
		Principal: authDomain.Principal{
			UserID:     uuid.Must(uuid.NewV7()),
			SessionID:  "sid",
			TrustLevel: authDomain.TrustStandard,
		},
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestAccessHandler_CheckHandler(t *testing.T) {
	t.Run("Success_Denied", func(t *testing.T) {
		handler, uc := setupTestHandler(t)
		session := testSession()
		c, w := createTestContext(map[string]any{
			"resource_type": "document",
			"resource_id":   "doc-1",
			"action":        "read",
			"checks":        []string{"mac", "RBAC"},
			"device_id":     "laptop-7",
			"attributes":    map[string]any{"badge_zone": "B"},
		}, session)
		c.Request.TLS = &tls.ConnectionState{}

		decision := &accessDomain.Decision{
			DeniedBy:  accessDomain.ModelRBAC,
			Reason:    "no active role grants document:read",
			Evaluated: []accessDomain.Model{accessDomain.ModelRBAC},
			DecidedAt: time.Now().UTC(),
		}
		uc.On("CheckAccess", mock.Anything, mock.MatchedBy(func(req *accessDomain.Request) bool {
			return req.Subject.UserID == session.Principal.UserID &&
				req.ResourceType == "document" &&
				req.Action == "read" &&
				len(req.Checks) == 2 &&
				req.Checks[0] == accessDomain.ModelMAC &&
				req.Context.TLS &&
				req.Context.ClientIP == "10.1.2.3" &&
				req.Context.UserAgent == "badge-reader/2.1" &&
				req.Context.DeviceID == "laptop-7" &&
				req.Context.Attributes.Get("badge_zone").String() == "B"
		})).Return(decision, nil).Once()

		handler.CheckHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp dto.DecisionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Allowed)
		assert.Equal(t, "RBAC", resp.DeniedBy)
		assert.Equal(t, []string{"RBAC"}, resp.Evaluated)
		uc.AssertExpectations(t)
	})

	t.Run("Error_UnknownModel", func(t *testing.T) {
		handler, uc := setupTestHandler(t)
		c, w := createTestContext(map[string]any{
			"resource_type": "document",
			"resource_id":   "doc-1",
			"action":        "read",
			"checks":        []string{"LDAP"},
		}, testSession())

		handler.CheckHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		uc.AssertNotCalled(t, "CheckAccess", mock.Anything, mock.Anything)
	})

	t.Run("Error_MissingAction", func(t *testing.T) {
		handler, _ := setupTestHandler(t)
		c, w := createTestContext(map[string]any{"resource_type": "document", "resource_id": "doc-1"}, testSession())

		handler.CheckHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_EvaluationFault", func(t *testing.T) {
		handler, uc := setupTestHandler(t)
		c, w := createTestContext(map[string]any{
			"resource_type": "document",
			"resource_id":   "doc-1",
			"action":        "read",
		}, testSession())
		uc.On("CheckAccess", mock.Anything, mock.Anything).
			Return(&accessDomain.Decision{DeniedBy: accessDomain.ModelMAC},
				errors.Join(accessDomain.ErrEvaluationFailed, errors.New("db down"))).Once()

		handler.CheckHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("Success_AuditFailureKeepsDecision", func(t *testing.T) {
		handler, uc := setupTestHandler(t)
		c, w := createTestContext(map[string]any{
			"resource_type": "document",
			"resource_id":   "doc-1",
			"action":        "read",
		}, testSession())
		uc.On("CheckAccess", mock.Anything, mock.Anything).
			Return(&accessDomain.Decision{
				Allowed:   true,
				Reason:    "access granted",
				Evaluated: []accessDomain.Model{accessDomain.ModelRBAC},
			}, errors.Join(accessDomain.ErrAuditEmission, errors.New("outbox insert failed"))).Once()

		handler.CheckHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Warning"), "audit trail")
		var resp dto.DecisionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Allowed)
		assert.Equal(t, "access granted", resp.Reason)
	})

	t.Run("Error_EvaluationAndAuditFault", func(t *testing.T) {
		handler, uc := setupTestHandler(t)
		c, w := createTestContext(map[string]any{
			"resource_type": "document",
			"resource_id":   "doc-1",
			"action":        "read",
		}, testSession())
		uc.On("CheckAccess", mock.Anything, mock.Anything).
			Return(&accessDomain.Decision{DeniedBy: accessDomain.ModelMAC},
				errors.Join(accessDomain.ErrEvaluationFailed, accessDomain.ErrAuditEmission)).Once()

		handler.CheckHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Empty(t, w.Header().Get("Warning"))
	})

	t.Run("Error_Unauthenticated", func(t *testing.T) {
		handler, uc := setupTestHandler(t)
		c, w := createTestContext(map[string]any{
			"resource_type": "document",
			"resource_id":   "doc-1",
			"action":        "read",
		}, nil)
		uc.On("CheckAccess", mock.Anything, mock.MatchedBy(func(req *accessDomain.Request) bool {
			return req.Subject == nil
		})).Return(nil, authDomain.ErrInvalidToken).Once()

		handler.CheckHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAccessHandler_ForwardedHeaders(t *testing.T) {
	body := []byte(`{"resource_type":"door","resource_id":"lab-7","action":"enter"}`)

	serve := func(t *testing.T, trustedProxies string) *accessDomain.RequestContext {
		t.Helper()
		handler, uc := setupTestHandler(t)

		var seen accessDomain.RequestContext
		uc.On("CheckAccess", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				seen = args.Get(1).(*accessDomain.Request).Context
			}).
			Return(&accessDomain.Decision{Allowed: true}, nil).Once()

		trusted, err := httputil.ParseTrustedProxies(trustedProxies)
		require.NoError(t, err)

		router := gin.New()
		require.NoError(t, router.SetTrustedProxies(httputil.ProxyStrings(trusted)))
		router.Use(httputil.ForwardedProtoMiddleware(trusted))
		router.POST("/v1/access/check", handler.CheckHandler)

		req := httptest.NewRequest(http.MethodPost, "/v1/access/check", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", "10.0.0.7")
		req.Header.Set("X-Forwarded-Proto", "https")
		req.RemoteAddr = "203.0.113.9:41000"

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		uc.AssertExpectations(t)
		return &seen
	}

	t.Run("Success_UntrustedPeerCannotSpoof", func(t *testing.T) {
		ctx := serve(t, "")
		assert.Equal(t, "203.0.113.9", ctx.ClientIP)
		assert.False(t, ctx.TLS)
	})

	t.Run("Success_TrustedProxyForwards", func(t *testing.T) {
		ctx := serve(t, "203.0.113.0/24")
		assert.Equal(t, "10.0.0.7", ctx.ClientIP)
		assert.True(t, ctx.TLS)
	})
}
