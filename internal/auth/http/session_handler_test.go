package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	"github.com/allisson/sentinel/internal/auth/http/dto"
	"github.com/allisson/sentinel/internal/auth/usecase/mocks"
)

func setupSessionHandler(t *testing.T) (*SessionHandler, *mocks.MockAuthUseCase) {
	t.Helper()
	authUC := &mocks.MockAuthUseCase{}
	return NewSessionHandler(authUC, createTestLogger()), authUC
}

func createSessionContext(
	method, path string,
	body []byte,
	session *authDomain.Session,
) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	if session != nil {
		c.Request = c.Request.WithContext(WithSession(c.Request.Context(), session))
	}
	return c, w
}

func TestSessionHandler_GetCurrentHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, _ := setupSessionHandler(t)
		session := testSession(true)
		c, w := createSessionContext(http.MethodGet, "/v1/sessions/current", nil, session)

		handler.GetCurrentHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp dto.SessionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, session.Principal.SessionID, resp.SessionID)
		assert.True(t, resp.IsAdmin)
	})

	t.Run("Error_NoSession", func(t *testing.T) {
		handler, _ := setupSessionHandler(t)
		c, w := createSessionContext(http.MethodGet, "/v1/sessions/current", nil, nil)

		handler.GetCurrentHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestSessionHandler_RevokeCurrentHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, authUC := setupSessionHandler(t)
		session := testSession(false)
		c, w := createSessionContext(http.MethodPost, "/v1/sessions/revoke", nil, session)
		authUC.On("RevokeSession", mock.Anything, session).Return(nil).Once()

		handler.RevokeCurrentHandler(c)

		assert.Equal(t, http.StatusNoContent, c.Writer.Status())
		assert.Empty(t, w.Body.String())
		authUC.AssertExpectations(t)
	})

	t.Run("Error_StoreUnavailable", func(t *testing.T) {
		handler, authUC := setupSessionHandler(t)
		session := testSession(false)
		c, w := createSessionContext(http.MethodPost, "/v1/sessions/revoke", nil, session)
		authUC.On("RevokeSession", mock.Anything, session).Return(authDomain.ErrSessionStore).Once()

		handler.RevokeCurrentHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestSessionHandler_RevokeHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, authUC := setupSessionHandler(t)
		session := testSession(true)
		body, _ := json.Marshal(dto.RevokeSessionRequest{SessionID: "sid-9"})
		c, _ := createSessionContext(http.MethodPost, "/v1/sessions/revoke-by-id", body, session)
		authUC.On("RevokeSessionByID", mock.Anything, &session.Principal, "sid-9").Return(nil).Once()

		handler.RevokeHandler(c)

		assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	})

	t.Run("Error_Validation", func(t *testing.T) {
		handler, _ := setupSessionHandler(t)
		body, _ := json.Marshal(dto.RevokeSessionRequest{SessionID: "  "})
		c, w := createSessionContext(http.MethodPost, "/v1/sessions/revoke-by-id", body, testSession(true))

		handler.RevokeHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_Forbidden", func(t *testing.T) {
		handler, authUC := setupSessionHandler(t)
		session := testSession(false)
		body, _ := json.Marshal(dto.RevokeSessionRequest{SessionID: "sid-9"})
		c, w := createSessionContext(http.MethodPost, "/v1/sessions/revoke-by-id", body, session)
		authUC.On("RevokeSessionByID", mock.Anything, &session.Principal, "sid-9").
			Return(authDomain.ErrAdminRequired).Once()

		handler.RevokeHandler(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
