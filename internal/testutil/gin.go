package testutil

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	authHTTP "github.com/allisson/sentinel/internal/auth/http"
)

// NewSession returns an authenticated session for handler tests.
func NewSession(isAdmin bool) *authDomain.Session {
	return &authDomain.Session{
		Principal: authDomain.Principal{
			UserID:     uuid.Must(uuid.NewV7()),
			SessionID:  uuid.Must(uuid.NewV7()).String(),
			Email:      "tester@example.com",
			TrustLevel: authDomain.TrustStandard,
			IsAdmin:    isAdmin,
		},
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

// NewGinContext builds a gin test context for target. A non-nil body is sent as JSON and a
// non-nil session is attached the way the authentication middleware does.
func NewGinContext(
	method, target string,
	body any,
	session *authDomain.Session,
	params ...gin.Param,
) (*gin.Context, *httptest.ResponseRecorder) {
	var raw []byte
	if body != nil {
		raw, _ = json.Marshal(body)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, bytes.NewReader(raw))
	c.Request.Header.Set("Content-Type", "application/json")
	if session != nil {
		c.Request = c.Request.WithContext(authHTTP.WithSession(c.Request.Context(), session))
	}
	c.Params = params
	return c, w
}
