// Package integration provides end-to-end tests for the Sentinel API against PostgreSQL, MySQL
// and Redis.
package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/allisson/sentinel/internal/app"
	authDomain "github.com/allisson/sentinel/internal/auth/domain"
	"github.com/allisson/sentinel/internal/config"
	"github.com/allisson/sentinel/internal/testutil"
)

//nolint:gosec // test signing key
const testAuditSigningKey = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="

// integrationTestContext holds the running API and the tokens of the test principals.
type integrationTestContext struct {
	container  *app.Container
	db         *sql.DB
	server     *httptest.Server
	dbDriver   string
	adminID    uuid.UUID
	adminToken string
	userID     uuid.UUID
	userToken  string
}

// setupIntegrationTest starts the API on top of a migrated database and a flushed Redis.
func setupIntegrationTest(t *testing.T, dbDriver string) *integrationTestContext {
	t.Helper()

	gin.SetMode(gin.TestMode)

	var db *sql.DB
	var dsn string
	if dbDriver == "postgres" {
		db = testutil.SetupPostgresDB(t)
		dsn = testutil.GetPostgresTestDSN()
	} else {
		db = testutil.SetupMySQLDB(t)
		dsn = testutil.GetMySQLTestDSN()
	}
	testutil.SetupRedis(t)

	cfg := &config.Config{
		DBDriver:                dbDriver,
		DBConnectionString:      dsn,
		DBMaxOpenConnections:    10,
		DBMaxIdleConnections:    5,
		DBConnMaxLifetime:       time.Hour,
		ServerHost:              "localhost",
		ServerPort:              8080,
		LogLevel:                "error",
		JWTSecret:               "integration-test-secret-with-32-bytes!",
		JWTIssuer:               "sentinel",
		JWTAudience:             "sentinel-api",
		AuthTokenExpiration:     time.Hour,
		AuthMaxTokenExpiration:  24 * time.Hour,
		RedisAddr:               testutil.GetRedisTestAddr(),
		AuditSigningKey:         testAuditSigningKey,
		ClearanceReviewInterval: 365 * 24 * time.Hour,
	}

	container := app.NewContainer(cfg)

	authUseCase, err := container.AuthUseCase()
	require.NoError(t, err, "failed to get auth use case")

	issue := func(input *authDomain.IssueTokenInput) string {
		output, err := authUseCase.IssueToken(context.Background(), input)
		require.NoError(t, err, "failed to issue token")
		return output.Token
	}

	adminID := uuid.New()
	userID := uuid.New()
	adminToken := issue(&authDomain.IssueTokenInput{
		UserID:      adminID,
		Email:       "security-officer@example.com",
		TrustLevel:  authDomain.TrustElevated,
		IsAdmin:     true,
		MFAVerified: true,
	})
	userToken := issue(&authDomain.IssueTokenInput{
		UserID:     userID,
		Email:      "researcher@example.com",
		TrustLevel: authDomain.TrustStandard,
	})

	httpSrv, err := container.HTTPServer()
	require.NoError(t, err, "failed to get HTTP server")

	handler := httpSrv.GetHandler()
	require.NotNil(t, handler, "handler should not be nil after SetupRouter")

	return &integrationTestContext{
		container:  container,
		db:         db,
		server:     httptest.NewServer(handler),
		dbDriver:   dbDriver,
		adminID:    adminID,
		adminToken: adminToken,
		userID:     userID,
		userToken:  userToken,
	}
}

// teardownIntegrationTest cleans up all resources.
func teardownIntegrationTest(t *testing.T, ctx *integrationTestContext) {
	t.Helper()

	if ctx.server != nil {
		ctx.server.Close()
	}

	if ctx.container != nil {
		if err := ctx.container.Shutdown(context.Background()); err != nil {
			t.Logf("Warning: container shutdown error: %v", err)
		}
	}

	if ctx.db != nil {
		testutil.TeardownDB(t, ctx.db)
	}
}

// makeRequest performs an HTTP request with an optional bearer token and returns the
// response and its body.
func (ctx *integrationTestContext) makeRequest(
	t *testing.T,
	method, path string,
	body any,
	token string,
) (*http.Response, []byte) {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, ctx.server.URL+path, bodyReader)
	require.NoError(t, err, "failed to create request")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	//nolint:gosec // controlled test environment with localhost URLs
	resp, err := client.Do(req)
	require.NoError(t, err, "failed to perform request")

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	if closeErr := resp.Body.Close(); closeErr != nil {
		t.Logf("Warning: failed to close response body: %v", closeErr)
	}

	return resp, respBody
}

// databases lists the drivers every end-to-end test runs against.
var databases = []struct {
	name   string
	driver string
}{
	{name: "PostgreSQL", driver: "postgres"},
	{name: "MySQL", driver: "mysql"},
}
