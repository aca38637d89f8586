package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTrustedProxies(t *testing.T) {
	t.Run("Success_Empty", func(t *testing.T) {
		prefixes, err := ParseTrustedProxies("")
		require.NoError(t, err)
		assert.Empty(t, prefixes)
		assert.Nil(t, ProxyStrings(prefixes))
	})

	t.Run("Success_AddressesAndRanges", func(t *testing.T) {
		prefixes, err := ParseTrustedProxies(" 10.0.0.1 , 192.168.10.7/24,,::1")
		require.NoError(t, err)
		assert.Equal(t, []string{"10.0.0.1/32", "192.168.10.0/24", "::1/128"}, ProxyStrings(prefixes))
	})

	t.Run("Error_InvalidEntry", func(t *testing.T) {
		_, err := ParseTrustedProxies("10.0.0.0/33")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid trusted proxy")

		_, err = ParseTrustedProxies("proxy.internal")
		require.Error(t, err)
	})
}

func TestForwardedProtoMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	trusted, err := ParseTrustedProxies("172.16.0.0/12")
	require.NoError(t, err)

	serve := func(remoteAddr string) string {
		var seen string
		router := gin.New()
		router.Use(ForwardedProtoMiddleware(trusted))
		router.GET("/", func(c *gin.Context) {
			seen = c.GetHeader("X-Forwarded-Proto")
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remoteAddr
		req.Header.Set("X-Forwarded-Proto", "https")
		router.ServeHTTP(httptest.NewRecorder(), req)
		return seen
	}

	t.Run("Success_TrustedPeerKeepsHeader", func(t *testing.T) {
		assert.Equal(t, "https", serve("172.20.1.5:40000"))
	})

	t.Run("Success_UntrustedPeerLosesHeader", func(t *testing.T) {
		assert.Empty(t, serve("203.0.113.9:40000"))
	})
}
