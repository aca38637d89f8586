package httputil

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
)

// ParseTrustedProxies parses a comma-separated list of IP addresses and CIDR ranges.
// Blank entries are ignored and an empty list trusts no proxy.
func ParseTrustedProxies(raw string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, part := range strings.Split(raw, ",") {
		entry := strings.TrimSpace(part)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// ProxyStrings formats prefixes for gin's Engine.SetTrustedProxies.
func ProxyStrings(prefixes []netip.Prefix) []string {
	if len(prefixes) == 0 {
		return nil
	}
	out := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		out = append(out, p.String())
	}
	return out
}

// ForwardedProtoMiddleware removes X-Forwarded-Proto unless the direct peer is one of the
// trusted proxies, so only a terminating proxy can vouch for TLS.
func ForwardedProtoMiddleware(trusted []netip.Prefix) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-Forwarded-Proto") != "" && !isTrustedPeer(c.RemoteIP(), trusted) {
			c.Request.Header.Del("X-Forwarded-Proto")
		}
		c.Next()
	}
}

func isTrustedPeer(remoteIP string, trusted []netip.Prefix) bool {
	addr, err := netip.ParseAddr(remoteIP)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
