package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/angelmondragon/bookverse-backend/internal/events"
)

const maxUserAgentLength = 512

// ClientInfo stamps the caller's address and user agent on the context so
// analytics events can carry them.
func ClientInfo() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ua := strings.TrimSpace(r.UserAgent())
			if len(ua) > maxUserAgentLength {
				ua = ua[:maxUserAgentLength]
			}
			ctx := events.WithClientInfo(r.Context(), events.ClientInfo{IPAddress: clientIP(r), UserAgent: ua})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// clientIP prefers the first valid X-Forwarded-For hop, then X-Real-IP, then
// the socket peer. Header values that are not IP addresses are ignored.
func clientIP(r *http.Request) string {
	if first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); first != "" {
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr.String()
		}
	}
	if addr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return addr.String()
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
