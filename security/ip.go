package security

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the client address used in audit events.
//
// With trustProxy set, the app is assumed to sit behind exactly one reverse proxy:
// the rightmost X-Forwarded-For entry (the peer the proxy saw) wins, then X-Real-IP.
// Entries further left are client-controlled and ignored.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			if ip := strings.TrimSpace(parts[len(parts)-1]); net.ParseIP(ip) != nil {
				return ip
			}
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(ip) != nil {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
