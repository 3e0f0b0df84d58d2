// Package network resolves the client address of a request.
package network

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the originating client address. Behind a reverse proxy
// the first X-Forwarded-For entry wins, then X-Real-IP; otherwise the host
// part of RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
