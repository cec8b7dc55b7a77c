// auth.go implements optional bearer-token authentication for the
// Streamable HTTP transport.
//
// Design: a single shared secret compared in constant time. When no token
// is configured the middleware is a no-op, matching local development use
// where the server is only reachable on localhost. Rejection happens
// before the MCP handler, so an unauthenticated request never reaches a
// tool and never touches the working copy.

package mcp

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// bearerAuth returns middleware enforcing "Authorization: Bearer <token>".
// With an empty token it passes every request through unchanged.
func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := extractBearer(r.Header.Get("Authorization"))
			if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractBearer returns the token part of an Authorization header, or ""
// when the header is absent or not a Bearer scheme.
func extractBearer(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return header[len(prefix):]
}
