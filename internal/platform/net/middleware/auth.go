package middleware

import (
	"net/http"

	pnet "supplysync/internal/platform/net"
)

// AuthPort resolves the caller behind a request
type AuthPort interface {
	// Parse returns the caller id or an error when the request is not authorized
	Parse(r *http.Request) (userID string, err error)
}

// Auth rejects requests the port refuses with the error envelope and stamps the
// caller on context. A nil port lets everything through
func Auth(p AuthPort) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			uid, err := p.Parse(r)
			if err != nil {
				status, env := pnet.Fail(r.Context(), err)
				pnet.WriteJSON(w, status, env)
				return
			}
			next.ServeHTTP(w, r.WithContext(pnet.WithUser(r.Context(), uid)))
		})
	}
}
