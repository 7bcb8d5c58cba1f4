package httpkit

import (
	"net/http"

	perr "supplysync/internal/platform/errors"
	pnet "supplysync/internal/platform/net"
)

// User returns the caller the auth middleware admitted: the token subject or
// the operator behind the session cookie
func User(r *http.Request) (string, error) {
	if uid := pnet.UserID(r.Context()); uid != "" {
		return uid, nil
	}
	return "", perr.Unauthorizedf("missing credentials")
}
