package httpkit

import (
	"crypto/subtle"
	"net/http"
	"strings"

	perrs "supplysync/internal/platform/errors"
)

// TokenFunc resolves a credential to a caller id
type TokenFunc func(token string) (userID string, err error)

// Port implements middleware.AuthPort. A bearer header is tried first, then the
// operator session cookie when one is configured
type Port struct {
	bearer TokenFunc
	cookie string
	sessFn TokenFunc
}

// PortOption configures a Port
type PortOption func(*Port)

// WithCookie accepts an operator session cookie named name, resolved by fn
func WithCookie(name string, fn TokenFunc) PortOption {
	return func(p *Port) {
		p.cookie = name
		p.sessFn = fn
	}
}

// NewPortFunc builds a Port from a bearer parser
func NewPortFunc(fn TokenFunc, opts ...PortOption) *Port {
	p := &Port{bearer: fn}
	for _, o := range opts {
		o(p)
	}
	return p
}

// StaticToken accepts exactly secret and reports caller as the user id.
// An empty secret accepts nothing
func StaticToken(secret, caller string) TokenFunc {
	return func(token string) (string, error) {
		if secret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			return "", perrs.Unauthorizedf("invalid bearer token")
		}
		return caller, nil
	}
}

// Parse returns the caller id or unauthorized
func (p *Port) Parse(r *http.Request) (string, error) {
	if raw, ok := bearer(r); ok {
		if p.bearer == nil {
			return "", perrs.Unauthorizedf("invalid bearer token")
		}
		uid, err := p.bearer(raw)
		if err != nil {
			return "", perrs.Unauthorizedf("invalid bearer token")
		}
		return uid, nil
	}
	if p.cookie != "" && p.sessFn != nil {
		if c, err := r.Cookie(p.cookie); err == nil && c.Value != "" {
			uid, err := p.sessFn(c.Value)
			if err != nil {
				return "", perrs.Unauthorizedf("invalid operator session")
			}
			return uid, nil
		}
	}
	return "", perrs.Unauthorizedf("missing credentials")
}

func bearer(r *http.Request) (string, bool) {
	s := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "bearer"
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	raw := strings.TrimSpace(s[len(prefix):])
	return raw, raw != ""
}
