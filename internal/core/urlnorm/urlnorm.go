// Package urlnorm canonicalizes links so equivalent URLs dedupe to one key
// Rules
// 1 resolve against base when raw is relative
// 2 force https and lowercase host, drop default ports
// 3 strip fragment and tracking query keys (utm_*, gclid, fbclid)
// 4 remaining query keys are re-encoded in sorted order
// 5 trailing slash removed from the path, root stays "/"
package urlnorm

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// trackingKeys are removed regardless of case
var trackingKeys = map[string]struct{}{
	"gclid":  {},
	"fbclid": {},
}

// Normalize returns the canonical form of raw resolved against base
// ok is false when raw cannot be parsed or does not point at an http(s) host
func Normalize(raw, base string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	u := ref
	if b := strings.TrimSpace(base); b != "" && !ref.IsAbs() {
		bu, err := url.Parse(b)
		if err != nil {
			return "", false
		}
		u = bu.ResolveReference(ref)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	case "":
		// protocol relative links only make sense with a host
		if u.Host == "" {
			return "", false
		}
	default:
		return "", false
	}
	if u.Opaque != "" || u.Host == "" {
		return "", false
	}

	u.Scheme = "https"
	u.Host = canonicalHost(u.Host)
	if u.Host == "" {
		return "", false
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.ForceQuery = false

	q, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return "", false
	}
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") {
			delete(q, k)
			continue
		}
		if _, drop := trackingKeys[lk]; drop {
			delete(q, k)
		}
	}
	u.RawQuery = q.Encode()

	p := u.EscapedPath()
	for len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimSuffix(p, "/")
	}
	if p == "" {
		p = "/"
	}
	unescaped, err := url.PathUnescape(p)
	if err != nil {
		return "", false
	}
	u.Path = unescaped
	u.RawPath = p

	return u.String(), true
}

// MustNormalize is Normalize for trusted inputs such as seeds in tests
func MustNormalize(raw string) string {
	s, ok := Normalize(raw, "")
	if !ok {
		panic("urlnorm: cannot normalize " + raw)
	}
	return s
}

func canonicalHost(h string) string {
	h = strings.ToLower(strings.TrimSuffix(h, "."))
	host, port, err := net.SplitHostPort(h)
	if err != nil {
		return h
	}
	if port == "443" || port == "80" || port == "" {
		if strings.Contains(host, ":") {
			return "[" + host + "]"
		}
		return host
	}
	return h
}

// Host returns the lowercased hostname of u without port, empty when unparsable
func Host(u string) string {
	pu, err := url.Parse(u)
	if err != nil {
		return ""
	}
	return strings.ToLower(pu.Hostname())
}

// SameSite reports whether a and b share a registrable domain (eTLD+1)
// hosts that have no public suffix (localhost, raw IPs) must match exactly
func SameSite(a, b string) bool {
	ha, hb := Host(a), Host(b)
	if ha == "" || hb == "" {
		return false
	}
	if ha == hb {
		return true
	}
	if net.ParseIP(ha) != nil || net.ParseIP(hb) != nil {
		return false
	}
	ra, errA := publicsuffix.EffectiveTLDPlusOne(ha)
	rb, errB := publicsuffix.EffectiveTLDPlusOne(hb)
	if errA != nil || errB != nil {
		return false
	}
	return ra == rb
}

// Path returns the escaped path of u, "/" when empty or unparsable
func Path(u string) string {
	pu, err := url.Parse(u)
	if err != nil || pu.EscapedPath() == "" {
		return "/"
	}
	return pu.EscapedPath()
}
