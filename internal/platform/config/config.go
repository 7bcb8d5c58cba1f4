// Package config reads namespaced settings from environment variables
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"supplysync/internal/platform/logger"
)

// Conf is a namespaced view over environment variables. New() reads keys as
// given; Prefix("CRAWLER_") scopes a component to its own keys
type Conf struct{ prefix string }

// New creates a root Conf (no prefix)
func New() Conf { return Conf{} }

// Prefix creates a child Conf with an additional prefix, e.g. cfg.Prefix("DIFF_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// key composes the fully-qualified env var name
func (c Conf) key(k string) string { return c.prefix + k }

func (c Conf) raw(key string) string { return strings.TrimSpace(os.Getenv(c.key(key))) }

// must parses a required key and panics with hint when it is missing or invalid
func must[T any](c Conf, key string, parse func(string) (T, error), hint string) T {
	s := c.raw(key)
	if s == "" {
		logger.Get().Panic().Str("key", c.key(key)).Msg("missing required env")
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Panic().Err(err).Str("key", c.key(key)).Str("value", s).Msg(hint)
	}
	return v
}

// may parses an optional key; an invalid value is logged and def is used
func may[T any](c Conf, key string, def T, parse func(string) (T, error)) T {
	s := c.raw(key)
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Err(err).Str("key", c.key(key)).Str("value", s).
			Str("default", fmt.Sprint(def)).Msg("invalid value; using default")
		return def
	}
	return v
}

func parseString(s string) (string, error) { return s, nil }

func parseURL(s string) (*url.URL, error) {
	u, err := url.Parse(s)
	if err == nil && !u.IsAbs() {
		err = errors.New("url is not absolute")
	}
	return u, err
}

func parsePort(s string) (string, error) {
	p, err := strconv.Atoi(s)
	if err == nil && (p < 1 || p > 65535) {
		err = errors.New("port out of range")
	}
	return ":" + s, err
}

// MustString panics if the given key is missing or empty
func (c Conf) MustString(key string) string {
	return must(c, key, parseString, "missing required env")
}

// MustInt panics if the given key is missing, empty, or not an int
func (c Conf) MustInt(key string) int { return must(c, key, strconv.Atoi, "invalid int value") }

// MustBool panics if the given key is missing, empty, or not a bool
func (c Conf) MustBool(key string) bool {
	return must(c, key, strconv.ParseBool, "invalid bool value")
}

// MustDuration panics if the given key is missing, empty, or not a duration like 250ms or 2h
func (c Conf) MustDuration(key string) time.Duration {
	return must(c, key, time.ParseDuration, "invalid duration (e.g., 250ms, 2s, 1h)")
}

// MustURL panics if the given key is missing, empty, or not an absolute URL
func (c Conf) MustURL(key string) *url.URL { return must(c, key, parseURL, "invalid absolute URL") }

// MustPort returns a listen addr like ":4000" for a port in 1..65535
func (c Conf) MustPort(key string) string {
	return must(c, key, parsePort, "invalid TCP port; expected 1..65535")
}

// Require panics unless every key is set
func (c Conf) Require(keys ...string) {
	for _, k := range keys {
		if c.raw(k) == "" {
			logger.Get().Panic().Str("key", c.key(k)).Msg("missing required env")
		}
	}
}

// MayString returns the value or def if missing/empty
func (c Conf) MayString(key, def string) string { return may(c, key, def, parseString) }

// MayInt returns the value or def if missing/empty/invalid
func (c Conf) MayInt(key string, def int) int { return may(c, key, def, strconv.Atoi) }

// MayBool returns the value or def if missing/empty/invalid
func (c Conf) MayBool(key string, def bool) bool { return may(c, key, def, strconv.ParseBool) }

// MayDuration returns the value or def if missing/empty/invalid
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return may(c, key, def, time.ParseDuration)
}

// MayCSV splits a comma-separated value, dropping blanks; def if nothing is left
func (c Conf) MayCSV(key string, def []string) []string {
	var out []string
	for p := range strings.SplitSeq(c.raw(key), ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns the allowed spelling matching the value case-insensitively,
// or def when unset. Any other value panics
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	if v == "" {
		return v
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return a
		}
	}
	logger.Get().Panic().Str("key", c.key(key)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return ""
}
