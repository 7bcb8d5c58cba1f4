// Package strings holds helpers for optional text columns and route prefixes
package strings

import std "strings"

// MustPrefix normalizes a mount prefix like /imports to a single leading slash
// and no trailing slash. Panics when nothing is left after trimming
func MustPrefix(s string) string {
	s = "/" + std.Trim(std.TrimSpace(s), " /")
	if s == "/" {
		panic("root path is required")
	}
	return s
}

// Ptr returns a pointer to s, or nil if s is empty
func Ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// SQLNull returns nil for a blank s so the column stores NULL
func SQLNull(s string) any {
	if std.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// SQLNullPtr is SQLNull for optional strings
func SQLNullPtr(ps *string) any {
	if ps == nil {
		return nil
	}
	return SQLNull(*ps)
}
