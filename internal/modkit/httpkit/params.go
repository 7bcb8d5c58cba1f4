package httpkit

import (
	"net/http"

	phttp "supplysync/internal/platform/net/http"

	"github.com/google/uuid"
)

// Param returns the named route parameter
func Param(r *http.Request, name string) string { return phttp.Param(r, name) }

// UUIDParam parses the named route parameter as a uuid or returns invalid argument
func UUIDParam(r *http.Request, name string) (uuid.UUID, error) { return phttp.UUIDParam(r, name) }

// Int64Param parses the named route parameter as a positive id or returns invalid argument
func Int64Param(r *http.Request, name string) (int64, error) { return phttp.Int64Param(r, name) }

// BoolQuery reads a boolean query parameter with a default
func BoolQuery(r *http.Request, name string, def bool) bool { return phttp.BoolQuery(r, name, def) }
