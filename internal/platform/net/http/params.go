package http

import (
	stdhttp "net/http"
	"strconv"
	"strings"

	perr "supplysync/internal/platform/errors"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Param returns the named route parameter, trimmed
func Param(r *stdhttp.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(r, name))
}

// UUIDParam parses the named route parameter as a uuid
func UUIDParam(r *stdhttp.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(Param(r, name))
	if err != nil {
		return uuid.Nil, perr.WithField(perr.InvalidArgf("%s must be a uuid", name), name)
	}
	return id, nil
}

// Int64Param parses the named route parameter as a positive integer
func Int64Param(r *stdhttp.Request, name string) (int64, error) {
	n, err := strconv.ParseInt(Param(r, name), 10, 64)
	if err != nil || n <= 0 {
		return 0, perr.WithField(perr.InvalidArgf("%s must be a positive integer", name), name)
	}
	return n, nil
}

// BoolQuery reads a boolean query parameter; absent or unparsable values yield def
func BoolQuery(r *stdhttp.Request, name string, def bool) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}
