package middleware

import (
	"errors"
	stdhttp "net/http"
	"runtime/debug"

	perr "supplysync/internal/platform/errors"
	"supplysync/internal/platform/logger"
	pnet "supplysync/internal/platform/net"
)

// RecoverJSON turns a handler panic into a JSON 500 and logs the stack.
// http.ErrAbortHandler is re-raised so net/http can drop the connection
func RecoverJSON(next stdhttp.Handler) stdhttp.Handler {
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if err, ok := v.(error); ok && errors.Is(err, stdhttp.ErrAbortHandler) {
				panic(v)
			}
			logger.C(r.Context()).Error().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			status, env := pnet.Fail(r.Context(), perr.PanicErrf("panic recovered"))
			pnet.WriteJSON(w, status, env)
		}()
		next.ServeHTTP(w, r)
	})
}
