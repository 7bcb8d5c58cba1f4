package httpkit

import "net/http"

// MountAPIV1 mounts /api/v1 with the shared middleware stack and lets mount
// register module routes below it
func MountAPIV1(r Router, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route("/api/v1", func(api Router) {
		api.Use(mw...)
		mount(api)
	})
}
