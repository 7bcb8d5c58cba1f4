// Package module holds the contract every pipeline and API module satisfies
// and the process-wide port registry used while wiring them
package module

import (
	"sync"

	phttp "supplysync/internal/platform/net/http"
)

// Module is a named unit that may serve routes and exposes a port set
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}

var registry sync.Map // module name -> port set

// Register publishes the port set of the module called name; a later call
// with the same name replaces it
func Register(name string, ports any) { registry.Store(name, ports) }

// PortsAs returns the port set registered under name when it is a T
func PortsAs[T any](name string) (T, bool) {
	v, _ := registry.Load(name)
	out, ok := v.(T)
	return out, ok
}

// Reset empties the registry
func Reset() { registry.Clear() }
