package modkit

import (
	"net/http"

	"supplysync/internal/modkit/module"
	phttp "supplysync/internal/platform/net/http"
	str "supplysync/internal/platform/strings"
)

// Module is what api.Mount wires: routes, a port set and a name
type Module = module.Module

// Option adjusts how a module is built
type Option func(*Built)

// Built is the result of applying Options over a module's defaults
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
	Ports  any
}

// WithName sets the module name used in logs and the port registry
func WithName(name string) Option { return func(b *Built) { b.Name = name } }

// WithPrefix mounts the module under a path prefix
func WithPrefix(prefix string) Option { return func(b *Built) { b.Prefix = prefix } }

// WithMiddlewares appends per module middleware, applied in order
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Built) { b.Mw = append(b.Mw, mw...) }
}

// WithPorts injects the port set a module needs from elsewhere; the concrete
// type is declared by the receiving module
func WithPorts[T any](p T) Option { return func(b *Built) { b.Ports = p } }

// Build applies opts in order; later options win
func Build(opts ...Option) Built {
	var b Built
	for _, o := range opts {
		o(&b)
	}
	b.Mw = append([]func(http.Handler) http.Handler(nil), b.Mw...)
	return b
}

// Routes implements the routing half of Module. API modules embed it and add Ports
type Routes struct {
	name     string
	prefix   string
	mw       []func(http.Handler) http.Handler
	register func(phttp.Router)
}

// Routes binds register to the built name, prefix and middleware
func (b Built) Routes(register func(phttp.Router)) Routes {
	return Routes{name: b.Name, prefix: str.MustPrefix(b.Prefix), mw: b.Mw, register: register}
}

// Name returns the module name
func (r Routes) Name() string { return r.name }

// Prefix returns the mount prefix
func (r Routes) Prefix() string { return r.prefix }

// MountRoutes mounts the module under its prefix with its middleware
func (r Routes) MountRoutes(root phttp.Router) {
	root.Route(r.prefix, func(sub phttp.Router) {
		for _, mw := range r.mw {
			sub.Use(mw)
		}
		r.register(sub)
	})
}
