// Package httpkit is what API modules build their routes from: the envelope
// handler adapters, auth guards and path parameter parsing. Modules import it
// instead of the platform http package
package httpkit

import (
	"net/http"

	phttp "supplysync/internal/platform/net/http"
)

type (
	Router   = phttp.Router
	Handler  = phttp.Handler
	Response = phttp.Response

	// Envelope is referenced by the swagger annotations of every module
	Envelope = phttp.Envelope
)

// Result is the shape of every module handler; returning a Response picks the status
type Result func(*http.Request) (any, error)

// Get mounts a handler that reads nothing but the path and query
func Get(r Router, path string, h Result) { r.Get(path, phttp.NoBodyHandler(h)) }

// Post mounts a bodyless action such as a refresh or scheduler tick
func Post(r Router, path string, h Result) { r.Post(path, phttp.NoBodyHandler(h)) }

// PostJSON mounts a handler whose body is decoded and validated into T first
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, phttp.JSONHandler(h))
}

// PutJSON is PostJSON for PUT
func PutJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Put(path, phttp.JSONHandler(h))
}

// Created is a 201 carrying data
func Created(data any) Response { return phttp.Created(data) }
