// Package http provides the router seam, the JSON envelope and handler adapters
package http

import (
	stdhttp "net/http"

	perr "supplysync/internal/platform/errors"
	"supplysync/internal/platform/logger"
	pnet "supplysync/internal/platform/net"
)

// Envelope is the response body of every API endpoint
type Envelope = pnet.Envelope

// Response is what return-style handlers produce
type Response struct {
	Status int
	Body   any
	Header stdhttp.Header
}

// Handle adapts a Response-returning handler to net/http
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).write(w, r)
	}
}

func (resp Response) write(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	status := resp.Status
	if status == 0 {
		status = stdhttp.StatusOK
	}
	if resp.Header != nil {
		for k, vv := range resp.Header {
			for _, v := range vv {
				w.Header().Add(k, v)
			}
		}
	}
	if status == stdhttp.StatusNoContent {
		w.WriteHeader(stdhttp.StatusNoContent)
		return
	}

	if err, ok := resp.Body.(error); ok && err != nil {
		status, env := pnet.Fail(r.Context(), err)
		if status >= stdhttp.StatusInternalServerError {
			logger.C(r.Context()).Error().Err(err).
				Str("path", r.URL.Path).
				Int("status", status).
				Stringer("code", perr.CodeOf(err)).
				Msg("request failed")
		}
		pnet.WriteJSON(w, status, env)
		return
	}
	pnet.WriteJSON(w, status, pnet.Reply(r.Context(), status, resp.Body))
}

// OK returns a 200 response
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// Created returns a 201 response
func Created(data any) Response { return Response{Status: stdhttp.StatusCreated, Body: data} }

// NoContent returns a 204 response
func NoContent() Response { return Response{Status: stdhttp.StatusNoContent} }

// Error returns a response that maps the error to status and envelope
func Error(err error) Response { return Response{Body: err} }
