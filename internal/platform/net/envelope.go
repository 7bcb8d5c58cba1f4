package net

import (
	"context"
	"encoding/json"
	"net/http"

	perr "supplysync/internal/platform/errors"
)

// Envelope is the body of every API response, handler errors and middleware
// rejections included. Field names the request field an error refers to
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Field      string         `json:"field,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// Reply wraps data for a successful response
func Reply(ctx context.Context, status int, data any) Envelope {
	return Envelope{StatusCode: status, Status: http.StatusText(status), RequestID: RequestID(ctx), Data: data}
}

// Fail maps err to its status and error envelope. Only the safe message of a
// coded error reaches the body
func Fail(ctx context.Context, err error) (int, Envelope) {
	status := perr.HTTPStatus(err)
	w := perr.WireFrom(err)
	return status, Envelope{
		StatusCode: status,
		Status:     http.StatusText(status),
		Code:       w.Code,
		Error:      w.Message,
		Field:      w.Field,
		RequestID:  RequestID(ctx),
	}
}

// WriteJSON encodes v as the response body with status
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
