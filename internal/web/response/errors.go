// Package response writes JSON bodies and maps errors onto HTTP status
// codes for the explorer's API routes.
package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/conduit-lang/explorer/internal/source"
)

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// HTTPError is an error with the status it should be reported as.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Err        error
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError creates an HTTPError with the default code for status.
func NewHTTPError(status int, message string) *HTTPError {
	return &HTTPError{StatusCode: status, Message: message, Code: errorCodeFromStatus(status)}
}

// WithCode sets a custom error code.
func (e *HTTPError) WithCode(code string) *HTTPError {
	e.Code = code
	return e
}

// FromError classifies err. Missing collections and items are 404,
// deadlines 504, canceled requests 499 and any other upstream failure 502.
func FromError(err error) *HTTPError {
	var httpErr *HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.Is(err, source.ErrNotFound):
		return &HTTPError{StatusCode: http.StatusNotFound, Message: "Not found", Code: "not_found", Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &HTTPError{StatusCode: http.StatusGatewayTimeout, Message: "The data source did not respond in time", Code: "upstream_timeout", Err: err}
	case errors.Is(err, context.Canceled):
		return &HTTPError{StatusCode: StatusClientClosedRequest, Message: "Request canceled", Code: "canceled", Err: err}
	}
	return &HTTPError{StatusCode: http.StatusBadGateway, Message: err.Error(), Code: "upstream_error", Err: err}
}

// StatusClientClosedRequest is the nginx convention for a client that
// went away before the response was ready.
const StatusClientClosedRequest = 499

// RenderError writes err as a JSON error body.
func RenderError(w http.ResponseWriter, err error) {
	e := FromError(err)
	writeJSON(w, e.StatusCode, &ErrorResponse{
		Error:   "error",
		Message: e.Message,
		Code:    e.Code,
	})
}

// RenderNotFound writes a 404 with message.
func RenderNotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RenderError(w, NewHTTPError(http.StatusNotFound, message))
}

// RenderMethodNotAllowed writes a 405.
func RenderMethodNotAllowed(w http.ResponseWriter) {
	RenderError(w, NewHTTPError(http.StatusMethodNotAllowed, "Method not allowed"))
}

func errorCodeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusInternalServerError:
		return "internal_error"
	case http.StatusBadGateway:
		return "bad_gateway"
	case http.StatusServiceUnavailable:
		return "service_unavailable"
	case http.StatusGatewayTimeout:
		return "gateway_timeout"
	default:
		return "error"
	}
}
