package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/dermalens/skin-advisor/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

// statusForCode maps domain error codes onto HTTP statuses. Unknown
// codes collapse to 500 so a new domain code never leaks a 200.
func statusForCode(code string) int {
	switch code {
	case "invalid_input", "invalid_image":
		return http.StatusBadRequest
	case "unauthenticated":
		return http.StatusUnauthorized
	case "file_too_large":
		return http.StatusRequestEntityTooLarge
	case "unsupported_media_type":
		return http.StatusUnsupportedMediaType
	case "rate_limited":
		return http.StatusTooManyRequests
	case "timeout":
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// httpErrorFrom converts a domain error into an HTTPError using its
// code. Only the curated message reaches the client; the wrapped chain
// stays in the server-side log.
func httpErrorFrom(err error, fallbackCode string) *HTTPError {
	code := apperrors.CodeOf(err, fallbackCode)
	return NewHTTPError(statusForCode(code), code, apperrors.MessageOf(err, "request failed"), err)
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}
