package errors

import "errors"

// AppError tags a failure with a stable machine-readable code. Domain
// services only ever speak in codes; the HTTP layer owns the mapping
// onto status codes.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// MessageOf extracts the curated message from err, or fallback when err
// carries none. The wrapped cause never surfaces here.
func MessageOf(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}

// CodeOf extracts the code from err, or fallback when err is not an AppError.
func CodeOf(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return fallback
}
