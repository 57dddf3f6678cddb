package services

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation        ErrorKind = "validation_error"
	KindNotFound          ErrorKind = "not_found"
	KindUnauthorized      ErrorKind = "unauthorized"
	KindConflict          ErrorKind = "conflict"
	KindUpstreamFormat    ErrorKind = "upstream_format_error"
	KindDataIntegrity     ErrorKind = "data_integrity_error"
	KindConfiguration     ErrorKind = "configuration_error"
	KindTransientUpstream ErrorKind = "upstream_unavailable"
	KindInternal          ErrorKind = "internal_error"
)

// Error is the categorized error returned by services. Handlers turn the kind
// into a status code; the message is safe to show to callers.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func validationError(format string, args ...any) *Error {
	return newError(KindValidation, nil, format, args...)
}

func notFoundError(format string, args ...any) *Error {
	return newError(KindNotFound, nil, format, args...)
}

// KindOf reports the category of err, or KindInternal for untyped errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given category.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
