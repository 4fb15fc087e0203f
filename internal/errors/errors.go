package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a failure for the request boundary
type Kind int

const (
	KindValidation Kind = iota + 1 // malformed or missing input, rejected before any write
	KindNotFound                   // referenced aggregate does not exist
	KindStateConflict              // operation illegal in the aggregate's current state
	KindUpstream                   // document store unreachable or write failed
	KindUnauthorized
	KindForbidden
	KindBusy // lost a write race too many times, safe to retry
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindNotFound:
		return "NotFoundError"
	case KindStateConflict:
		return "StateConflictError"
	case KindUpstream:
		return "UpstreamError"
	case KindUnauthorized:
		return "UnauthorizedError"
	case KindForbidden:
		return "ForbiddenError"
	case KindBusy:
		return "BusyError"
	default:
		return "Error"
	}
}

// AppError carries a human readable message and an optional cause
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Validation(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Kind: KindStateConflict, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func Busy(message string) *AppError {
	return &AppError{Kind: KindBusy, Message: message}
}

// Upstream wraps a storage failure. The cause is logged, never shown to clients.
func Upstream(err error, message string) *AppError {
	return &AppError{Kind: KindUpstream, Message: message, Err: err}
}

// KindOf returns the kind of the first AppError in err's chain, or KindUpstream
func KindOf(err error) Kind {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUpstream
}

// Is reports whether err is an AppError of the given kind
func Is(err error, kind Kind) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Kind == kind
}
