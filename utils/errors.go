package utils

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies a failure independently of the transport.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindConflict
	KindUnauthenticated
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindRateLimited
	KindUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// AppError is the typed failure returned by stores and services.
// Message is safe to show to a client; Err is for logs only.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// ErrOrderIDTaken is returned by stores when a generated order id already exists.
var ErrOrderIDTaken = errors.New("order id already in use")

func ValidationError(msg string) error {
	return &AppError{Kind: KindValidation, Message: msg}
}

func ConflictError(msg string) error {
	return &AppError{Kind: KindConflict, Message: msg}
}

func UnauthenticatedError(msg string, err error) error {
	return &AppError{Kind: KindUnauthenticated, Message: msg, Err: err}
}

func UnauthorizedError(msg string) error {
	return &AppError{Kind: KindUnauthorized, Message: msg}
}

func ForbiddenError(msg string, err error) error {
	return &AppError{Kind: KindForbidden, Message: msg, Err: err}
}

func NotFoundError(msg string) error {
	return &AppError{Kind: KindNotFound, Message: msg}
}

func RateLimitedError(msg string) error {
	return &AppError{Kind: KindRateLimited, Message: msg}
}

func UnavailableError(msg string, err error) error {
	return &AppError{Kind: KindUnavailable, Message: msg, Err: err}
}

func InternalError(err error) error {
	return &AppError{Kind: KindInternal, Message: "Server error", Err: err}
}

// KindOf returns the kind of the first AppError in err's chain.
// Context deadline and cancellation count as unavailable.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindUnavailable
	}
	return KindInternal
}

// MessageOf returns the client-facing message for err.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	if KindOf(err) == KindUnavailable {
		return "Service temporarily unavailable"
	}
	return "Server error"
}
