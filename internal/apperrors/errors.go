// Package apperrors defines the tagged error kinds the workflow engine
// returns. Callers branch on the kind with errors.As rather than matching
// message strings.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindValidation Kind = iota
	KindAuthorization
	KindPackageFinalized
	KindOtpExpired
	KindOtpMismatch
	KindAuthConfig
	KindRateLimited
	KindServiceUnavailable
	KindNotFound
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindPackageFinalized:
		return "package_finalized"
	case KindOtpExpired:
		return "otp_expired"
	case KindOtpMismatch:
		return "otp_mismatch"
	case KindAuthConfig:
		return "auth_config"
	case KindRateLimited:
		return "rate_limited"
	case KindServiceUnavailable:
		return "service_unavailable"
	case KindNotFound:
		return "not_found"
	}
	return "internal"
}

// HTTPStatus maps the kind to the status code the API boundary responds
// with. Used only by handlers.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusForbidden
	case KindPackageFinalized:
		return http.StatusConflict
	case KindOtpExpired, KindOtpMismatch:
		return http.StatusUnprocessableEntity
	case KindAuthConfig:
		return http.StatusBadGateway
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Retryable reports whether the caller may safely retry the same request
// after backoff.
func (k Kind) Retryable() bool {
	return k == KindRateLimited || k == KindServiceUnavailable
}

// Error carries a kind, a user-facing message, and an optional wrapped
// cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(format string, args ...interface{}) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

func Authorization(format string, args ...interface{}) *Error {
	return New(KindAuthorization, fmt.Sprintf(format, args...))
}

func PackageFinalized(status string) *Error {
	return New(KindPackageFinalized, "package is finalized with status "+status)
}

func OtpExpired() *Error {
	return New(KindOtpExpired, "verification code expired or not requested")
}

func OtpMismatch() *Error {
	return New(KindOtpMismatch, "verification code does not match")
}

func NotFound(what string) *Error {
	return New(KindNotFound, what+" not found")
}

func ServiceUnavailable(message string, err error) *Error {
	return Wrap(KindServiceUnavailable, message, err)
}

// KindOf extracts the kind from an error chain, defaulting to internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether the error chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// UserMessage returns the user-facing summary for an error chain.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
