package exception

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type Kind string

const (
	KindValidation      Kind = "ValidationError"
	KindAuth            Kind = "AuthError"
	KindForbidden       Kind = "ForbiddenError"
	KindNotFound        Kind = "NotFoundError"
	KindConflict        Kind = "ConflictError"
	KindOtp             Kind = "OtpError"
	KindTooManyRequests Kind = "TooManyRequests"
	KindUnavailable     Kind = "ServiceUnavailable"
)

// Error is the typed error every use case returns for a client-visible
// failure. Anything that is not an *Error surfaces as a 500.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

var (
	ErrOtpInvalid = &Error{Kind: KindOtp, Message: "Invalid verification code"}
	ErrOtpExpired = &Error{Kind: KindOtp, Message: "Verification code expired"}
)

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindValidation, KindOtp:
		return fiber.StatusBadRequest
	case KindAuth:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict:
		return fiber.StatusConflict
	case KindTooManyRequests:
		return fiber.StatusTooManyRequests
	case KindUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func TooManyRequests(message string) *Error {
	return &Error{Kind: KindTooManyRequests, Message: message}
}

func Unavailable(message string, err error) *Error {
	return &Error{Kind: KindUnavailable, Message: message, Err: err}
}

// Is reports whether err carries an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
