// Package apperrors defines the error taxonomy shared by services and
// handlers. Services wrap these sentinels with %w; the HTTP layer maps them
// to status codes with KindOf.
package apperrors

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindValidation
	KindConflict
	KindRateLimited
	KindLastAdmin
)

var (
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrNotFound              = errors.New("not found")
	ErrValidation            = errors.New("validation failed")
	ErrConflict              = errors.New("conflict")
	ErrRateLimited           = errors.New("too many requests")
	ErrCannotRemoveLastAdmin = errors.New("cannot remove the last admin")
	ErrInternal              = errors.New("internal server error")

	ErrInvalidSession = New(ErrUnauthorized, "invalid session")
	ErrSelfFollow     = New(ErrValidation, "cannot follow yourself")
)

// Error carries a user-facing message alongside one of the sentinels.
type Error struct {
	Msg string
	Err error
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Err }

// New returns an error that reports msg to the caller and matches sentinel
// under errors.Is.
func New(sentinel error, msg string) error {
	return &Error{Msg: msg, Err: sentinel}
}

func NotFound(what string) error { return New(ErrNotFound, what+" not found") }

func Validation(msg string) error { return New(ErrValidation, msg) }

// KindOf classifies err. Anything outside the taxonomy is Internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrCannotRemoveLastAdmin):
		return KindLastAdmin
	default:
		return KindInternal
	}
}

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	case KindLastAdmin:
		return "last_admin"
	default:
		return "internal"
	}
}

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindLastAdmin:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// KindForStatus is the kind whose Status is status. Statuses without a
// kind, such as 405, report false.
func KindForStatus(status int) (Kind, bool) {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthorized, true
	case http.StatusForbidden:
		return KindForbidden, true
	case http.StatusNotFound:
		return KindNotFound, true
	case http.StatusBadRequest:
		return KindValidation, true
	case http.StatusConflict:
		return KindConflict, true
	case http.StatusTooManyRequests:
		return KindRateLimited, true
	case http.StatusInternalServerError:
		return KindInternal, true
	}
	return KindInternal, false
}

// PublicMessage is the text shown to API callers. Auth failures and internal
// errors stay generic; validation, not-found, conflict and invariant errors
// surface their specific message.
func PublicMessage(err error) string {
	switch k := KindOf(err); k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindRateLimited:
		return "too many requests"
	case KindInternal:
		return "internal server error"
	default:
		var e *Error
		if errors.As(err, &e) {
			return e.Msg
		}
		if k == KindLastAdmin {
			return ErrCannotRemoveLastAdmin.Error()
		}
		return err.Error()
	}
}
