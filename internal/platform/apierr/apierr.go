package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindPersistence  Kind = "persistence"
	KindNotFound     Kind = "not_found"
	KindAuthRequired Kind = "auth_required"
	KindForbidden    Kind = "forbidden"
	KindConflict     Kind = "conflict"
)

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrPersistence  = &Error{Kind: KindPersistence}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrAuthRequired = &Error{Kind: KindAuthRequired}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrConflict     = &Error{Kind: KindConflict}
)

type Error struct {
	Kind   Kind
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		if e.Code != "" {
			return e.Code + ": " + e.Err.Error()
		}
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	if t.Kind != "" && t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// Retryable reports whether the caller may repeat the operation unchanged.
func (e *Error) Retryable() bool { return e != nil && e.Kind == KindPersistence }

func New(status int, code string, err error) *Error {
	return &Error{Kind: kindForStatus(status), Status: status, Code: code, Err: err}
}

func Validation(code, msg string) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Code: code, Err: errors.New(msg)}
}

func Persistence(op string, err error) *Error {
	return &Error{Kind: KindPersistence, Status: http.StatusServiceUnavailable, Code: "persistence_failed", Err: fmt.Errorf("%s: %w", op, err)}
}

func NotFound(code string) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Code: code}
}

func AuthRequired() *Error {
	return &Error{Kind: KindAuthRequired, Status: http.StatusUnauthorized, Code: "auth_required"}
}

func Forbidden(code string) *Error {
	return &Error{Kind: KindForbidden, Status: http.StatusForbidden, Code: code}
}

func Conflict(code, msg string) *Error {
	return &Error{Kind: KindConflict, Status: http.StatusConflict, Code: code, Err: errors.New(msg)}
}

// From extracts the *Error in err's chain, classifying anything else as an
// internal failure.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Status == 0 {
			e = &Error{Kind: e.Kind, Status: statusForKind(e.Kind), Code: e.Code, Err: e.Err}
		}
		return e
	}
	return &Error{Status: http.StatusInternalServerError, Code: "internal_error", Err: err}
}

func statusForKind(k Kind) int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindPersistence:
		return http.StatusServiceUnavailable
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthRequired:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusServiceUnavailable:
		return KindPersistence
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnauthorized:
		return KindAuthRequired
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusConflict:
		return KindConflict
	}
	return ""
}
