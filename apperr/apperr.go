// Package apperr defines the error taxonomy shared by the store, service and
// HTTP layers. Every error a caller can act on carries a Kind; the HTTP layer
// maps kinds to status codes without inspecting messages.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error by who is at fault and what the caller can do.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUpload
	KindDelete
)

var kindInfo = map[Kind]struct {
	code   string
	status int
}{
	KindInternal:     {"SYS_001", http.StatusInternalServerError},
	KindValidation:   {"VAL_001", http.StatusBadRequest},
	KindUnauthorized: {"AUTH_001", http.StatusUnauthorized},
	KindForbidden:    {"AUTH_003", http.StatusForbidden},
	KindNotFound:     {"DB_404", http.StatusNotFound},
	KindConflict:     {"DB_409", http.StatusConflict},
	KindUpload:       {"MEDIA_001", http.StatusBadGateway},
	KindDelete:       {"MEDIA_002", http.StatusBadGateway},
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUpload:
		return "upload"
	case KindDelete:
		return "delete"
	default:
		return "internal"
	}
}

// Error is the concrete error type. Err, when set, is the underlying cause
// and is never shown to clients.
type Error struct {
	Kind    Kind
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, apperr.ErrNotFound)
// holds for every not-found error regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Code returns the stable machine-readable code for the error's kind.
func (e *Error) Code() string { return kindInfo[e.Kind].code }

// Status returns the HTTP status associated with the error's kind.
func (e *Error) Status() int { return kindInfo[e.Kind].status }

// Sentinels for errors.Is comparisons.
var (
	ErrValidation   = &Error{Kind: KindValidation, Message: "invalid request"}
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrForbidden    = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrNotFound     = &Error{Kind: KindNotFound, Message: "not found"}
	ErrConflict     = &Error{Kind: KindConflict, Message: "conflict"}
	ErrUpload       = &Error{Kind: KindUpload, Message: "upload failed"}
	ErrDelete       = &Error{Kind: KindDelete, Message: "delete failed"}
)

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationDetails is Validation with per-field messages attached.
func ValidationDetails(details map[string]string, format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...), Details: details}
}

func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Conflict(msg string, cause error) error {
	return &Error{Kind: KindConflict, Message: msg, Err: cause}
}

func Upload(msg string, cause error) error {
	return &Error{Kind: KindUpload, Message: msg, Err: cause}
}

func Delete(msg string, cause error) error {
	return &Error{Kind: KindDelete, Message: msg, Err: cause}
}

func Internal(msg string, cause error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: cause}
}

// KindOf reports the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Status maps any error to an HTTP status code.
func Status(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status()
	}
	return http.StatusInternalServerError
}
