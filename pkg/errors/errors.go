package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors by code so predefined values survive Clone and Wrap.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e != nil && t != nil && e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors covering the ledger failure taxonomy. Every failure a
// caller can branch on has its own code; nothing is reported as a generic
// failure.
var (
	ErrNotAuthorized          = New("NOT_AUTHORIZED", http.StatusForbidden, "caller lacks the required role or relationship")
	ErrNotFound               = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrInvalidStateTransition = New("INVALID_STATE_TRANSITION", http.StatusConflict, "operation not valid from current status")
	ErrAlreadyExists          = New("ALREADY_EXISTS", http.StatusConflict, "record already exists")
	ErrAlreadyLinked          = New("ALREADY_LINKED", http.StatusConflict, "subject account already linked to a certificate")
	ErrAlreadyRegistered      = New("ALREADY_REGISTERED", http.StatusConflict, "account already has an active voter registration")
	ErrDuplicateDeathRecord   = New("DUPLICATE_DEATH_RECORD", http.StatusConflict, "subject account already has an issued death certificate")
	ErrDateInconsistency      = New("DATE_INCONSISTENCY", http.StatusUnprocessableEntity, "death timestamp precedes linked birth timestamp")
	ErrUnderage               = New("UNDERAGE", http.StatusUnprocessableEntity, "computed age is below the configured minimum")
	ErrSimulationRunning      = New("SIMULATION_ALREADY_RUNNING", http.StatusConflict, "a simulation session is already running")
	ErrNotSupported           = New("NOT_SUPPORTED", http.StatusConflict, "operation not supported by current policy")
	ErrAlreadyInitialized     = New("ALREADY_INITIALIZED", http.StatusConflict, "registrar set already bootstrapped")

	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss    = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
