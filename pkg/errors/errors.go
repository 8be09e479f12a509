package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/lib/pq"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`

	stack []byte
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

// Is matches errors sharing the same code so cloned errors compare equal.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error. Server errors record the
// goroutine stack at the wrap site.
func Wrap(err error, code string, status int, message string) *Error {
	e := &Error{Code: code, Status: status, Message: message, Err: err}
	if status >= http.StatusInternalServerError {
		e.stack = debug.Stack()
	}
	return e
}

// Stack returns the stack recorded by Wrap, or "" when none was captured.
func (e *Error) Stack() string {
	if e == nil {
		return ""
	}
	return string(e.stack)
}

// Predefined errors for common scenarios.
var (
	ErrInvalidFormat      = New("INVALID_FORMAT", http.StatusBadRequest, "Invalid data format. Expected an array of years.")
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "Invalid username or password")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "Not authorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "A duplicate record exists.")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrTooManyRequests    = New("TOO_MANY_REQUESTS", http.StatusTooManyRequests, "too many requests")
	ErrStorage            = New("STORAGE_ERROR", http.StatusInternalServerError, "storage error")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Postgres SQLSTATE codes surfaced to callers.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
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

// FromStorage classifies a database error. Constraint violations map to
// client errors; anything else becomes a StorageError carrying the driver
// message.
func FromStorage(err error, message string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return Wrap(err, ErrConflict.Code, ErrConflict.Status, ErrConflict.Message)
		case pgForeignKeyViolation:
			return Wrap(err, ErrValidation.Code, ErrValidation.Status, "referenced record does not exist")
		}
	}
	if message == "" {
		message = ErrStorage.Message
	}
	return Wrap(err, ErrStorage.Code, ErrStorage.Status, message)
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
