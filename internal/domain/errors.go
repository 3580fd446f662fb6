package domain

import "errors"

// Error kinds. Handlers map these to HTTP status codes with errors.Is.
var (
	ErrValidation           = errors.New("validation error")
	ErrUnauthorized         = errors.New("Unauthorized")
	ErrForbidden            = errors.New("Forbidden")
	ErrNotFound             = errors.New("not found")
	ErrNotFoundOrUnverified = errors.New("Project not found or not verified")
	ErrConflict             = errors.New("conflict")
	ErrPersistence          = errors.New("persistence error")
)

// Error carries a client-facing message and wraps one of the kinds above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func Validation(msg string) error {
	return &Error{Kind: ErrValidation, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func Conflict(msg string) error {
	return &Error{Kind: ErrConflict, Message: msg}
}

// Persistence wraps a storage failure. The cause is kept for logging only;
// Error() never exposes it.
func Persistence(msg string, cause error) error {
	return &persistenceError{msg: msg, cause: cause}
}

type persistenceError struct {
	msg   string
	cause error
}

func (e *persistenceError) Error() string { return e.msg }

func (e *persistenceError) Unwrap() []error { return []error{ErrPersistence, e.cause} }

// Cause returns the underlying storage error of a persistence failure, or nil.
func Cause(err error) error {
	var pe *persistenceError
	if errors.As(err, &pe) {
		return pe.cause
	}
	return nil
}
