package domain

import "errors"

var (
	ErrDuplicateEntry  = errors.New("duplicate entry")
	ErrNotFound        = errors.New("not found")
	ErrNoRowsAffected  = errors.New("no rows affected")
	ErrVersionConflict = errors.New("version conflict")
)

// ErrorKind is the stable machine readable class of a business error.
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindConflict       ErrorKind = "conflict"
	KindNotFound       ErrorKind = "not_found"
	KindExpired        ErrorKind = "expired"
	KindAuthentication ErrorKind = "authentication"
	KindForbidden      ErrorKind = "forbidden"
)

// Error is a business error surfaced to the caller as is.
type Error struct {
	Kind    ErrorKind
	Field   string
	Message string
}

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func NewValidationError(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func (e *Error) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

// Is reports equality by kind and message so sentinels survive wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

// KindOf returns the kind of the first *Error in err's chain, or "" for infrastructure errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
