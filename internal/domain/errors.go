package domain

import "fmt"

// ErrorKind classifies a business-rule violation.
type ErrorKind string

// Error kinds returned by the procurement core. All of them are
// recoverable-by-caller conditions; none implies partial application.
const (
	KindUnauthorized           ErrorKind = "UNAUTHORIZED"
	KindInvalidTransition      ErrorKind = "INVALID_TRANSITION"
	KindMissingSupplier        ErrorKind = "MISSING_SUPPLIER"
	KindImmutableState         ErrorKind = "IMMUTABLE_STATE"
	KindDeleteNotAllowed       ErrorKind = "DELETE_NOT_ALLOWED"
	KindOverReceipt            ErrorKind = "OVER_RECEIPT"
	KindInvalidQuantity        ErrorKind = "INVALID_QUANTITY"
	KindNotReceivable          ErrorKind = "NOT_RECEIVABLE"
	KindConcurrentModification ErrorKind = "CONCURRENT_MODIFICATION"
	KindNotFound               ErrorKind = "NOT_FOUND"
	KindValidation             ErrorKind = "VALIDATION_ERROR"
	KindInternal               ErrorKind = "INTERNAL_ERROR"
)

// Error is a typed business error with a human-readable detail string.
type Error struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// NewError creates a typed error with a formatted message.
func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the error kind, or KindInternal for unexpected errors.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if de, ok := err.(*Error); ok {
		return de.Kind
	}
	return KindInternal
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// ErrNotFound builds the NotFound error used for both missing records and
// records outside the caller's vessel scope, so callers cannot probe for the
// existence of another vessel's data.
func ErrNotFound(entity string) *Error {
	return NewError(KindNotFound, "%s not found", entity)
}

// ErrUnauthorized builds an Unauthorized error for a denied operation.
func ErrUnauthorized(operation string) *Error {
	return NewError(KindUnauthorized, "not allowed to %s", operation)
}
