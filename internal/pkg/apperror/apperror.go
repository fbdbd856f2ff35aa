// Package apperror defines the domain error taxonomy. All errors that cross
// the service boundary are one of these types so handlers can map them to
// HTTP statuses without leaking internal details (DB errors, stack traces).
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain error.
type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindInsufficientStock Kind = "insufficient_stock"
	KindDuplicateCode     Kind = "duplicate_code"
	KindInvalidTransition Kind = "invalid_transition"
	KindNotFound          Kind = "not_found"
	KindAuthExpired       Kind = "auth_expired"
)

// Error is the canonical domain error. Detail is safe to surface verbatim.
type Error struct {
	Kind   Kind              `json:"kind"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (e *Error) Error() string {
	return e.Detail
}

// HTTPStatus maps the error kind to an HTTP status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicateCode:
		return http.StatusConflict
	case KindAuthExpired:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}

// NewValidation reports malformed or out-of-range input.
func NewValidation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Detail: fmt.Sprintf(format, args...)}
}

// NewValidationFields reports per-field validation failures.
func NewValidationFields(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Detail: "validation failed", Fields: fields}
}

// NewInsufficientStock reports an issue or listing quantity that exceeds the
// available stock. The caller is told exactly what was requested and what
// was available.
func NewInsufficientStock(code string, requested, available int) *Error {
	return &Error{
		Kind:   KindInsufficientStock,
		Detail: fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", code, requested, available),
	}
}

// NewDuplicateCode reports a unique-constraint violation on a product code.
func NewDuplicateCode(code string) *Error {
	return &Error{Kind: KindDuplicateCode, Detail: fmt.Sprintf("product with code %s already exists", code)}
}

// NewInvalidTransition reports an illegal task status change.
func NewInvalidTransition(from, to string) *Error {
	return &Error{Kind: KindInvalidTransition, Detail: fmt.Sprintf("cannot transition task from %s to %s", from, to)}
}

// NewNotFound reports an absent referenced entity.
func NewNotFound(entity string, id interface{}) *Error {
	return &Error{Kind: KindNotFound, Detail: fmt.Sprintf("%s %v not found", entity, id)}
}

// NewAuthExpired reports a dead session after a refresh attempt.
func NewAuthExpired(detail string) *Error {
	return &Error{Kind: KindAuthExpired, Detail: detail}
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// HTTPStatus returns the status for any error; non-domain errors are 500.
func HTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}
