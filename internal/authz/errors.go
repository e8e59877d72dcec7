package authz

import (
	"errors"
	"net/http"
)

// Kind classifies an authorization failure.
type Kind int

const (
	// KindGeneric marks unexpected failures. Components inside this package
	// never return it directly; it exists so boundary code has a default
	// branch when translating foreign errors.
	KindGeneric Kind = iota
	// KindAuthentication: identity could not be established.
	KindAuthentication
	// KindTenant: identity established, tenant scope violated.
	KindTenant
	// KindValidation: caller-supplied data is malformed, identity aside.
	KindValidation
)

// Stable machine-readable codes carried on every failure.
const (
	CodeAuthError       = "AUTH_ERROR"
	CodeTenantError     = "TENANT_ERROR"
	CodeValidationError = "VALIDATION_ERROR"
	CodeInternalError   = "INTERNAL_ERROR"
)

// Error is a typed authorization failure. Kind, Code and Status travel as
// data so that boundary translation is a plain switch, not a walk over a
// type hierarchy.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Status  int
}

func (e *Error) Error() string { return e.Message }

// NewAuthenticationError builds a 401 failure: the caller's identity could
// not be established.
func NewAuthenticationError(message string) *Error {
	return &Error{Kind: KindAuthentication, Code: CodeAuthError, Message: message, Status: http.StatusUnauthorized}
}

// NewTenantError builds a 403 failure: a valid identity acted outside its
// bound tenant.
func NewTenantError(message string) *Error {
	return &Error{Kind: KindTenant, Code: CodeTenantError, Message: message, Status: http.StatusForbidden}
}

// NewValidationError builds a 400 failure for structurally invalid input.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidationError, Message: message, Status: http.StatusBadRequest}
}

// KindOf returns the failure kind, or KindGeneric for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindGeneric
}

// CodeOf returns the stable failure code, or CodeInternalError for foreign
// errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternalError
}

// StatusOf returns the HTTP-equivalent status class of the failure.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}
