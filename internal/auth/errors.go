package auth

import "net/http"

// Machine-readable failure codes produced by the authorization subsystem.
const (
	CodeAuthHeaderMissing = "authorization_header_missing"
	CodeInvalidHeader     = "invalid_header"
	CodeTokenExpired      = "token_expired"
	CodeInvalidClaims     = "invalid_claims"
	CodeUnauthorized      = "unauthorized"
	CodeJWKSFetchFailed   = "jwks_fetch_failed"
)

// Error is the single failure type of the authorization subsystem. Every
// rejection carries a machine-readable code, a short human-readable
// description safe to return to clients, and the HTTP status the surrounding
// layer should render it with.
type Error struct {
	// Code is a machine-readable error code (e.g. "token_expired").
	Code string

	// Description is a stable, client-safe explanation of the failure.
	Description string

	// Status is the HTTP status code the failure maps to.
	Status int

	// cause is the underlying error, if any. Never rendered to clients.
	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return e.Code + ": " + e.Description + ": " + e.cause.Error()
	}
	return e.Code + ": " + e.Description
}

// Unwrap returns the underlying error for error unwrapping.
func (e *Error) Unwrap() error {
	return e.cause
}

// NewError creates an Error with the given code, description and HTTP status.
func NewError(code, description string, status int) *Error {
	return &Error{Code: code, Description: description, Status: status}
}

// WrapError creates an Error that records cause for logging while keeping
// the client-facing description stable.
func WrapError(code, description string, status int, cause error) *Error {
	return &Error{Code: code, Description: description, Status: status, cause: cause}
}

// ErrHeaderMissing is the rejection for requests with no Authorization header.
func ErrHeaderMissing() *Error {
	return NewError(CodeAuthHeaderMissing, "Authorization header is expected.", http.StatusUnauthorized)
}
