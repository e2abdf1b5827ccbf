package auth

import (
	"net/http"
	"strings"
)

// TokenExtractor is a function that takes a request as input and returns
// either a bearer token or an *Error describing why no usable token could
// be obtained.
type TokenExtractor func(r *http.Request) (string, error)

// AuthHeaderTokenExtractor is a TokenExtractor that takes a request and
// extracts the bearer token from the Authorization header. The header must
// contain exactly two whitespace-separated segments and start with the
// case-insensitive scheme "Bearer".
func AuthHeaderTokenExtractor(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrHeaderMissing()
	}

	parts := strings.Fields(authHeader)
	if len(parts) == 0 || strings.ToLower(parts[0]) != "bearer" {
		return "", NewError(CodeInvalidHeader, `Authorization header must start with "Bearer".`, http.StatusUnauthorized)
	}
	if len(parts) == 1 {
		return "", NewError(CodeInvalidHeader, "Token not found.", http.StatusUnauthorized)
	}
	if len(parts) > 2 {
		return "", NewError(CodeInvalidHeader, "Authorization header must be bearer token.", http.StatusUnauthorized)
	}

	return parts[1], nil
}
