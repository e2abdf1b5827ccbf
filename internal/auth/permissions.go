package auth

import "net/http"

// CheckPermission checks that the verified claim set grants the required
// permission. An empty requirement means the operation only needs a valid
// token, not a specific grant, and always passes.
func CheckPermission(required string, claims *Claims) error {
	if required == "" {
		return nil
	}

	if claims == nil || claims.Permissions == nil {
		return NewError(CodeInvalidClaims, "Permissions not included in JWT.", http.StatusBadRequest)
	}

	if !claims.HasPermission(required) {
		return NewError(CodeUnauthorized, "Permission not found.", http.StatusForbidden)
	}

	return nil
}
