package auth

import "context"

// contextKey is an unexported type for context keys to prevent collisions
// with context values set by other packages.
type contextKey int

const claimsKey contextKey = iota

// ContextWithClaims stores a verified claim set in the context.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext retrieves the claim set stored by the middleware.
// The second return value is false when no claims are present, which means
// the request never passed through an admitting guard.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}
