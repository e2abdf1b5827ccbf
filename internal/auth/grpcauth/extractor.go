package grpcauth

import (
	"context"
	"net/http"
	"strings"

	"google.golang.org/grpc/metadata"

	"github.com/castingworks/casting-agency/internal/auth"
)

// TokenExtractor extracts bearer tokens from gRPC request metadata.
type TokenExtractor func(ctx context.Context) (string, error)

// MetadataTokenExtractor extracts the bearer token from the "authorization"
// metadata key. gRPC normalizes incoming metadata keys to lowercase, so only
// the lowercase key is checked. The same header-format rules apply as on the
// HTTP surface.
func MetadataTokenExtractor(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", auth.ErrHeaderMissing()
	}

	values := md.Get("authorization")
	if len(values) == 0 {
		return "", auth.ErrHeaderMissing()
	}
	if len(values) > 1 {
		return "", auth.NewError(auth.CodeInvalidHeader, "Multiple authorization metadata entries are not allowed.", http.StatusUnauthorized)
	}

	parts := strings.Fields(values[0])
	if len(parts) == 0 || strings.ToLower(parts[0]) != "bearer" {
		return "", auth.NewError(auth.CodeInvalidHeader, `Authorization header must start with "Bearer".`, http.StatusUnauthorized)
	}
	if len(parts) == 1 {
		return "", auth.NewError(auth.CodeInvalidHeader, "Token not found.", http.StatusUnauthorized)
	}
	if len(parts) > 2 {
		return "", auth.NewError(auth.CodeInvalidHeader, "Authorization header must be bearer token.", http.StatusUnauthorized)
	}

	return parts[1], nil
}
