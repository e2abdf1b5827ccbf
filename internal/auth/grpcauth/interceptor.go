// Package grpcauth applies the authorization chain to gRPC servers. It
// enforces the same extract -> verify -> permission pipeline as the HTTP
// middleware, reading the bearer token from request metadata and mapping
// rejections to gRPC status codes.
package grpcauth

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/castingworks/casting-agency/internal/auth"
)

// Interceptor guards gRPC methods with token verification and per-method
// permission requirements.
type Interceptor struct {
	validateToken     auth.ValidateToken
	tokenExtractor    TokenExtractor
	methodPermissions map[string]string
	logger            auth.Logger
}

// Option configures the Interceptor.
type Option func(*Interceptor) error

// New creates an interceptor around the given token validation function.
// Methods without a registered permission only require a valid token.
func New(validateToken auth.ValidateToken, opts ...Option) (*Interceptor, error) {
	if validateToken == nil {
		return nil, auth.ErrValidateTokenNil
	}

	i := &Interceptor{
		validateToken:     validateToken,
		tokenExtractor:    MetadataTokenExtractor,
		methodPermissions: make(map[string]string),
	}

	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}

	return i, nil
}

// WithMethodPermission registers the permission required to call the given
// full method name (e.g. "/agency.v1.AgencyService/CreateActor").
func WithMethodPermission(fullMethod, permission string) Option {
	return func(i *Interceptor) error {
		i.methodPermissions[fullMethod] = permission
		return nil
	}
}

// WithTokenExtractor sets the function used to pull the bearer token out of
// the request metadata.
//
// Default: MetadataTokenExtractor
func WithTokenExtractor(e TokenExtractor) Option {
	return func(i *Interceptor) error {
		if e == nil {
			return auth.ErrTokenExtractorNil
		}
		i.tokenExtractor = e
		return nil
	}
}

// WithLogger sets an optional logger for the interceptor.
func WithLogger(l auth.Logger) Option {
	return func(i *Interceptor) error {
		i.logger = l
		return nil
	}
}

// UnaryServerInterceptor returns a grpc.UnaryServerInterceptor that rejects
// calls failing the authorization chain. Verified claims are placed in the
// handler context.
func (i *Interceptor) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		validatedCtx, err := i.check(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}
		return handler(validatedCtx, req)
	}
}

// StreamServerInterceptor returns a grpc.StreamServerInterceptor that rejects
// streams failing the authorization chain. Verified claims are placed in the
// stream context.
func (i *Interceptor) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		validatedCtx, err := i.check(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}
		return handler(srv, &wrappedServerStream{ServerStream: ss, ctx: validatedCtx})
	}
}

// check runs the authorization chain for one call.
func (i *Interceptor) check(ctx context.Context, fullMethod string) (context.Context, error) {
	token, err := i.tokenExtractor(ctx)
	if err != nil {
		return nil, i.reject(fullMethod, err)
	}

	claims, err := i.validateToken(ctx, token)
	if err != nil {
		return nil, i.reject(fullMethod, err)
	}

	if err := auth.CheckPermission(i.methodPermissions[fullMethod], claims); err != nil {
		return nil, i.reject(fullMethod, err)
	}

	return auth.ContextWithClaims(ctx, claims), nil
}

func (i *Interceptor) reject(fullMethod string, err error) error {
	if i.logger != nil {
		i.logger.Warnf("call rejected: method=%s: %v", fullMethod, err)
	}
	return statusFromError(err)
}

// statusFromError maps the subsystem's failure taxonomy to gRPC status codes.
func statusFromError(err error) error {
	var authErr *auth.Error
	if !errors.As(err, &authErr) {
		return status.Error(codes.Unauthenticated, "invalid or malformed token")
	}

	var code codes.Code
	switch authErr.Status {
	case http.StatusUnauthorized:
		code = codes.Unauthenticated
	case http.StatusForbidden:
		code = codes.PermissionDenied
	case http.StatusBadRequest:
		code = codes.InvalidArgument
	case http.StatusInternalServerError:
		code = codes.Internal
	default:
		code = codes.Unauthenticated
	}

	return status.Error(code, authErr.Description)
}

// wrappedServerStream overrides the stream context with the validated one.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}
