package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ValidateToken takes a raw bearer token and verifies it, returning the
// decoded claim set. All failures must be reported as *Error values so the
// middleware can render them; anything else is treated as an internal error.
type ValidateToken func(ctx context.Context, token string) (*Claims, error)

// ErrorHandler is called when a request is rejected by the middleware. The
// err is always resolvable to *Error via errors.As.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Middleware guards protected operations. Each request runs the chain
// extract -> verify -> permission check; the first failing stage rejects the
// request with its originating *Error and the remaining stages are skipped.
type Middleware struct {
	validateToken   ValidateToken
	tokenExtractor  TokenExtractor
	errorHandler    ErrorHandler
	ginErrorHandler GinErrorHandler
	logger          Logger
	tracer          Tracer
	metrics         Metrics
}

// New constructs a Middleware around the given token validation function.
func New(validateToken ValidateToken, opts ...Option) (*Middleware, error) {
	if validateToken == nil {
		return nil, ErrValidateTokenNil
	}

	m := &Middleware{
		validateToken:   validateToken,
		tokenExtractor:  AuthHeaderTokenExtractor,
		errorHandler:    DefaultErrorHandler,
		ginErrorHandler: DefaultGinErrorHandler,
		tracer:          &NoopTracer{},
		metrics:         &NoopMetrics{},
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	return m, nil
}

// RequirePermission wraps next so that it only runs for requests carrying a
// valid token that grants the required permission. An empty permission
// requires a valid token but no specific grant. On admission the decoded
// claims are placed in the request context.
func (m *Middleware) RequirePermission(permission string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.check(r, permission)
		if err != nil {
			m.errorHandler(w, r, err)
			return
		}

		r = r.Clone(ContextWithClaims(r.Context(), claims))
		next.ServeHTTP(w, r)
	})
}

// check runs the per-request authorization chain and returns the decoded
// claims on admission.
func (m *Middleware) check(r *http.Request, permission string) (*Claims, error) {
	span := m.tracer.StartSpan("auth.check")
	defer span.Finish()
	span.SetTag("permission", permission)

	token, err := m.tokenExtractor(r)
	if err != nil {
		return nil, m.reject(r, "extract", err)
	}

	claims, err := m.validateToken(r.Context(), token)
	if err != nil {
		return nil, m.reject(r, "verify", err)
	}

	if err := CheckPermission(permission, claims); err != nil {
		return nil, m.reject(r, "permission", err)
	}

	if m.logger != nil {
		m.logger.Debugf("request admitted: method=%s path=%s subject=%s", r.Method, r.URL.Path, claims.Subject)
	}
	m.metrics.IncCounter("auth_requests_total", map[string]string{"outcome": "admitted"})

	return claims, nil
}

// reject normalizes a stage failure into an *Error, logs it and counts it.
func (m *Middleware) reject(r *http.Request, stage string, err error) error {
	var authErr *Error
	if !errors.As(err, &authErr) {
		authErr = WrapError(CodeInvalidHeader, "Unable to parse authentication token.", http.StatusBadRequest, err)
	}

	if m.logger != nil {
		m.logger.Warnf("request rejected at %s stage: method=%s path=%s code=%s: %v",
			stage, r.Method, r.URL.Path, authErr.Code, err)
	}
	m.metrics.IncCounter("auth_requests_total", map[string]string{"outcome": authErr.Code})

	return authErr
}

// DefaultErrorHandler renders a rejection as a JSON response using the
// Error's own status code. Services with their own response envelope should
// install a custom handler via WithErrorHandler.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Set("Content-Type", "application/json")

	var authErr *Error
	if !errors.As(err, &authErr) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Something went wrong while checking the token."}`))
		return
	}

	w.WriteHeader(authErr.Status)
	_, _ = fmt.Fprintf(w, `{"code":%q,"message":%q}`, authErr.Code, authErr.Description)
}
