package auth

import "errors"

// Option configures the Middleware.
type Option func(*Middleware) error

// Sentinel errors for configuration validation.
var (
	ErrValidateTokenNil  = errors.New("validateToken cannot be nil")
	ErrTokenExtractorNil = errors.New("tokenExtractor cannot be nil")
	ErrErrorHandlerNil   = errors.New("errorHandler cannot be nil")
)

// WithTokenExtractor sets the function used to pull the bearer token out of
// the request.
//
// Default: AuthHeaderTokenExtractor
func WithTokenExtractor(e TokenExtractor) Option {
	return func(m *Middleware) error {
		if e == nil {
			return ErrTokenExtractorNil
		}
		m.tokenExtractor = e
		return nil
	}
}

// WithErrorHandler sets the handler called when a request is rejected.
//
// Default: DefaultErrorHandler
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *Middleware) error {
		if h == nil {
			return ErrErrorHandlerNil
		}
		m.errorHandler = h
		return nil
	}
}

// WithGinErrorHandler sets the handler used by the gin guard when a request
// is rejected.
//
// Default: DefaultGinErrorHandler
func WithGinErrorHandler(h GinErrorHandler) Option {
	return func(m *Middleware) error {
		if h == nil {
			return ErrErrorHandlerNil
		}
		m.ginErrorHandler = h
		return nil
	}
}

// WithLogger sets an optional logger for the middleware.
func WithLogger(l Logger) Option {
	return func(m *Middleware) error {
		m.logger = l
		return nil
	}
}

// WithTracer sets an optional tracer for the middleware.
//
// Default: NoopTracer
func WithTracer(t Tracer) Option {
	return func(m *Middleware) error {
		m.tracer = t
		return nil
	}
}

// WithMetrics sets an optional metrics sink for the middleware.
//
// Default: NoopMetrics
func WithMetrics(mt Metrics) Option {
	return func(m *Middleware) error {
		m.metrics = mt
		return nil
	}
}
