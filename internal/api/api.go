// Package api exposes the agency's REST surface. Every resource operation is
// registered behind the authorization middleware with the permission it
// requires; the package also owns translating failures into the service's
// response envelope.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/castingworks/casting-agency/internal/auth"
	"github.com/castingworks/casting-agency/internal/store"
)

// Server wires the HTTP routes to the store behind the auth middleware.
type Server struct {
	store  store.Store
	logger logrus.FieldLogger
	engine *gin.Engine
}

// New builds the API server. The validate function is the token verifier the
// guards run; extra auth options (metrics, tracing) may be passed through.
// The server always installs its own error rendering and logging on the
// middleware, after the caller's options.
func New(st store.Store, validate auth.ValidateToken, logger logrus.FieldLogger, authOpts ...auth.Option) (*Server, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	opts := append(authOpts,
		auth.WithLogger(auth.NewLogrusLogger(logger)),
		auth.WithGinErrorHandler(renderAuthError),
	)
	guard, err := auth.New(validate, opts...)
	if err != nil {
		return nil, err
	}

	s := &Server{
		store:  st,
		logger: logger.WithField("component", "api"),
		engine: gin.New(),
	}
	s.routes(guard)

	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes(guard *auth.Middleware) {
	s.engine.Use(gin.Recovery(), s.requestLogger(), corsMiddleware())

	s.engine.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "Resource not found")
	})

	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.engine.GET("/actors", guard.RequirePermissionGin("get:actors"), s.listActors)
	s.engine.POST("/actors", guard.RequirePermissionGin("post:actors"), s.createActor)
	s.engine.PATCH("/actors/:id", guard.RequirePermissionGin("patch:actors"), s.updateActor)
	s.engine.DELETE("/actors/:id", guard.RequirePermissionGin("delete:actors"), s.deleteActor)

	s.engine.GET("/movies", guard.RequirePermissionGin("get:movies"), s.listMovies)
	s.engine.POST("/movies", guard.RequirePermissionGin("post:movies"), s.createMovie)
	s.engine.PATCH("/movies/:id", guard.RequirePermissionGin("patch:movies"), s.updateMovie)
	s.engine.DELETE("/movies/:id", guard.RequirePermissionGin("delete:movies"), s.deleteMovie)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Debug("received request")
		c.Next()
	}
}

// corsMiddleware adds the CORS response headers on every response and
// short-circuits preflight requests before any guard runs.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// respondError renders the service's error envelope.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   status,
		"message": message,
	})
}

// renderAuthError translates an authorization rejection into the error
// envelope, using the failure's own status code and description.
func renderAuthError(c *gin.Context, err error) {
	var authErr *auth.Error
	if !errors.As(err, &authErr) {
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondError(c, authErr.Status, authErr.Description)
}
