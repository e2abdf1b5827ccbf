package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinErrorHandler is called by the gin guard when a request is rejected.
// The err is always resolvable to *Error via errors.As.
type GinErrorHandler func(c *gin.Context, err error)

// RequirePermissionGin returns a gin handler enforcing the same chain as
// RequirePermission: extract -> verify -> permission check. On admission the
// decoded claims are placed in the request context and the chain continues;
// on rejection the request is aborted and never reaches the route handler.
func (m *Middleware) RequirePermissionGin(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := m.check(c.Request, permission)
		if err != nil {
			m.ginErrorHandler(c, err)
			c.Abort()
			return
		}

		c.Request = c.Request.Clone(ContextWithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

// DefaultGinErrorHandler renders a rejection using the Error's status code.
func DefaultGinErrorHandler(c *gin.Context, err error) {
	var authErr *Error
	if !errors.As(err, &authErr) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"message": "Something went wrong while checking the token.",
		})
		return
	}

	c.AbortWithStatusJSON(authErr.Status, gin.H{
		"code":    authErr.Code,
		"message": authErr.Description,
	})
}
