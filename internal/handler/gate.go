package handler

import (
	"errors"
	"log/slog"

	"rbac/internal/middleware"
	"rbac/pkg/apperr"

	"github.com/gin-gonic/gin"
)

// Route-level role lists.
var (
	adminOnly      = []string{"Admin"}
	adminOrManager = []string{"Admin", "Manager"}
	staffRoles     = []string{"Admin", "Manager", "Viewer"}
)

// Gate bundles what route registration needs to build guards.
type Gate struct {
	Logger       *slog.Logger
	Authenticate middleware.Check
	Roles        middleware.RoleFinder
	// RateLimit wraps the unauthenticated credential routes. Nil disables it.
	RateLimit gin.HandlerFunc
}

func (g Gate) guard(checks ...middleware.Check) gin.HandlerFunc {
	return middleware.Guard(g.Logger, checks...)
}

// authenticated only establishes the caller.
func (g Gate) authenticated() gin.HandlerFunc {
	return g.guard(g.Authenticate)
}

// module authenticates, then requires module and one of roles.
func (g Gate) module(module string, roles []string, opts middleware.AuthorizeOptions, extra ...middleware.Check) gin.HandlerFunc {
	checks := []middleware.Check{g.Authenticate, middleware.CheckAccess(module), middleware.Authorize(roles, opts)}
	return g.guard(append(checks, extra...)...)
}

func (g Gate) limited() gin.HandlerFunc {
	if g.RateLimit == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return g.RateLimit
}

// fail renders err through the shared envelope and aborts.
func (g Gate) fail(c *gin.Context, err error) {
	middleware.AbortWithError(c, g.Logger, err)
}

var (
	errNoIdentity   = apperr.Unauthorized("Access denied. No token provided.")
	errNoTargetRole = errors.New("route registered without ProtectSystemRole")
)

// actorID is the authenticated caller, "" on public routes.
func actorID(c *gin.Context) string {
	if id, ok := middleware.IdentityFrom(c); ok {
		return id.UserID
	}
	return ""
}
