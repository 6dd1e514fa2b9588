package middleware

import (
	"log/slog"
	"net/http"

	"rbac/internal/model"
	"rbac/pkg/response"

	"github.com/gin-gonic/gin"
)

const stateKey = "rbac.pipeline.state"

// Guard runs checks for the current request. State established by guards earlier in the chain is
// picked up, so a group can authenticate once and individual routes add their own checks.
func Guard(logger *slog.Logger, checks ...Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := StateFrom(c)
		st.Authorization = c.GetHeader("Authorization")
		st.TargetID = c.Param("id")

		next, err := Run(c.Request.Context(), st, checks...)
		if err != nil {
			AbortWithError(c, logger, err)
			return
		}
		c.Set(stateKey, next)
		c.Next()
	}
}

// StateFrom returns the pipeline state stored on the request, or an empty one.
func StateFrom(c *gin.Context) State {
	if v, ok := c.Get(stateKey); ok {
		if st, ok := v.(State); ok {
			return st
		}
	}
	return State{}
}

// IdentityFrom returns the authenticated caller.
func IdentityFrom(c *gin.Context) (*Identity, bool) {
	st := StateFrom(c)
	return st.Identity, st.Identity != nil
}

// TargetRoleFrom returns the role loaded by ProtectSystemRole.
func TargetRoleFrom(c *gin.Context) (*model.Role, bool) {
	st := StateFrom(c)
	return st.TargetRole, st.TargetRole != nil
}

// AbortWithError classifies err, writes the error envelope and stops the chain. Internal
// failures are logged with their cause; the client only sees the generic message.
func AbortWithError(c *gin.Context, logger *slog.Logger, err error) {
	code, body := response.FromError(err)
	if code >= http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.String("request_id", RequestIDFrom(c)),
			slog.Any("error", err),
		)
	}
	c.AbortWithStatusJSON(code, body)
}
