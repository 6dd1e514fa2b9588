package middleware

import (
	"log/slog"
	"strconv"
	"time"

	"rbac/internal/observability/metrics"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs every request once it completes and records the HTTP metrics.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		metrics.ObserveHTTPRequest(c.Request.Method, route, strconv.Itoa(status), elapsed)

		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Int64("duration_ms", elapsed.Milliseconds()),
			slog.String("remote", c.ClientIP()),
			slog.String("request_id", RequestIDFrom(c)),
		}
		if id, ok := IdentityFrom(c); ok {
			attrs = append(attrs, slog.String("user_id", id.UserID))
		}
		logger.Info("http.request", attrs...)
	}
}
