package server

import (
	"net/http"
	"time"

	"sportclub/internal/logger"

	"github.com/gin-gonic/gin"
)

// RequestLoggingMiddleware writes one line per request. Server errors log at
// error level, client errors at warn, everything else at info.
func RequestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		entry := logger.With(
			"method", c.Request.Method,
			"route", routeLabel(c),
			"path", path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"bytes", c.Writer.Size(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			entry = entry.With("errors", c.Errors.String())
		}

		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("HTTP request")
		case status >= http.StatusBadRequest:
			entry.Warn("HTTP request")
		default:
			entry.Info("HTTP request")
		}
	}
}
