package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/tubebrief/logger"
)

// GinRequestLogger returns a Gin middleware that logs every request with
// method, path, status code, and latency. Health and metrics probes are
// silently skipped. Summarization requests are long-running, so slow
// responses are only flagged above a generous threshold.
func GinRequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isProbeEndpoint(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path = path + "?" + q
		}

		fields := map[string]interface{}{
			"method":  c.Request.Method,
			"path":    path,
			"status":  status,
			"latency": latency.String(),
			"client":  c.ClientIP(),
		}
		if id := c.GetString("request_id"); id != "" {
			fields[logger.FieldRequestID] = id
		}
		if latency > 30*time.Second {
			fields["slow"] = true
		}

		switch {
		case status >= 500:
			logger.Error("Request completed", fields)
		case status >= 400:
			logger.Warn("Request completed", fields)
		default:
			logger.Info("Request completed", fields)
		}
	}
}

func isProbeEndpoint(path string) bool {
	switch path {
	case "/health", "/metrics", "/api/health", "/api/metrics":
		return true
	}
	return false
}
