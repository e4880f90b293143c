package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"promptforge/internal/infrastructure/observability"
)

// LoggingMiddleware writes one access log line per request. The level follows
// the status class: Info below 400, Warn for 4xx and Error for 5xx.
func LoggingMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		statusCode := c.Writer.Status()
		logEvent := logger.Info()
		switch {
		case statusCode >= 500:
			logEvent = logger.Error()
		case statusCode >= 400:
			logEvent = logger.Warn()
		}

		if traceID := observability.TraceID(c.Request.Context()); traceID != "" {
			logEvent = logEvent.Str("trace_id", traceID)
		}
		if requestID := RequestIDFromContext(c); requestID != "" {
			logEvent = logEvent.Str("request_id", requestID)
		}
		if subject := c.GetString("user_subject"); subject != "" {
			logEvent = logEvent.Str("subject", subject)
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			logEvent = logEvent.Str("error", errs.String())
		}

		logEvent.
			Str("client_ip", c.ClientIP()).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("route", c.FullPath()).
			Int("status", statusCode).
			Dur("latency", time.Since(start)).
			Int("bytes", c.Writer.Size()).
			Msg("http request")
	}
}
