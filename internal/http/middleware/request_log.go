package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/feedback-backend/internal/platform/ctxutil"
	"github.com/yungbote/feedback-backend/internal/platform/logger"
)

// quietRoutes are polled often; they log at debug unless they fail.
var quietRoutes = map[string]bool{
	"/healthcheck": true,
	"/metrics":     true,
}

// RequestLogger writes one structured line per request once the handler
// chain has finished.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	log = log.With("component", "http")
	return func(c *gin.Context) {
		began := time.Now()
		c.Next()

		route := c.FullPath()
		status := c.Writer.Status()
		kv := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"path", c.Request.URL.Path,
			"status", status,
			"bytes", c.Writer.Size(),
			"duration_ms", time.Since(began).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		kv = append(kv, ctxutil.LogFields(c.Request.Context())...)
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			kv = append(kv, "errors", errs.String())
		}

		switch {
		case status >= 500:
			log.Error("request failed", kv...)
		case status >= 400:
			log.Warn("request rejected", kv...)
		case quietRoutes[route]:
			log.Debug("request served", kv...)
		default:
			log.Info("request served", kv...)
		}
	}
}
