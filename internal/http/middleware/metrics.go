package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/feedback-backend/internal/observability"
)

const metricsRoute = "/metrics"

// Metrics records request count, latency and in-flight gauge per matched
// route. Scrapes of the metrics endpoint itself are not counted.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil || c.FullPath() == metricsRoute {
			c.Next()
			return
		}
		m.InflightInc()
		began := time.Now()
		c.Next()
		m.InflightDec()
		m.ObserveAPI(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(began))
	}
}
