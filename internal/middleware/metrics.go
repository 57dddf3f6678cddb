package middleware

import (
	"strconv"
	"time"

	"quiz-ai-backend/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records request counts and latency labelled by route template, so
// /quizzes/1 and /quizzes/2 share a series.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
