package middleware

import (
	"github.com/gin-gonic/gin"

	prom "github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/prometheus"
)

// Metrics counts requests by method, route and status code. Unmatched routes
// are counted under "unmatched" to keep label cardinality bounded.
func Metrics(metrics *prom.AnalysisMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status())
	}
}

//Personal.AI order the ending
