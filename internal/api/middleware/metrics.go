package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yizeng/gab/gin/gorm/storefront/internal/metrics"
)

// HTTPMetrics records every request under its route template, so path
// parameters do not explode label cardinality.
func HTTPMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(ctx.Request.Method, route, strconv.Itoa(ctx.Writer.Status()), time.Since(start))
	}
}
