package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/pkg/metrics"
)

// Metrics HTTP指标中间件
// path使用路由模板(/api/books/:id),避免标签基数爆炸;未匹配路由统一记为unmatched
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.IncInProgress()
		defer metrics.DecInProgress()

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveHTTP(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
