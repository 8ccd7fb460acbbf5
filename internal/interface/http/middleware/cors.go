package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/internal/infrastructure/config"
)

var (
	corsAllowMethods = strings.Join([]string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}, ", ")
	corsAllowHeaders = strings.Join([]string{"Origin", "Content-Type", "Authorization", headerRequestID}, ", ")
)

// CORS 跨域中间件
// allow_origins为空时不输出CORS头;包含"*"时允许任意来源
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" || len(cfg.AllowOrigins) == 0 {
			c.Next()
			return
		}

		allowed := ""
		for _, o := range cfg.AllowOrigins {
			if o == "*" || o == origin {
				allowed = o
				break
			}
		}
		if allowed == "" {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		c.Header("Access-Control-Allow-Origin", allowed)
		c.Header("Access-Control-Allow-Methods", corsAllowMethods)
		c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
		c.Header("Access-Control-Expose-Headers", headerRequestID)
		c.Header("Access-Control-Max-Age", "86400")
		if allowed != "*" {
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}

		// 预检请求直接返回
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
