package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Checker 依赖健康检查
type Checker func(ctx context.Context) error

// HealthHandler 健康检查
// live只表示进程存活;ready检查数据库、Redis等依赖
type HealthHandler struct {
	checks  map[string]Checker
	timeout time.Duration
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(checks map[string]Checker) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

// Live 存活检查
// @Summary  存活检查
// @Tags     健康检查
// @Success  200 {object} map[string]string
// @Router   /health/live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready 就绪检查,任一依赖失败返回503
// @Summary  就绪检查
// @Tags     健康检查
// @Success  200 {object} map[string]interface{}
// @Failure  503 {object} map[string]interface{}
// @Router   /health/ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status, code := "ok", http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status, code = "unavailable", http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	c.JSON(code, gin.H{"status": status, "checks": results})
}
