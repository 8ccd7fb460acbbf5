// Package router 注册HTTP路由
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/xiebiao/library/docs" // swagger文档
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
)

// Handlers 路由用到的全部处理器
type Handlers struct {
	User    *handler.UserHandler
	Book    *handler.BookHandler
	Lending *handler.LendingHandler
	Health  *handler.HealthHandler
}

// New 创建Gin引擎并注册路由
//
// 中间件顺序:请求ID/日志 -> panic恢复 -> 追踪 -> 指标 -> CORS
func New(cfg *config.Config, auth *middleware.AuthMiddleware, h Handlers) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	r.Use(middleware.Logger(), middleware.Recovery())
	if cfg.Tracing.Enabled {
		r.Use(middleware.Tracing())
	}
	r.Use(middleware.Metrics(), middleware.CORS(cfg.CORS))

	// 运维接口
	r.GET("/health", h.Health.Ready)
	r.GET("/health/live", h.Health.Live)
	r.GET("/health/ready", h.Health.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.Server.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// 封面静态文件
	r.Static(cfg.Upload.URLPrefix, cfg.Upload.Dir)

	api := r.Group("/api")
	requireAuth := auth.RequireAuth()

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.User.Register)
		authGroup.POST("/login", h.User.Login)
		authGroup.POST("/refresh", h.User.Refresh)
		authGroup.POST("/logout", requireAuth, h.User.Logout)
		authGroup.GET("/profile", requireAuth, h.User.Profile)
	}

	books := api.Group("/books", requireAuth)
	{
		books.POST("", h.Book.Create)
		books.GET("", h.Book.List)

		// 静态路径与/:id并存
		books.GET("/user/borrowed", h.Lending.Borrowed)
		books.GET("/user/history", h.Lending.History)

		books.GET("/:id", h.Book.Get)
		books.PATCH("/:id", h.Book.Update)
		books.DELETE("/:id", h.Book.Delete)
		books.POST("/:id/cover", h.Book.UploadCover)
		books.GET("/:id/inventory-logs", h.Book.InventoryLogs)

		books.POST("/:id/borrow", h.Lending.Borrow)
		books.POST("/:id/return", h.Lending.Return)
	}

	return r
}
