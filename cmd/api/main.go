// @title           Library API
// @version         1.0
// @description     图书借阅系统后端:图书目录、借阅与归还、库存流水
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/logger"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/validator"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "library",
	Short: "Library lending backend",
	Long: `图书借阅系统后端

子命令:
  serve    启动HTTP服务
  migrate  创建/更新表结构
  seed     写入默认账号(admin/admin123, user/user123)`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径(默认 ./config/config.yaml)")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap 加载配置并初始化日志,各子命令共用
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return nil, nil, err
	}

	l, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}

	metrics.InitMetrics()
	if err := validator.Setup(); err != nil {
		return nil, nil, fmt.Errorf("注册校验规则失败: %w", err)
	}

	l.Info("配置加载成功",
		zap.Int("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("driver", cfg.Database.Driver),
		zap.Bool("redis", cfg.Redis.Enabled),
		zap.Bool("mq", cfg.MQ.Enabled),
	)
	return cfg, l, nil
}
