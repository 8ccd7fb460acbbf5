package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xiebiao/library/pkg/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动HTTP服务",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = l.Sync() }()

		if cfg.Tracing.Enabled {
			shutdown, err := tracing.InitTracer(cmd.Context(), tracing.Options{
				ServiceName: cfg.Tracing.ServiceName,
				Endpoint:    cfg.Tracing.Endpoint,
				SampleRatio: cfg.Tracing.SampleRatio,
				Insecure:    true,
			})
			if err != nil {
				return err
			}
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					l.Warn("关闭追踪失败", zap.Error(err))
				}
			}()
		}

		engine, cleanup, err := InitializeApp(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		srv := &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      engine,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}

		errCh := make(chan error, 1)
		go func() {
			l.Info("服务启动", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case err, ok := <-errCh:
			if ok {
				return err
			}
			return nil
		case sig := <-quit:
			l.Info("收到退出信号,开始关闭", zap.String("signal", sig.String()))
		}

		// 等待进行中的事务提交后再释放连接池
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			l.Error("服务关闭超时", zap.Error(err))
			return err
		}
		l.Info("服务已关闭")
		return nil
	},
}
