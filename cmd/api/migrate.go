package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence/gormdb"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "创建或更新表结构",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = l.Sync() }()

		if cfg.Database.Driver == config.DriverMemory {
			return fmt.Errorf("内存存储不需要迁移")
		}

		// NewDB在auto_migrate开启时已经迁移过一次,这里强制再执行,保证关闭自动迁移时也能手动建表
		db, err := gormdb.NewDB(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = gormdb.Close(db) }()

		if err := gormdb.Migrate(db); err != nil {
			return fmt.Errorf("数据库迁移失败: %w", err)
		}
		l.Info("数据库迁移完成", zap.String("driver", cfg.Database.Driver))
		return nil
	},
}

type seedUser struct {
	username string
	email    string
	password string
	fullName string
	role     user.Role
}

var defaultUsers = []seedUser{
	{username: "admin", email: "admin@example.com", password: "admin123", fullName: "Admin User", role: user.RoleAdmin},
	{username: "user", email: "user@example.com", password: "user123", fullName: "Test User", role: user.RoleUser},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "写入默认账号,已存在的跳过",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = l.Sync() }()

		p, cleanup, err := providePersistence(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		return seedUsers(cmd.Context(), user.NewService(p.Users), defaultUsers)
	},
}

func seedUsers(ctx context.Context, svc user.Service, users []seedUser) error {
	for _, u := range users {
		_, err := svc.Register(ctx, u.username, u.email, u.password, u.fullName, u.role)
		switch {
		case err == nil:
			zap.L().Info("已创建用户", zap.String("username", u.username), zap.String("role", string(u.role)))
		case errors.Is(err, user.ErrUsernameDuplicate), errors.Is(err, user.ErrEmailDuplicate):
			zap.L().Info("用户已存在,跳过", zap.String("username", u.username))
		default:
			return fmt.Errorf("创建用户%s失败: %w", u.username, err)
		}
	}
	zap.L().Info("初始化数据完成")
	return nil
}
