package main

import (
	"context"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/application/lending"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/internal/domain/inventory"
	"github.com/xiebiao/library/internal/domain/shared"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/messaging"
	"github.com/xiebiao/library/internal/infrastructure/persistence/gormdb"
	"github.com/xiebiao/library/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/mq"
)

// Persistence 按database.driver选择的存储实现
// memory驱动只用于本地开发,重启后数据丢失
type Persistence struct {
	Tx      shared.Transactor
	Books   book.Repository
	Borrows borrow.Repository
	Users   user.Repository
	Logs    inventory.LogRepository
	Ping    handler.Checker
}

// providePersistence 创建存储层,cleanup关闭连接池
func providePersistence(cfg *config.Config) (*Persistence, func(), error) {
	if cfg.Database.Driver == config.DriverMemory {
		zap.L().Warn("使用内存存储,数据不会持久化")
		s := memory.NewStore()
		return &Persistence{
			Tx:      s,
			Books:   memory.NewBookRepository(s),
			Borrows: memory.NewBorrowRepository(s),
			Users:   memory.NewUserRepository(s),
			Logs:    memory.NewInventoryLogRepository(s),
			Ping:    func(context.Context) error { return nil },
		}, func() {}, nil
	}

	db, err := gormdb.NewDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := gormdb.Close(db); err != nil {
			zap.L().Error("关闭数据库失败", zap.Error(err))
		}
	}

	return &Persistence{
		Tx:      gormdb.NewTxManager(db, cfg.Lending),
		Books:   gormdb.NewBookRepository(db),
		Borrows: gormdb.NewBorrowRepository(db),
		Users:   gormdb.NewUserRepository(db),
		Logs:    gormdb.NewInventoryLogRepository(db),
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}, cleanup, nil
}

// provideRedis redis.enabled=false时返回nil
func provideRedis(cfg *config.Config) (*goredis.Client, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// provideBlacklist 有Redis时黑名单放在Redis,否则放在进程内
// 多实例部署必须启用Redis,否则注销只对当前实例生效
func provideBlacklist(client *goredis.Client) user.TokenBlacklist {
	if client == nil {
		return memory.NewTokenBlacklist()
	}
	return redis.NewSessionStore(client)
}

func provideBookCache(cfg *config.Config, client *goredis.Client) book.Cache {
	if !cfg.Cache.Enabled || client == nil {
		return redis.NoopBookCache{}
	}
	return redis.NewBookCache(client, cfg.Cache.BookTTL)
}

// provideEventPublisher mq.enabled=false时事件直接丢弃
func provideEventPublisher(cfg *config.Config) (shared.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		return messaging.NoopPublisher{}, func() {}, nil
	}
	pub, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := pub.Close(); err != nil {
			zap.L().Warn("关闭RabbitMQ连接失败", zap.Error(err))
		}
	}
	return messaging.NewEventPublisher(pub), cleanup, nil
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire, cfg.JWT.RefreshTokenExpire)
}

func provideLendingOptions(cfg *config.Config) lending.Options {
	return lending.Options{LoanPeriod: cfg.Lending.LoanPeriod}
}

// provideHealthChecks 就绪检查项,Redis未启用时不检查
func provideHealthChecks(p *Persistence, client *goredis.Client) map[string]handler.Checker {
	checks := map[string]handler.Checker{"database": p.Ping}
	if client != nil {
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}
	return checks
}
