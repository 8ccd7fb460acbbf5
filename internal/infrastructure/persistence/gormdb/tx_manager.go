package gormdb

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/infrastructure/config"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
)

type txKey struct{}

// TxManager 事务管理器
// 1. 通过context传递事务DB,Repository的conn方法从ctx取出同一事务
// 2. ctx中已有事务时直接加入,不开启新事务(行锁持有到最外层提交)
// 3. 最外层事务遇到锁等待超时/死锁时整体重试,超过次数返回ErrTransactionFailure
type TxManager struct {
	db              *gorm.DB
	maxAttempts     int
	initialInterval time.Duration
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB, cfg config.LendingConfig) *TxManager {
	attempts := cfg.MaxTxAttempts
	if attempts < 1 {
		attempts = 1
	}
	interval := cfg.RetryInitialInterval
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	return &TxManager{db: db, maxAttempts: attempts, initialInterval: interval}
}

// Transaction 执行事务
// fn返回error时ROLLBACK,返回nil时COMMIT;重试时fn会被再次调用,fn内不要有事务外的副作用
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	attempt := 0
	op := func() error {
		attempt++
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(context.WithValue(ctx, txKey{}, tx))
		})
		if err == nil {
			return nil
		}
		if reason := lockFailureReason(err); reason != "" {
			metrics.IncTransactionRetry(reason)
			zap.L().Warn("事务锁冲突",
				zap.Int("attempt", attempt),
				zap.String("reason", reason),
				zap.Error(err),
			)
			return err
		}
		return backoff.Permanent(err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = m.initialInterval
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(m.maxAttempts-1)), ctx)

	err := backoff.Retry(op, policy)
	if err != nil && isLockFailure(err) {
		return apperrors.ErrTransactionFailure.WithCause(err)
	}
	return err
}

// conn 从context获取事务DB,如果没有则使用默认DB
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
