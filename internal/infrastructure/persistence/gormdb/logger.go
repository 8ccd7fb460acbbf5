package gormdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormLogger 将GORM日志输出到zap
type gormLogger struct {
	log           *zap.Logger
	level         logger.LogLevel
	slowThreshold time.Duration
}

// NewLogger 创建GORM日志适配器
func NewLogger(l *zap.Logger, slowThreshold time.Duration) logger.Interface {
	return &gormLogger{
		log:           l.WithOptions(zap.AddCallerSkip(3)).Named("gorm"),
		level:         logger.Warn,
		slowThreshold: slowThreshold,
	}
}

func (g *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	c := *g
	c.level = level
	return &c
}

func (g *gormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Info {
		g.log.Info(fmt.Sprintf(msg, data...))
	}
}

func (g *gormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Warn {
		g.log.Warn(fmt.Sprintf(msg, data...))
	}
}

func (g *gormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Error {
		g.log.Error(fmt.Sprintf(msg, data...))
	}
}

func (g *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	}

	switch {
	// 未找到记录和唯一键冲突由仓储翻译为业务错误,不算数据库故障
	case err != nil && g.level >= logger.Error &&
		!errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, gorm.ErrDuplicatedKey):
		g.log.Error("sql error", append(fields, zap.Error(err))...)
	case g.slowThreshold > 0 && elapsed > g.slowThreshold && g.level >= logger.Warn:
		g.log.Warn("slow sql", fields...)
	case g.level >= logger.Info:
		g.log.Debug("sql", fields...)
	}
}
