// Package lending 借阅/归还用例
//
// 借还流程都分两段:
//  1. 事务外的快速校验(图书是否存在、是否有可借副本、是否已借),给出友好提示
//  2. 事务内对图书行加锁后再次校验并写入,保证并发下的正确性
//
// 提交之后才失效缓存、发布事件;这两步失败只记日志,不影响已提交的借阅结果。
package lending

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/internal/domain/shared"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

const tracerName = "library/lending"

// Options 借阅规则配置
type Options struct {
	LoanPeriod time.Duration // 借期,<=0 时使用borrow.DefaultLoanPeriod
}

// outcome 指标中的结果标签:success / 业务错误码 / error
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	if appErr := apperrors.GetAppError(err); appErr != nil && appErr.Code != apperrors.ErrCodeInternal {
		return strconv.Itoa(appErr.Code)
	}
	return "error"
}

// afterCommit 失效图书缓存并发布借阅事件
func afterCommit(ctx context.Context, cache book.Cache, events shared.EventPublisher, key string, rec *borrow.Record) {
	if err := cache.Delete(ctx, rec.BookID); err != nil {
		zap.L().Warn("图书缓存失效失败", zap.String("book_id", rec.BookID), zap.Error(err))
	}
	if err := events.Publish(ctx, key, borrow.EventOf(rec)); err != nil {
		zap.L().Warn("借阅事件发布失败",
			zap.String("event", key),
			zap.String("record_id", rec.ID),
			zap.Error(err),
		)
	}
}

// hydrate 重新读取记录以带上图书与用户信息,读取失败时退回未填充的记录
func hydrate(ctx context.Context, borrows borrow.Repository, rec *borrow.Record) *borrow.Record {
	full, err := borrows.FindByID(ctx, rec.ID)
	if err != nil {
		zap.L().Warn("读取借阅记录失败", zap.String("record_id", rec.ID), zap.Error(err))
		return rec
	}
	return full
}
