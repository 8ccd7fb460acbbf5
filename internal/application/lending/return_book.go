package lending

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/internal/domain/inventory"
	"github.com/xiebiao/library/internal/domain/shared"
	"github.com/xiebiao/library/internal/domain/user"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

// ReturnBookUseCase 还书用例
// 加锁顺序与借书一致:先图书行,后借阅记录
type ReturnBookUseCase struct {
	tx      shared.Transactor
	books   book.Repository
	borrows borrow.Repository
	ledger  inventory.Ledger
	cache   book.Cache
	events  shared.EventPublisher
	now     func() time.Time
}

// NewReturnBookUseCase 创建还书用例
func NewReturnBookUseCase(
	tx shared.Transactor,
	books book.Repository,
	borrows borrow.Repository,
	ledger inventory.Ledger,
	cache book.Cache,
	events shared.EventPublisher,
) *ReturnBookUseCase {
	return &ReturnBookUseCase{
		tx:      tx,
		books:   books,
		borrows: borrows,
		ledger:  ledger,
		cache:   cache,
		events:  events,
		now:     time.Now,
	}
}

// Execute 归还一本书
func (uc *ReturnBookUseCase) Execute(ctx context.Context, p user.Principal, bookID string) (_ *borrow.Record, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "lending.Return",
		attribute.String("book.id", bookID),
		attribute.String("user.id", p.UserID),
	)
	defer func() {
		tracing.End(span, err)
		metrics.RecordLending("return", outcome(err))
	}()

	if p.IsZero() {
		return nil, apperrors.ErrUnauthorized
	}

	// 1. 快速校验
	if _, err := uc.borrows.FindActive(ctx, p.UserID, bookID); err != nil {
		return nil, notBorrowed(err)
	}

	// 2. 事务:锁图书 -> 锁借阅记录 -> 标记归还 -> 收回副本
	var record *borrow.Record
	err = uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		if _, err := uc.books.LockByID(txCtx, bookID); err != nil {
			return err
		}
		rec, err := uc.borrows.LockActive(txCtx, p.UserID, bookID)
		if err != nil {
			return notBorrowed(err)
		}
		if err := rec.MarkReturned(uc.now()); err != nil {
			return err
		}
		if err := uc.borrows.MarkReturned(txCtx, rec); err != nil {
			return err
		}
		// 馆藏总数可能被调低到借出数量以下,按剩余未归还数量决定是否补回可借数量
		outstanding, err := uc.borrows.CountActiveByBook(txCtx, bookID)
		if err != nil {
			return err
		}
		ref := inventory.Ref{BorrowRecordID: rec.ID, OperatorID: p.UserID}
		if _, err := uc.ledger.Reclaim(txCtx, bookID, outstanding, ref); err != nil {
			return err
		}
		record = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	afterCommit(ctx, uc.cache, uc.events, borrow.EventReturned, record)

	zap.L().Info("还书成功",
		zap.String("record_id", record.ID),
		zap.String("user_id", p.UserID),
		zap.String("book_id", bookID),
	)
	return hydrate(ctx, uc.borrows, record), nil
}

// notBorrowed 没有借阅中记录统一报"未借阅该书"
func notBorrowed(err error) error {
	if errors.Is(err, borrow.ErrRecordNotFound) {
		return borrow.ErrNotBorrowed
	}
	return err
}
