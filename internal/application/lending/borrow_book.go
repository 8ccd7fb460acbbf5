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

// BorrowBookUseCase 借书用例
//
// 并发控制:
//   - 同一本书的借阅在图书行锁上串行,可借数量不会被扣成负数
//   - 同一用户同一本书至多一条借阅中记录:锁内复查 + active_key唯一索引兜底
type BorrowBookUseCase struct {
	tx      shared.Transactor
	books   book.Repository
	borrows borrow.Repository
	ledger  inventory.Ledger
	cache   book.Cache
	events  shared.EventPublisher
	opts    Options
	now     func() time.Time
}

// NewBorrowBookUseCase 创建借书用例
func NewBorrowBookUseCase(
	tx shared.Transactor,
	books book.Repository,
	borrows borrow.Repository,
	ledger inventory.Ledger,
	cache book.Cache,
	events shared.EventPublisher,
	opts Options,
) *BorrowBookUseCase {
	return &BorrowBookUseCase{
		tx:      tx,
		books:   books,
		borrows: borrows,
		ledger:  ledger,
		cache:   cache,
		events:  events,
		opts:    opts,
		now:     time.Now,
	}
}

// Execute 借出一本书,返回带图书与用户信息的借阅记录
func (uc *BorrowBookUseCase) Execute(ctx context.Context, p user.Principal, bookID string) (_ *borrow.Record, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "lending.Borrow",
		attribute.String("book.id", bookID),
		attribute.String("user.id", p.UserID),
	)
	defer func() {
		tracing.End(span, err)
		metrics.RecordLending("borrow", outcome(err))
	}()

	if p.IsZero() {
		return nil, apperrors.ErrUnauthorized
	}

	// 1. 快速校验(不加锁)
	b, err := uc.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if b.AvailableQuantity <= 0 {
		return nil, book.ErrNoCopiesAvailable
	}
	if err := uc.ensureNotBorrowed(ctx, p.UserID, bookID); err != nil {
		return nil, err
	}

	// 2. 事务:扣减库存(图书行锁) -> 锁内复查 -> 写借阅记录
	record := borrow.NewRecord(p.UserID, bookID, uc.now(), uc.opts.LoanPeriod)
	err = uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		ref := inventory.Ref{BorrowRecordID: record.ID, OperatorID: p.UserID}
		if _, err := uc.ledger.Decrement(txCtx, bookID, ref); err != nil {
			return err
		}
		// 持有图书行锁后,同一本书的其他借阅已经提交或还在等待
		if err := uc.ensureNotBorrowed(txCtx, p.UserID, bookID); err != nil {
			return err
		}
		return uc.borrows.Create(txCtx, record)
	})
	if err != nil {
		return nil, err
	}

	// 3. 提交后:失效缓存、发布事件
	afterCommit(ctx, uc.cache, uc.events, borrow.EventBorrowed, record)

	zap.L().Info("借书成功",
		zap.String("record_id", record.ID),
		zap.String("user_id", p.UserID),
		zap.String("book_id", bookID),
		zap.Time("due_date", record.DueDate),
	)
	return hydrate(ctx, uc.borrows, record), nil
}

func (uc *BorrowBookUseCase) ensureNotBorrowed(ctx context.Context, userID, bookID string) error {
	_, err := uc.borrows.FindActive(ctx, userID, bookID)
	switch {
	case err == nil:
		return borrow.ErrAlreadyBorrowed
	case errors.Is(err, borrow.ErrRecordNotFound):
		return nil
	default:
		return err
	}
}
