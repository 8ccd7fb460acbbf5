package book

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/internal/domain/shared"
	"github.com/xiebiao/library/internal/domain/user"
)

// DeleteBookUseCase 下架图书用例(软删除)
// 锁住图书行后再检查借阅,与借书互斥:检查通过后不会再有新的借阅记录
type DeleteBookUseCase struct {
	tx      shared.Transactor
	books   book.Repository
	borrows borrow.Repository
	cache   book.Cache
	events  shared.EventPublisher
}

// NewDeleteBookUseCase 创建下架用例
func NewDeleteBookUseCase(
	tx shared.Transactor,
	books book.Repository,
	borrows borrow.Repository,
	cache book.Cache,
	events shared.EventPublisher,
) *DeleteBookUseCase {
	return &DeleteBookUseCase{tx: tx, books: books, borrows: borrows, cache: cache, events: events}
}

// DeletedEvent 下架事件载荷
type DeletedEvent struct {
	BookID     string    `json:"bookId"`
	ISBN       string    `json:"isbn"`
	OperatorID string    `json:"operatorId"`
	DeletedAt  time.Time `json:"deletedAt"`
}

// Execute 下架图书,存在未归还的借阅时返回冲突
func (uc *DeleteBookUseCase) Execute(ctx context.Context, p user.Principal, id string) error {
	var isbn string
	err := uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		b, err := uc.books.LockByID(txCtx, id)
		if err != nil {
			return err
		}
		inUse, err := uc.borrows.HasActiveByBook(txCtx, id)
		if err != nil {
			return err
		}
		if inUse {
			return book.ErrBookInUse
		}
		isbn = b.ISBN
		return uc.books.SoftDelete(txCtx, id)
	})
	if err != nil {
		return err
	}

	if err := uc.cache.Delete(ctx, id); err != nil {
		zap.L().Warn("图书缓存失效失败", zap.String("book_id", id), zap.Error(err))
	}
	evt := DeletedEvent{BookID: id, ISBN: isbn, OperatorID: p.UserID, DeletedAt: time.Now()}
	if err := uc.events.Publish(ctx, book.EventDeleted, evt); err != nil {
		zap.L().Warn("下架事件发布失败", zap.String("book_id", id), zap.Error(err))
	}

	zap.L().Info("图书已下架", zap.String("book_id", id), zap.String("operator_id", p.UserID))
	return nil
}
