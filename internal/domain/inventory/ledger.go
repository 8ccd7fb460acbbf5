package inventory

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/shared"
)

// Ledger 库存台账
// 图书可借数量的唯一写入口,每个操作都在事务内对图书行加锁(SELECT ... FOR UPDATE)后读-改-写,
// 并在同一事务内追加库存日志。调用方已开启事务时加入该事务,锁一直持有到外层提交。
type Ledger interface {
	// Decrement 借出一本,无可借副本返回book.ErrNoCopiesAvailable
	Decrement(ctx context.Context, bookID string, ref Ref) (*book.Book, error)

	// Increment 归还一本,副本已全部在馆返回book.ErrAllCopiesAvailable
	Increment(ctx context.Context, bookID string, ref Ref) (*book.Book, error)

	// Reclaim 归还一本,outstanding为本次归还后该书仍未归还的借阅数
	// 馆藏总数被调低到借出数量以下时,超出部分的归还只记日志,不增加可借数量
	Reclaim(ctx context.Context, bookID string, outstanding int, ref Ref) (*book.Book, error)

	// AdjustTotal 修改馆藏总数,借出数量保持不变
	AdjustTotal(ctx context.Context, bookID string, newQuantity int, ref Ref) (*book.Book, error)
}

type ledger struct {
	tx    shared.Transactor
	books book.Repository
	logs  LogRepository
}

// NewLedger 创建库存台账
func NewLedger(tx shared.Transactor, books book.Repository, logs LogRepository) Ledger {
	return &ledger{tx: tx, books: books, logs: logs}
}

func (l *ledger) Decrement(ctx context.Context, bookID string, ref Ref) (*book.Book, error) {
	return l.apply(ctx, bookID, ChangeTypeBorrow, ref, func(b *book.Book) error {
		return b.Lend()
	})
}

func (l *ledger) Increment(ctx context.Context, bookID string, ref Ref) (*book.Book, error) {
	return l.apply(ctx, bookID, ChangeTypeReturn, ref, func(b *book.Book) error {
		return b.Restock()
	})
}

func (l *ledger) Reclaim(ctx context.Context, bookID string, outstanding int, ref Ref) (*book.Book, error) {
	return l.apply(ctx, bookID, ChangeTypeReturn, ref, func(b *book.Book) error {
		b.Reclaim(outstanding)
		return nil
	})
}

func (l *ledger) AdjustTotal(ctx context.Context, bookID string, newQuantity int, ref Ref) (*book.Book, error) {
	return l.apply(ctx, bookID, ChangeTypeAdjust, ref, func(b *book.Book) error {
		return b.AdjustQuantity(newQuantity)
	})
}

// apply 加锁 -> 领域规则校验 -> 写回 -> 记日志
func (l *ledger) apply(ctx context.Context, bookID string, t ChangeType, ref Ref, mutate func(*book.Book) error) (*book.Book, error) {
	var result *book.Book
	err := l.tx.Transaction(ctx, func(ctx context.Context) error {
		b, err := l.books.LockByID(ctx, bookID)
		if err != nil {
			return err
		}

		before := snapshotOf(b)
		if err := mutate(b); err != nil {
			return err
		}

		if err := l.books.SaveStock(ctx, b); err != nil {
			return err
		}
		if err := l.logs.Create(ctx, newLog(t, before, b, ref)); err != nil {
			return err
		}

		result = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
