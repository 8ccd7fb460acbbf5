package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/inventory"
	"github.com/xiebiao/library/internal/domain/shared"
	"github.com/xiebiao/library/internal/domain/user"
)

// UpdateBookUseCase 修改图书用例
// 基本信息与馆藏数量在同一个事务中修改;数量变化走库存台账,借出数量保持不变
type UpdateBookUseCase struct {
	tx          shared.Transactor
	bookService book.Service
	books       book.Repository
	ledger      inventory.Ledger
	cache       book.Cache
}

// NewUpdateBookUseCase 创建修改图书用例
func NewUpdateBookUseCase(
	tx shared.Transactor,
	bookService book.Service,
	books book.Repository,
	ledger inventory.Ledger,
	cache book.Cache,
) *UpdateBookUseCase {
	return &UpdateBookUseCase{
		tx:          tx,
		bookService: bookService,
		books:       books,
		ledger:      ledger,
		cache:       cache,
	}
}

// UpdateBookRequest 部分更新请求,nil字段不修改
type UpdateBookRequest struct {
	book.Patch
	Quantity *int
}

// Execute 修改图书,返回修改后的图书
func (uc *UpdateBookUseCase) Execute(ctx context.Context, p user.Principal, id string, req UpdateBookRequest) (*book.Book, error) {
	err := uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		// 1. 基本信息(含ISBN查重)
		b, err := uc.bookService.UpdateInfo(txCtx, id, req.Patch)
		if err != nil {
			return err
		}

		// 2. 馆藏数量
		if req.Quantity == nil || *req.Quantity == b.Quantity {
			return nil
		}
		_, err = uc.ledger.AdjustTotal(txCtx, id, *req.Quantity, inventory.Ref{OperatorID: p.UserID})
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := uc.cache.Delete(ctx, id); err != nil {
		zap.L().Warn("图书缓存失效失败", zap.String("book_id", id), zap.Error(err))
	}

	return uc.books.FindByID(ctx, id)
}
