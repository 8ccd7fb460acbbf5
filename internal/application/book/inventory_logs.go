package book

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/inventory"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 200
)

// ListInventoryLogsUseCase 查询图书的库存变更记录
type ListInventoryLogsUseCase struct {
	books book.Repository
	logs  inventory.LogRepository
}

// NewListInventoryLogsUseCase 创建库存日志查询用例
func NewListInventoryLogsUseCase(books book.Repository, logs inventory.LogRepository) *ListInventoryLogsUseCase {
	return &ListInventoryLogsUseCase{books: books, logs: logs}
}

// Execute 按时间倒序返回最近limit条日志
func (uc *ListInventoryLogsUseCase) Execute(ctx context.Context, bookID string, limit int) ([]*inventory.Log, error) {
	if _, err := uc.books.FindByID(ctx, bookID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultLogLimit
	}
	if limit > maxLogLimit {
		limit = maxLogLimit
	}
	return uc.logs.ListByBook(ctx, bookID, limit)
}
