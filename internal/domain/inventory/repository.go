package inventory

import "context"

// LogRepository 库存日志仓储
type LogRepository interface {
	// Create 追加一条日志(与库存变更处于同一事务)
	Create(ctx context.Context, log *Log) error

	// ListByBook 按时间倒序查询指定图书的日志,limit<=0时返回全部
	ListByBook(ctx context.Context, bookID string, limit int) ([]*Log, error)
}
