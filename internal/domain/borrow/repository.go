package borrow

import (
	"context"
)

// Repository 借阅记录仓储
// 查询借阅中记录时只认 status=borrowed;判断图书能否下架时 overdue 也算占用
type Repository interface {
	// FindActive 查询(用户,图书)借阅中的记录,没有返回ErrRecordNotFound
	FindActive(ctx context.Context, userID, bookID string) (*Record, error)

	// LockActive 同FindActive,但加行锁(必须在事务内调用)
	LockActive(ctx context.Context, userID, bookID string) (*Record, error)

	// Create 新增借阅记录,唯一键冲突返回ErrAlreadyBorrowed
	Create(ctx context.Context, record *Record) error

	// MarkReturned 写回归还状态,仅当记录仍为borrowed时生效
	// 记录不存在返回ErrRecordNotFound,已不是borrowed返回ErrNotBorrowed
	MarkReturned(ctx context.Context, record *Record) error

	// HasActiveByBook 图书是否存在borrowed或overdue的记录
	HasActiveByBook(ctx context.Context, bookID string) (bool, error)

	// CountActiveByBook 图书borrowed或overdue的记录数
	CountActiveByBook(ctx context.Context, bookID string) (int, error)

	// FindByID 查询单条记录,填充图书与用户
	FindByID(ctx context.Context, id string) (*Record, error)

	// ListActiveByUser 用户借阅中的记录,按借出时间倒序
	ListActiveByUser(ctx context.Context, userID string) ([]*Record, error)

	// ListByUser 用户全部借阅历史,按借出时间倒序(已下架的图书同样返回)
	ListByUser(ctx context.Context, userID string) ([]*Record, error)
}
