package lending

import (
	"context"

	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/internal/domain/user"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// ListBorrowsUseCase 查询当前用户的借阅记录
type ListBorrowsUseCase struct {
	borrows borrow.Repository
}

// NewListBorrowsUseCase 创建借阅查询用例
func NewListBorrowsUseCase(borrows borrow.Repository) *ListBorrowsUseCase {
	return &ListBorrowsUseCase{borrows: borrows}
}

// Active 借阅中的记录
func (uc *ListBorrowsUseCase) Active(ctx context.Context, p user.Principal) ([]*borrow.Record, error) {
	if p.IsZero() {
		return nil, apperrors.ErrUnauthorized
	}
	return uc.borrows.ListActiveByUser(ctx, p.UserID)
}

// History 全部借阅历史,包括已下架图书的记录
func (uc *ListBorrowsUseCase) History(ctx context.Context, p user.Principal) ([]*borrow.Record, error) {
	if p.IsZero() {
		return nil, apperrors.ErrUnauthorized
	}
	return uc.borrows.ListByUser(ctx, p.UserID)
}
