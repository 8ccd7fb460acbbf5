package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/book"
)

// CreateBookUseCase 新增图书用例
// 字段校验与ISBN查重由领域服务负责,应用层只做编排
type CreateBookUseCase struct {
	bookService book.Service
}

// NewCreateBookUseCase 创建新增图书用例
func NewCreateBookUseCase(bookService book.Service) *CreateBookUseCase {
	return &CreateBookUseCase{bookService: bookService}
}

// CreateBookRequest 新增图书请求
type CreateBookRequest struct {
	Title           string
	Author          string
	ISBN            string
	PublicationYear int
	Quantity        int // 馆藏数量,<=0 时按1本处理
	Description     string
}

// Execute 新增图书,可借数量 = 馆藏数量
func (uc *CreateBookUseCase) Execute(ctx context.Context, req CreateBookRequest) (*book.Book, error) {
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	b, err := uc.bookService.Create(ctx, req.Title, req.Author, req.ISBN, req.PublicationYear, req.Quantity, req.Description)
	if err != nil {
		return nil, err
	}

	zap.L().Info("图书已入库", zap.String("book_id", b.ID), zap.String("isbn", b.ISBN), zap.Int("quantity", b.Quantity))
	return b, nil
}
