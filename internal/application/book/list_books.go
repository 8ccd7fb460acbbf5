package book

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/book"
)

// ListBooksUseCase 图书列表查询用例
// 支持关键词搜索(书名/作者/ISBN)与按字段过滤,按入库时间倒序
type ListBooksUseCase struct {
	bookService book.Service
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(bookService book.Service) *ListBooksUseCase {
	return &ListBooksUseCase{bookService: bookService}
}

// ListBooksResponse 列表查询结果
type ListBooksResponse struct {
	Books []*book.Book
	Total int64
	Page  int
	Limit int
}

// Execute 执行列表查询
func (uc *ListBooksUseCase) Execute(ctx context.Context, params book.ListParams) (*ListBooksResponse, error) {
	// 默认第1页、每页10条,每页最多100条
	params.Normalize()

	books, total, err := uc.bookService.List(ctx, params)
	if err != nil {
		return nil, err
	}

	return &ListBooksResponse{
		Books: books,
		Total: total,
		Page:  params.Page,
		Limit: params.Limit,
	}, nil
}

// GetBookUseCase 图书详情查询(cache-aside)
// 缓存不可用时直接回源,不影响查询结果
type GetBookUseCase struct {
	bookService book.Service
	cache       book.Cache
}

// NewGetBookUseCase 创建详情查询用例
func NewGetBookUseCase(bookService book.Service, cache book.Cache) *GetBookUseCase {
	return &GetBookUseCase{bookService: bookService, cache: cache}
}

// Execute 查询图书详情
func (uc *GetBookUseCase) Execute(ctx context.Context, id string) (*book.Book, error) {
	// 1. 查缓存
	cached, err := uc.cache.Get(ctx, id)
	if err != nil {
		zap.L().Debug("读取图书缓存失败,回源查询", zap.String("book_id", id), zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	// 2. 回源
	b, err := uc.bookService.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3. 回填缓存
	if err := uc.cache.Set(ctx, b); err != nil {
		zap.L().Debug("写入图书缓存失败", zap.String("book_id", id), zap.Error(err))
		return b, nil
	}

	// 4. 回源到回填之间图书被修改(写方的失效可能早于回填),删除回填的旧值
	if uc.changedSince(ctx, b) {
		if err := uc.cache.Delete(ctx, id); err != nil {
			zap.L().Warn("删除过期图书缓存失败", zap.String("book_id", id), zap.Error(err))
		}
	}
	return b, nil
}

// changedSince 重新回源,版本不一致或已下架视为已修改
func (uc *GetBookUseCase) changedSince(ctx context.Context, b *book.Book) bool {
	current, err := uc.bookService.Get(ctx, b.ID)
	if err != nil {
		return true
	}
	return current.Version != b.Version
}
