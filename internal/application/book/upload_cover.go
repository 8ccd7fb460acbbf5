package book

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/shared"
	"github.com/xiebiao/library/pkg/saga"
)

// CoverStore 封面文件存储
type CoverStore interface {
	// Save 校验并保存图片,返回访问路径
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	// Remove 按访问路径删除文件,文件不存在不报错
	Remove(ctx context.Context, urlPath string) error
}

// UploadCoverUseCase 上传封面用例
// 文件与数据库不在一个事务里,用saga保证:数据库更新失败时删除已保存的文件
type UploadCoverUseCase struct {
	tx          shared.Transactor
	bookService book.Service
	store       CoverStore
	cache       book.Cache
	timeout     time.Duration
}

// NewUploadCoverUseCase 创建上传封面用例
func NewUploadCoverUseCase(tx shared.Transactor, bookService book.Service, store CoverStore, cache book.Cache) *UploadCoverUseCase {
	return &UploadCoverUseCase{
		tx:          tx,
		bookService: bookService,
		store:       store,
		cache:       cache,
		timeout:     30 * time.Second,
	}
}

// Execute 保存封面并更新图书,返回更新后的图书
func (uc *UploadCoverUseCase) Execute(ctx context.Context, id, filename string, r io.Reader) (*book.Book, error) {
	// 图书不存在时不落盘
	if _, err := uc.bookService.Get(ctx, id); err != nil {
		return nil, err
	}

	var newPath, oldPath string
	err := saga.NewSaga("upload_cover", uc.timeout).
		AddStep("save_file",
			func(ctx context.Context) (err error) {
				newPath, err = uc.store.Save(ctx, filename, r)
				return err
			},
			func(ctx context.Context) error {
				return uc.store.Remove(ctx, newPath)
			},
		).
		AddStep("update_book",
			func(ctx context.Context) error {
				return uc.tx.Transaction(ctx, func(txCtx context.Context) (err error) {
					oldPath, err = uc.bookService.SetCoverImage(txCtx, id, newPath)
					return err
				})
			},
			nil,
		).
		Execute(ctx)
	if err != nil {
		return nil, err
	}

	// 旧封面删除失败只留下孤儿文件,不影响结果
	if oldPath != "" && oldPath != newPath {
		if err := uc.store.Remove(ctx, oldPath); err != nil {
			zap.L().Warn("删除旧封面失败", zap.String("path", oldPath), zap.Error(err))
		}
	}
	if err := uc.cache.Delete(ctx, id); err != nil {
		zap.L().Warn("图书缓存失效失败", zap.String("book_id", id), zap.Error(err))
	}

	return uc.bookService.Get(ctx, id)
}
