package gormdb

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/library/internal/domain/book"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
)

// bookRepository 图书仓储实现(GORM)
// 设计说明:
// 1. 实现domain/book/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误(如ISBN重复),转换为业务错误
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return book.DuplicateISBN(b.ISBN)
		}
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "Failed to create book")
	}
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *bookRepository) FindByID(ctx context.Context, id string) (*book.Book, error) {
	var model BookModel
	if err := conn(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.NotFound(id)
		}
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "Failed to query book")
	}
	return toBookEntity(&model), nil
}

// ExistsByISBN 包括已下架的图书(Unscoped)
func (r *bookRepository) ExistsByISBN(ctx context.Context, isbn, excludeID string) (bool, error) {
	query := conn(ctx, r.db).Unscoped().Model(&BookModel{}).Where("isbn = ?", isbn)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "Failed to check ISBN")
	}
	return count > 0, nil
}

// Update 只写基本信息,库存字段由SaveStock负责
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	result := conn(ctx, r.db).Model(&BookModel{}).
		Where("id = ?", b.ID).
		Select("title", "author", "isbn", "publication_year", "description", "cover_image", "version", "updated_at").
		Updates(&BookModel{
			Title:           b.Title,
			Author:          b.Author,
			ISBN:            b.ISBN,
			PublicationYear: b.PublicationYear,
			Description:     b.Description,
			CoverImage:      b.CoverImage,
			Version:         b.Version,
			UpdatedAt:       b.UpdatedAt,
		})
	if result.Error != nil {
		if isDuplicateError(result.Error) {
			return book.DuplicateISBN(b.ISBN)
		}
		return apperrors.WrapCode(result.Error, apperrors.ErrCodeDatabaseError, "Failed to update book")
	}
	if result.RowsAffected == 0 {
		return book.NotFound(b.ID)
	}
	return nil
}

func (r *bookRepository) SoftDelete(ctx context.Context, id string) error {
	result := conn(ctx, r.db).Where("id = ?", id).Delete(&BookModel{})
	if result.Error != nil {
		return apperrors.WrapCode(result.Error, apperrors.ErrCodeDatabaseError, "Failed to delete book")
	}
	if result.RowsAffected == 0 {
		return book.NotFound(id)
	}
	return nil
}

func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	params.Normalize()

	query := conn(ctx, r.db).Model(&BookModel{})
	if params.Search != "" {
		kw := "%" + params.Search + "%"
		query = query.Where("title LIKE ? OR author LIKE ? OR isbn LIKE ?", kw, kw, kw)
	}
	if params.Title != "" {
		query = query.Where("title LIKE ?", "%"+params.Title+"%")
	}
	if params.Author != "" {
		query = query.Where("author LIKE ?", "%"+params.Author+"%")
	}
	if params.ISBN != "" {
		query = query.Where("isbn LIKE ?", "%"+params.ISBN+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "Failed to count books")
	}

	var models []BookModel
	err := query.Order("created_at DESC").Order("id DESC").
		Limit(params.Limit).Offset(params.Offset()).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "Failed to list books")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, total, nil
}

// LockByID 悲观锁查询(SELECT ... FOR UPDATE)
// 必须使用事务DB,否则语句结束锁就释放了
func (r *bookRepository) LockByID(ctx context.Context, id string) (*book.Book, error) {
	start := time.Now()
	var model BookModel
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&model).Error
	metrics.ObserveLockWait("book", time.Since(start))

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.NotFound(id)
		}
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "Failed to lock book")
	}
	return toBookEntity(&model), nil
}

func (r *bookRepository) SaveStock(ctx context.Context, b *book.Book) error {
	result := conn(ctx, r.db).Model(&BookModel{}).
		Where("id = ?", b.ID).
		Updates(map[string]interface{}{
			"quantity":           b.Quantity,
			"available_quantity": b.AvailableQuantity,
			"version":            b.Version,
			"updated_at":         b.UpdatedAt,
		})
	if result.Error != nil {
		return apperrors.WrapCode(result.Error, apperrors.ErrCodeDatabaseError, "Failed to update stock")
	}
	if result.RowsAffected == 0 {
		return book.NotFound(b.ID)
	}
	return nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:                b.ID,
		ISBN:              b.ISBN,
		Title:             b.Title,
		Author:            b.Author,
		PublicationYear:   b.PublicationYear,
		Quantity:          b.Quantity,
		AvailableQuantity: b.AvailableQuantity,
		Description:       b.Description,
		CoverImage:        b.CoverImage,
		Version:           b.Version,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

func toBookEntity(m *BookModel) *book.Book {
	b := &book.Book{
		ID:                m.ID,
		ISBN:              m.ISBN,
		Title:             m.Title,
		Author:            m.Author,
		PublicationYear:   m.PublicationYear,
		Quantity:          m.Quantity,
		AvailableQuantity: m.AvailableQuantity,
		Description:       m.Description,
		CoverImage:        m.CoverImage,
		Version:           m.Version,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	if m.DeletedAt.Valid {
		t := m.DeletedAt.Time
		b.DeletedAt = &t
	}
	return b
}
