package gormdb

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/library/internal/domain/borrow"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
)

type borrowRepository struct {
	db *gorm.DB
}

// NewBorrowRepository 创建借阅记录仓储
func NewBorrowRepository(db *gorm.DB) borrow.Repository {
	return &borrowRepository{db: db}
}

func (r *borrowRepository) FindActive(ctx context.Context, userID, bookID string) (*borrow.Record, error) {
	return r.findActive(conn(ctx, r.db), userID, bookID)
}

func (r *borrowRepository) LockActive(ctx context.Context, userID, bookID string) (*borrow.Record, error) {
	start := time.Now()
	rec, err := r.findActive(conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}), userID, bookID)
	metrics.ObserveLockWait("borrow_record", time.Since(start))
	return rec, err
}

func (r *borrowRepository) findActive(db *gorm.DB, userID, bookID string) (*borrow.Record, error) {
	var model BorrowRecordModel
	err := db.Where("user_id = ? AND book_id = ? AND status = ?", userID, bookID, borrow.StatusBorrowed).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, borrow.ErrRecordNotFound
		}
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "Failed to query borrow record")
	}
	return toRecordEntity(&model), nil
}

// Create active_key唯一索引冲突说明同一用户并发借了同一本书
func (r *borrowRepository) Create(ctx context.Context, rec *borrow.Record) error {
	model := toRecordModel(rec)
	if err := conn(ctx, r.db).Omit(clause.Associations).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return borrow.ErrAlreadyBorrowed
		}
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "Failed to create borrow record")
	}
	return nil
}

// MarkReturned 条件更新,记录已不是borrowed时不生效
func (r *borrowRepository) MarkReturned(ctx context.Context, rec *borrow.Record) error {
	result := conn(ctx, r.db).Model(&BorrowRecordModel{}).
		Where("id = ? AND status = ?", rec.ID, borrow.StatusBorrowed).
		Updates(map[string]interface{}{
			"status":      string(rec.Status),
			"returned_at": rec.ReturnedAt,
			"active_key":  nil,
			"updated_at":  rec.UpdatedAt,
		})
	if result.Error != nil {
		return apperrors.WrapCode(result.Error, apperrors.ErrCodeDatabaseError, "Failed to update borrow record")
	}
	if result.RowsAffected == 0 {
		// 区分记录不存在与已不是borrowed
		var count int64
		if err := conn(ctx, r.db).Model(&BorrowRecordModel{}).Where("id = ?", rec.ID).Count(&count).Error; err != nil {
			return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "Failed to query borrow record")
		}
		if count == 0 {
			return borrow.ErrRecordNotFound
		}
		return borrow.ErrNotBorrowed
	}
	return nil
}

// HasActiveByBook overdue同样视为未归还
func (r *borrowRepository) HasActiveByBook(ctx context.Context, bookID string) (bool, error) {
	count, err := r.CountActiveByBook(ctx, bookID)
	return count > 0, err
}

func (r *borrowRepository) CountActiveByBook(ctx context.Context, bookID string) (int, error) {
	var count int64
	err := conn(ctx, r.db).Model(&BorrowRecordModel{}).
		Where("book_id = ? AND status IN ?", bookID, []string{string(borrow.StatusBorrowed), string(borrow.StatusOverdue)}).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "Failed to check borrow records")
	}
	return int(count), nil
}

func (r *borrowRepository) FindByID(ctx context.Context, id string) (*borrow.Record, error) {
	var model BorrowRecordModel
	if err := r.withRelations(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, borrow.ErrRecordNotFound
		}
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "Failed to query borrow record")
	}
	return toRecordEntity(&model), nil
}

func (r *borrowRepository) ListActiveByUser(ctx context.Context, userID string) ([]*borrow.Record, error) {
	return r.list(r.withRelations(ctx).Where("user_id = ? AND status = ?", userID, borrow.StatusBorrowed))
}

func (r *borrowRepository) ListByUser(ctx context.Context, userID string) ([]*borrow.Record, error) {
	return r.list(r.withRelations(ctx).Where("user_id = ?", userID))
}

func (r *borrowRepository) list(query *gorm.DB) ([]*borrow.Record, error) {
	var models []BorrowRecordModel
	if err := query.Order("borrowed_at DESC").Find(&models).Error; err != nil {
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "Failed to list borrow records")
	}
	records := make([]*borrow.Record, len(models))
	for i := range models {
		records[i] = toRecordEntity(&models[i])
	}
	return records, nil
}

// withRelations 预加载图书(包括已下架)和用户
func (r *borrowRepository) withRelations(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).
		Preload("Book", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("User")
}

func toRecordModel(rec *borrow.Record) *BorrowRecordModel {
	m := &BorrowRecordModel{
		ID:         rec.ID,
		UserID:     rec.UserID,
		BookID:     rec.BookID,
		Status:     string(rec.Status),
		BorrowedAt: rec.BorrowedAt,
		DueDate:    rec.DueDate,
		ReturnedAt: rec.ReturnedAt,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
	if key := rec.ActiveKey(); key != "" {
		m.ActiveKey = &key
	}
	return m
}

func toRecordEntity(m *BorrowRecordModel) *borrow.Record {
	rec := &borrow.Record{
		ID:         m.ID,
		UserID:     m.UserID,
		BookID:     m.BookID,
		Status:     borrow.Status(m.Status),
		BorrowedAt: m.BorrowedAt,
		DueDate:    m.DueDate,
		ReturnedAt: m.ReturnedAt,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.Book != nil {
		rec.Book = toBookEntity(m.Book)
	}
	if m.User != nil {
		rec.User = toUserEntity(m.User)
	}
	return rec
}
