package gormdb

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/inventory"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

type inventoryLogRepository struct {
	db *gorm.DB
}

// NewInventoryLogRepository 创建库存日志仓储
func NewInventoryLogRepository(db *gorm.DB) inventory.LogRepository {
	return &inventoryLogRepository{db: db}
}

func (r *inventoryLogRepository) Create(ctx context.Context, log *inventory.Log) error {
	model := &InventoryLogModel{
		ID:              log.ID,
		BookID:          log.BookID,
		BorrowRecordID:  log.BorrowRecordID,
		OperatorID:      log.OperatorID,
		ChangeType:      string(log.ChangeType),
		QuantityBefore:  log.QuantityBefore,
		QuantityAfter:   log.QuantityAfter,
		AvailableBefore: log.AvailableBefore,
		AvailableAfter:  log.AvailableAfter,
		CreatedAt:       log.CreatedAt,
	}
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "Failed to write inventory log")
	}
	return nil
}

func (r *inventoryLogRepository) ListByBook(ctx context.Context, bookID string, limit int) ([]*inventory.Log, error) {
	query := conn(ctx, r.db).Where("book_id = ?", bookID).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []InventoryLogModel
	if err := query.Find(&models).Error; err != nil {
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeDatabaseError, "Failed to list inventory logs")
	}

	logs := make([]*inventory.Log, len(models))
	for i, m := range models {
		logs[i] = &inventory.Log{
			ID:              m.ID,
			BookID:          m.BookID,
			BorrowRecordID:  m.BorrowRecordID,
			OperatorID:      m.OperatorID,
			ChangeType:      inventory.ChangeType(m.ChangeType),
			QuantityBefore:  m.QuantityBefore,
			QuantityAfter:   m.QuantityAfter,
			AvailableBefore: m.AvailableBefore,
			AvailableAfter:  m.AvailableAfter,
			CreatedAt:       m.CreatedAt,
		}
	}
	return logs, nil
}
