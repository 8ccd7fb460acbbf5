package memory

import (
	"context"

	"github.com/xiebiao/library/internal/domain/inventory"
)

type inventoryLogRepository struct {
	s *Store
}

// NewInventoryLogRepository 创建内存库存日志仓储
func NewInventoryLogRepository(s *Store) inventory.LogRepository {
	return &inventoryLogRepository{s: s}
}

func (r *inventoryLogRepository) Create(ctx context.Context, log *inventory.Log) error {
	return r.s.write(ctx, func() error {
		c := *log
		r.s.logs = append(r.s.logs, &c)
		return nil
	})
}

// ListByBook 日志按追加顺序存储,倒序遍历即为时间倒序
func (r *inventoryLogRepository) ListByBook(ctx context.Context, bookID string, limit int) ([]*inventory.Log, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*inventory.Log, 0)
	for i := len(r.s.logs) - 1; i >= 0; i-- {
		if r.s.logs[i].BookID != bookID {
			continue
		}
		c := *r.s.logs[i]
		result = append(result, &c)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}
