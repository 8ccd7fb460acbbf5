package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/xiebiao/library/internal/domain/book"
)

// ChangeType 库存变更类型
type ChangeType string

const (
	ChangeTypeBorrow ChangeType = "BORROW" // 借出 available-1
	ChangeTypeReturn ChangeType = "RETURN" // 归还 available+1
	ChangeTypeAdjust ChangeType = "ADJUST" // 调整馆藏总数
)

// Log 库存变更日志
// 只增不改,记录变更前后的总数与可借数
type Log struct {
	ID              string
	BookID          string
	BorrowRecordID  string // 调整总数时为空
	OperatorID      string
	ChangeType      ChangeType
	QuantityBefore  int
	QuantityAfter   int
	AvailableBefore int
	AvailableAfter  int
	CreatedAt       time.Time
}

// Ref 变更关联的业务信息
type Ref struct {
	BorrowRecordID string
	OperatorID     string
}

// snapshot 变更前的库存快照
type snapshot struct {
	quantity  int
	available int
}

func snapshotOf(b *book.Book) snapshot {
	return snapshot{quantity: b.Quantity, available: b.AvailableQuantity}
}

func newLog(t ChangeType, before snapshot, after *book.Book, ref Ref) *Log {
	return &Log{
		ID:              uuid.NewString(),
		BookID:          after.ID,
		BorrowRecordID:  ref.BorrowRecordID,
		OperatorID:      ref.OperatorID,
		ChangeType:      t,
		QuantityBefore:  before.quantity,
		QuantityAfter:   after.Quantity,
		AvailableBefore: before.available,
		AvailableAfter:  after.AvailableQuantity,
		CreatedAt:       time.Now(),
	}
}
