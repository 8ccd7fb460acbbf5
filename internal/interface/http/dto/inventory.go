package dto

import (
	"time"

	"github.com/xiebiao/library/internal/domain/inventory"
)

// InventoryLogResponse 库存变更日志
type InventoryLogResponse struct {
	ID              string    `json:"id"`
	BookID          string    `json:"bookId"`
	BorrowRecordID  string    `json:"borrowRecordId,omitempty"`
	OperatorID      string    `json:"operatorId,omitempty"`
	ChangeType      string    `json:"changeType" example:"BORROW"`
	QuantityBefore  int       `json:"quantityBefore"`
	QuantityAfter   int       `json:"quantityAfter"`
	AvailableBefore int       `json:"availableBefore"`
	AvailableAfter  int       `json:"availableAfter"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ToInventoryLogList 列表转换
func ToInventoryLogList(logs []*inventory.Log) []*InventoryLogResponse {
	list := make([]*InventoryLogResponse, len(logs))
	for i, l := range logs {
		list[i] = &InventoryLogResponse{
			ID:              l.ID,
			BookID:          l.BookID,
			BorrowRecordID:  l.BorrowRecordID,
			OperatorID:      l.OperatorID,
			ChangeType:      string(l.ChangeType),
			QuantityBefore:  l.QuantityBefore,
			QuantityAfter:   l.QuantityAfter,
			AvailableBefore: l.AvailableBefore,
			AvailableAfter:  l.AvailableAfter,
			CreatedAt:       l.CreatedAt,
		}
	}
	return list
}
