package dto

import (
	"time"

	"github.com/xiebiao/library/internal/domain/borrow"
)

// BorrowRecordResponse 借阅记录
type BorrowRecordResponse struct {
	ID         string      `json:"id"`
	Status     string      `json:"status" example:"borrowed"`
	BorrowedAt time.Time   `json:"borrowedAt"`
	DueDate    time.Time   `json:"dueDate"`
	ReturnedAt *time.Time  `json:"returnedAt"`
	Book       *BorrowBook `json:"book,omitempty"`
	User       *BorrowUser `json:"user,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// BorrowBook 借阅记录中的图书摘要
type BorrowBook struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	ISBN       string `json:"isbn"`
	CoverImage string `json:"coverImage"`
}

// BorrowUser 借阅记录中的用户摘要
type BorrowUser struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

// ToBorrowRecordResponse 领域实体 -> 响应
func ToBorrowRecordResponse(r *borrow.Record) *BorrowRecordResponse {
	resp := &BorrowRecordResponse{
		ID:         r.ID,
		Status:     string(r.Status),
		BorrowedAt: r.BorrowedAt,
		DueDate:    r.DueDate,
		ReturnedAt: r.ReturnedAt,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if b := r.Book; b != nil {
		resp.Book = &BorrowBook{
			ID:         b.ID,
			Title:      b.Title,
			Author:     b.Author,
			ISBN:       b.ISBN,
			CoverImage: b.CoverImage,
		}
	}
	if u := r.User; u != nil {
		resp.User = &BorrowUser{Username: u.Username, FullName: u.FullName}
	}
	return resp
}

// ToBorrowRecordList 列表转换
func ToBorrowRecordList(records []*borrow.Record) []*BorrowRecordResponse {
	list := make([]*BorrowRecordResponse, len(records))
	for i, r := range records {
		list[i] = ToBorrowRecordResponse(r)
	}
	return list
}
