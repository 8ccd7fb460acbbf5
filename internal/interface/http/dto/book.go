package dto

import (
	"time"

	"github.com/xiebiao/library/internal/domain/book"
)

// CreateBookRequest 新增图书请求
// isbn / pubyear 为pkg/validator注册的自定义规则
type CreateBookRequest struct {
	Title           string `json:"title" binding:"required,max=255" example:"Clean Code"`
	Author          string `json:"author" binding:"required,max=255" example:"Robert C. Martin"`
	ISBN            string `json:"isbn" binding:"required,isbn" example:"9780132350884"`
	PublicationYear int    `json:"publicationYear" binding:"required,pubyear" example:"2008"`
	Quantity        int    `json:"quantity" binding:"omitempty,min=1" example:"3"`
	Description     string `json:"description" binding:"max=5000" example:"A handbook of agile software craftsmanship"`
}

// UpdateBookRequest 部分更新请求,未出现的字段不修改
type UpdateBookRequest struct {
	Title           *string `json:"title" binding:"omitempty,min=1,max=255"`
	Author          *string `json:"author" binding:"omitempty,min=1,max=255"`
	ISBN            *string `json:"isbn" binding:"omitempty,isbn"`
	PublicationYear *int    `json:"publicationYear" binding:"omitempty,pubyear"`
	Quantity        *int    `json:"quantity" binding:"omitempty,min=1"`
	Description     *string `json:"description" binding:"omitempty,max=5000"`
}

// Patch 转换为领域层的部分更新
func (r UpdateBookRequest) Patch() book.Patch {
	return book.Patch{
		Title:           r.Title,
		Author:          r.Author,
		ISBN:            r.ISBN,
		PublicationYear: r.PublicationYear,
		Description:     r.Description,
	}
}

// ListBooksQuery 图书列表查询参数
type ListBooksQuery struct {
	Search string `form:"search" binding:"omitempty,max=100"`
	Title  string `form:"title" binding:"omitempty,max=255"`
	Author string `form:"author" binding:"omitempty,max=255"`
	ISBN   string `form:"isbn" binding:"omitempty,max=13"`
	Page   int    `form:"page" binding:"omitempty,min=1" example:"1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100" example:"10"`
}

// Params 转换为仓储查询参数
func (q ListBooksQuery) Params() book.ListParams {
	return book.ListParams{
		Page:   q.Page,
		Limit:  q.Limit,
		Search: q.Search,
		Title:  q.Title,
		Author: q.Author,
		ISBN:   q.ISBN,
	}
}

// BookResponse 图书详情
type BookResponse struct {
	ID                string    `json:"id" example:"3f1c2a4e-8b7d-4c1e-9f0a-2b3c4d5e6f70"`
	Title             string    `json:"title" example:"Clean Code"`
	Author            string    `json:"author" example:"Robert C. Martin"`
	ISBN              string    `json:"isbn" example:"9780132350884"`
	PublicationYear   int       `json:"publicationYear" example:"2008"`
	Quantity          int       `json:"quantity" example:"3"`
	AvailableQuantity int       `json:"availableQuantity" example:"2"`
	Description       string    `json:"description,omitempty"`
	CoverImage        string    `json:"coverImage,omitempty" example:"/uploads/covers/9b1d.png"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// ToBookResponse 领域实体 -> 响应
func ToBookResponse(b *book.Book) *BookResponse {
	return &BookResponse{
		ID:                b.ID,
		Title:             b.Title,
		Author:            b.Author,
		ISBN:              b.ISBN,
		PublicationYear:   b.PublicationYear,
		Quantity:          b.Quantity,
		AvailableQuantity: b.AvailableQuantity,
		Description:       b.Description,
		CoverImage:        b.CoverImage,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

// ToBookList 列表转换
func ToBookList(books []*book.Book) []*BookResponse {
	list := make([]*BookResponse, len(books))
	for i, b := range books {
		list[i] = ToBookResponse(b)
	}
	return list
}
