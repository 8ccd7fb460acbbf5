package book

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xiebiao/library/pkg/validator"
)

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. Quantity是馆藏总数,AvailableQuantity是当前可借数量,二者只能由库存台账(inventory.Ledger)在行锁内修改
// 2. 不变量: 0 <= AvailableQuantity <= Quantity
// 3. ISBN是业务唯一标识(包括已下架的图书)
// 4. 软删除(DeletedAt)后的图书对借阅、查询不可见
type Book struct {
	ID                string
	Title             string
	Author            string
	ISBN              string
	PublicationYear   int
	Quantity          int
	AvailableQuantity int
	Description       string
	CoverImage        string // /uploads/covers/<uuid>.<ext>
	Version           int    // 每次写入递增
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         *time.Time
}

// NewBook 创建新图书(工厂方法)
// 新书所有副本都在馆: AvailableQuantity = Quantity
func NewBook(title, author, isbn string, publicationYear, quantity int, description string) (*Book, error) {
	now := time.Now()
	b := &Book{
		ID:                uuid.NewString(),
		Title:             strings.TrimSpace(title),
		Author:            strings.TrimSpace(author),
		ISBN:              isbn,
		PublicationYear:   publicationYear,
		Quantity:          quantity,
		AvailableQuantity: quantity,
		Description:       description,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := b.Validate(now); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate 校验基本信息
func (b *Book) Validate(now time.Time) error {
	if b.Title == "" || len(b.Title) > 255 {
		return ErrInvalidTitle
	}
	if b.Author == "" || len(b.Author) > 255 {
		return ErrInvalidAuthor
	}
	if !validator.IsValidISBN(b.ISBN) {
		return ErrInvalidISBN
	}
	if !validator.IsValidPublicationYear(b.PublicationYear, now) {
		return ErrInvalidPublicationYear
	}
	if b.Quantity < 1 {
		return ErrInvalidQuantity
	}
	return nil
}

// BorrowedCount 当前借出数量
func (b *Book) BorrowedCount() int {
	return b.Quantity - b.AvailableQuantity
}

// IsDeleted 是否已下架
func (b *Book) IsDeleted() bool {
	return b.DeletedAt != nil
}

// Lend 借出一本(领域行为)
// 业务规则: 无可借副本时拒绝
func (b *Book) Lend() error {
	if b.AvailableQuantity <= 0 {
		return ErrNoCopiesAvailable
	}
	b.AvailableQuantity--
	b.touch()
	return nil
}

// Restock 归还一本(领域行为)
// 业务规则: 副本全部在馆时拒绝,防止可借数超过总数
func (b *Book) Restock() error {
	if b.AvailableQuantity >= b.Quantity {
		return ErrAllCopiesAvailable
	}
	b.AvailableQuantity++
	b.touch()
	return nil
}

// Reclaim 收回一本借出的副本,outstanding为收回后仍未归还的借阅数
// 馆藏总数被调低到借出数量以下时,可借数量不超过 quantity-outstanding,
// 超出部分的归还不增加可借数量;返回是否增加了可借数量
func (b *Book) Reclaim(outstanding int) bool {
	// 不补回时同样更新版本号,保证SaveStock总有行被修改
	defer b.touch()
	if b.AvailableQuantity >= b.Quantity-outstanding {
		return false
	}
	b.AvailableQuantity++
	return true
}

// AdjustQuantity 调整馆藏总数
// 借出数量保持不变: available = max(0, newQuantity - borrowed)
// 新总数小于借出数量时不拒绝,可借数量归零,之后的归还由Reclaim按未归还数量补回
func (b *Book) AdjustQuantity(newQuantity int) error {
	if newQuantity < 1 {
		return ErrInvalidQuantity
	}
	available := newQuantity - b.BorrowedCount()
	if available < 0 {
		available = 0
	}
	b.Quantity = newQuantity
	b.AvailableQuantity = available
	b.touch()
	return nil
}

// Patch 部分更新字段,nil表示不修改
type Patch struct {
	Title           *string
	Author          *string
	ISBN            *string
	PublicationYear *int
	Description     *string
}

// ApplyPatch 更新图书基本信息(不含数量)
func (b *Book) ApplyPatch(p Patch, now time.Time) error {
	if p.Title != nil {
		b.Title = strings.TrimSpace(*p.Title)
	}
	if p.Author != nil {
		b.Author = strings.TrimSpace(*p.Author)
	}
	if p.ISBN != nil {
		b.ISBN = *p.ISBN
	}
	if p.PublicationYear != nil {
		b.PublicationYear = *p.PublicationYear
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if err := b.Validate(now); err != nil {
		return err
	}
	b.touch()
	return nil
}

func (b *Book) touch() {
	b.Version++
	b.UpdatedAt = time.Now()
}

// EventDeleted 图书下架事件(routing key)
const EventDeleted = "book.deleted"
