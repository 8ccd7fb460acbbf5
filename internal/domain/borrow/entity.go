package borrow

import (
	"time"

	"github.com/google/uuid"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/user"
)

// Status 借阅状态
type Status string

const (
	StatusBorrowed Status = "borrowed" // 借阅中
	StatusReturned Status = "returned" // 已归还
	StatusOverdue  Status = "overdue"  // 逾期未还(由外部流程设置)
)

// IsValid 状态值是否合法
func (s Status) IsValid() bool {
	switch s {
	case StatusBorrowed, StatusReturned, StatusOverdue:
		return true
	}
	return false
}

// DefaultLoanPeriod 默认借期
const DefaultLoanPeriod = 14 * 24 * time.Hour

// Record 借阅记录
// 同一(用户,图书)任意时刻最多一条borrowed记录
type Record struct {
	ID         string
	UserID     string
	BookID     string
	Status     Status
	BorrowedAt time.Time
	DueDate    time.Time
	ReturnedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// 读路径上填充的关联对象,写路径不使用
	Book *book.Book
	User *user.User
}

// NewRecord 创建借阅记录,到期日 = 借出时间 + 借期
func NewRecord(userID, bookID string, now time.Time, loanPeriod time.Duration) *Record {
	if loanPeriod <= 0 {
		loanPeriod = DefaultLoanPeriod
	}
	return &Record{
		ID:         uuid.NewString(),
		UserID:     userID,
		BookID:     bookID,
		Status:     StatusBorrowed,
		BorrowedAt: now,
		DueDate:    now.Add(loanPeriod),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsActive 是否借阅中
func (r *Record) IsActive() bool {
	return r.Status == StatusBorrowed
}

// IsOverdue 是否已过到期日仍未归还
func (r *Record) IsOverdue(now time.Time) bool {
	return r.ReturnedAt == nil && now.After(r.DueDate)
}

// MarkReturned 标记归还
func (r *Record) MarkReturned(now time.Time) error {
	if !r.IsActive() {
		return ErrNotBorrowed
	}
	r.Status = StatusReturned
	r.ReturnedAt = &now
	r.UpdatedAt = now
	return nil
}

// ActiveKey 借阅中记录的唯一键,存储层据此建唯一索引
// 归还后为空(数据库中为NULL,不参与唯一约束)
func (r *Record) ActiveKey() string {
	if !r.IsActive() {
		return ""
	}
	return ActiveKeyOf(r.UserID, r.BookID)
}

// ActiveKeyOf 计算(用户,图书)的唯一键
func ActiveKeyOf(userID, bookID string) string {
	return userID + ":" + bookID
}

// 借阅事件(routing key)
const (
	EventBorrowed = "book.borrowed"
	EventReturned = "book.returned"
)

// Event 借阅事件载荷
type Event struct {
	RecordID   string     `json:"recordId"`
	UserID     string     `json:"userId"`
	BookID     string     `json:"bookId"`
	BorrowedAt time.Time  `json:"borrowedAt"`
	DueDate    time.Time  `json:"dueDate"`
	ReturnedAt *time.Time `json:"returnedAt,omitempty"`
}

// EventOf 由借阅记录生成事件载荷
func EventOf(r *Record) Event {
	return Event{
		RecordID:   r.ID,
		UserID:     r.UserID,
		BookID:     r.BookID,
		BorrowedAt: r.BorrowedAt,
		DueDate:    r.DueDate,
		ReturnedAt: r.ReturnedAt,
	}
}
