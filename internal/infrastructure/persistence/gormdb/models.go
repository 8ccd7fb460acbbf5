package gormdb

import (
	"time"

	"gorm.io/gorm"
)

// UserModel GORM用户模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/user/entity.go是领域实体，不依赖GORM
// 3. Repository负责两者之间的转换
type UserModel struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Username  string    `gorm:"uniqueIndex;size:50;not null;comment:用户名"`
	Email     string    `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string    `gorm:"size:255;not null;comment:密码(bcrypt加密)"`
	FullName  string    `gorm:"size:100;comment:姓名"`
	Role      string    `gorm:"size:20;not null;comment:角色(user/admin)"`
	IsActive  bool      `gorm:"not null;comment:是否启用"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
// 设计说明:
// 1. ISBN唯一索引包含已下架的行,与ISBN预检语义一致
// 2. available_quantity只通过行锁内的SaveStock修改
type BookModel struct {
	ID                string         `gorm:"primaryKey;size:36"`
	ISBN              string         `gorm:"uniqueIndex;size:13;not null;comment:ISBN号"`
	Title             string         `gorm:"index:idx_search;size:255;not null;comment:书名"`
	Author            string         `gorm:"index:idx_search;size:255;not null;comment:作者"`
	PublicationYear   int            `gorm:"not null;comment:出版年份"`
	Quantity          int            `gorm:"not null;comment:馆藏总数"`
	AvailableQuantity int            `gorm:"not null;comment:可借数量"`
	Description       string         `gorm:"type:text;comment:图书描述"`
	CoverImage        string         `gorm:"size:500;comment:封面图片路径"`
	Version           int            `gorm:"not null;default:1;comment:版本号"`
	CreatedAt         time.Time      `gorm:"index;comment:创建时间"`
	UpdatedAt         time.Time      `gorm:"comment:更新时间"`
	DeletedAt         gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// BorrowRecordModel GORM借阅记录模型
// ActiveKey仅在借阅中时为"userID:bookID",归还后置NULL;
// 唯一索引对NULL不生效,因此保证同一(用户,图书)最多一条借阅中记录
type BorrowRecordModel struct {
	ID         string     `gorm:"primaryKey;size:36"`
	UserID     string     `gorm:"index:idx_user_borrowed;size:36;not null;comment:借阅用户ID"`
	BookID     string     `gorm:"index;size:36;not null;comment:图书ID"`
	Status     string     `gorm:"index;size:20;not null;comment:状态(borrowed/returned/overdue)"`
	ActiveKey  *string    `gorm:"uniqueIndex;size:80;comment:借阅中唯一键"`
	BorrowedAt time.Time  `gorm:"index:idx_user_borrowed;not null;comment:借出时间"`
	DueDate    time.Time  `gorm:"not null;comment:到期日"`
	ReturnedAt *time.Time `gorm:"comment:归还时间"`
	CreatedAt  time.Time  `gorm:"comment:创建时间"`
	UpdatedAt  time.Time  `gorm:"comment:更新时间"`

	Book *BookModel `gorm:"foreignKey:BookID"`
	User *UserModel `gorm:"foreignKey:UserID"`
}

// TableName 指定表名
func (BorrowRecordModel) TableName() string {
	return "borrow_records"
}

// InventoryLogModel 库存变更日志,只增不改
type InventoryLogModel struct {
	ID              string    `gorm:"primaryKey;size:36"`
	BookID          string    `gorm:"index:idx_book_created;size:36;not null;comment:图书ID"`
	BorrowRecordID  string    `gorm:"size:36;comment:关联借阅记录"`
	OperatorID      string    `gorm:"size:36;comment:操作人"`
	ChangeType      string    `gorm:"size:20;not null;comment:变更类型(BORROW/RETURN/ADJUST)"`
	QuantityBefore  int       `gorm:"not null"`
	QuantityAfter   int       `gorm:"not null"`
	AvailableBefore int       `gorm:"not null"`
	AvailableAfter  int       `gorm:"not null"`
	CreatedAt       time.Time `gorm:"index:idx_book_created;comment:创建时间"`
}

// TableName 指定表名
func (InventoryLogModel) TableName() string {
	return "inventory_logs"
}
