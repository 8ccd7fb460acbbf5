package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现(GORM/内存)
// 2. 除ExistsByISBN外,所有查询都排除已下架(软删除)的图书
// 3. 库存字段(Quantity/AvailableQuantity)只能通过LockByID + SaveStock修改
type Repository interface {
	// Create 创建图书
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书,不存在返回ErrBookNotFound
	FindByID(ctx context.Context, id string) (*Book, error)

	// ExistsByISBN ISBN是否已被占用(包括已下架图书),excludeID用于更新时排除自身
	ExistsByISBN(ctx context.Context, isbn, excludeID string) (bool, error)

	// Update 更新基本信息(不含库存字段)
	Update(ctx context.Context, book *Book) error

	// SoftDelete 下架图书
	SoftDelete(ctx context.Context, id string) error

	// List 分页搜索
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// LockByID 悲观锁查询(SELECT ... FOR UPDATE),必须在事务内调用
	LockByID(ctx context.Context, id string) (*Book, error)

	// SaveStock 写回库存字段与版本号,必须在持有行锁的事务内调用
	SaveStock(ctx context.Context, book *Book) error
}

// ListParams 列表查询参数
type ListParams struct {
	Page   int    // 页码(从1开始)
	Limit  int    // 每页数量
	Search string // 模糊匹配书名/作者/ISBN
	Title  string
	Author string
	ISBN   string
}

// Normalize 填充默认分页参数
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

// Offset 分页偏移量
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Cache 图书详情缓存(cache-aside)
// Get未命中返回(nil, nil);库存变化后必须Delete,下一次读取回源
type Cache interface {
	Get(ctx context.Context, id string) (*Book, error)
	Set(ctx context.Context, book *Book) error
	Delete(ctx context.Context, ids ...string) error
}
