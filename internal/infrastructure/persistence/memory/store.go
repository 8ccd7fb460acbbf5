package memory

import (
	"context"
	"sync"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/internal/domain/inventory"
	"github.com/xiebiao/library/internal/domain/user"
)

// Store 内存存储
// 用于database.driver=memory以及用例/接口层测试,语义与GORM实现保持一致:
// 1. 事务串行执行(全局互斥),相当于每个事务锁住所有行
// 2. fn返回error时回滚到事务开始前的快照
// 3. ctx中已有事务时加入外层事务
type Store struct {
	txMu sync.Mutex   // 写事务互斥
	mu   sync.RWMutex // 保护下面的数据

	books   map[string]*book.Book
	borrows map[string]*borrow.Record
	users   map[string]*user.User
	logs    []*inventory.Log
}

// NewStore 创建内存存储
func NewStore() *Store {
	return &Store{
		books:   make(map[string]*book.Book),
		borrows: make(map[string]*borrow.Record),
		users:   make(map[string]*user.User),
	}
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(bool)
	return ok
}

// Transaction 实现shared.Transactor
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// write 单条写操作:不在事务内时同样占用事务锁,避免被并发事务的回滚覆盖
func (s *Store) write(ctx context.Context, fn func() error) error {
	if !inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

type snapshot struct {
	books   map[string]*book.Book
	borrows map[string]*borrow.Record
	users   map[string]*user.User
	logs    []*inventory.Log
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		books:   make(map[string]*book.Book, len(s.books)),
		borrows: make(map[string]*borrow.Record, len(s.borrows)),
		users:   make(map[string]*user.User, len(s.users)),
		logs:    append([]*inventory.Log(nil), s.logs...),
	}
	for k, v := range s.books {
		snap.books[k] = cloneBook(v)
	}
	for k, v := range s.borrows {
		snap.borrows[k] = cloneRecord(v)
	}
	for k, v := range s.users {
		u := *v
		snap.users[k] = &u
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books = snap.books
	s.borrows = snap.borrows
	s.users = snap.users
	s.logs = snap.logs
}

func cloneBook(b *book.Book) *book.Book {
	c := *b
	if b.DeletedAt != nil {
		t := *b.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}

func cloneRecord(r *borrow.Record) *borrow.Record {
	c := *r
	if r.ReturnedAt != nil {
		t := *r.ReturnedAt
		c.ReturnedAt = &t
	}
	c.Book = nil
	c.User = nil
	return &c
}
