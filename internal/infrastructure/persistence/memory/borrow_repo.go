package memory

import (
	"context"
	"sort"

	"github.com/xiebiao/library/internal/domain/borrow"
)

type borrowRepository struct {
	s *Store
}

// NewBorrowRepository 创建内存借阅记录仓储
func NewBorrowRepository(s *Store) borrow.Repository {
	return &borrowRepository{s: s}
}

func (r *borrowRepository) FindActive(ctx context.Context, userID, bookID string) (*borrow.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	key := borrow.ActiveKeyOf(userID, bookID)
	for _, rec := range r.s.borrows {
		if rec.ActiveKey() == key {
			return cloneRecord(rec), nil
		}
	}
	return nil, borrow.ErrRecordNotFound
}

func (r *borrowRepository) LockActive(ctx context.Context, userID, bookID string) (*borrow.Record, error) {
	return r.FindActive(ctx, userID, bookID)
}

func (r *borrowRepository) Create(ctx context.Context, record *borrow.Record) error {
	return r.s.write(ctx, func() error {
		if key := record.ActiveKey(); key != "" {
			for _, rec := range r.s.borrows {
				if rec.ActiveKey() == key {
					return borrow.ErrAlreadyBorrowed
				}
			}
		}
		r.s.borrows[record.ID] = cloneRecord(record)
		return nil
	})
}

func (r *borrowRepository) MarkReturned(ctx context.Context, record *borrow.Record) error {
	return r.s.write(ctx, func() error {
		stored, ok := r.s.borrows[record.ID]
		if !ok {
			return borrow.ErrRecordNotFound
		}
		if stored.Status != borrow.StatusBorrowed {
			return borrow.ErrNotBorrowed
		}
		stored.Status = record.Status
		stored.ReturnedAt = record.ReturnedAt
		stored.UpdatedAt = record.UpdatedAt
		return nil
	})
}

func (r *borrowRepository) HasActiveByBook(ctx context.Context, bookID string) (bool, error) {
	count, err := r.CountActiveByBook(ctx, bookID)
	return count > 0, err
}

func (r *borrowRepository) CountActiveByBook(ctx context.Context, bookID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	count := 0
	for _, rec := range r.s.borrows {
		if rec.BookID == bookID && (rec.Status == borrow.StatusBorrowed || rec.Status == borrow.StatusOverdue) {
			count++
		}
	}
	return count, nil
}

func (r *borrowRepository) FindByID(ctx context.Context, id string) (*borrow.Record, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.borrows[id]
	if !ok {
		return nil, borrow.ErrRecordNotFound
	}
	return r.s.hydrate(rec), nil
}

func (r *borrowRepository) ListActiveByUser(ctx context.Context, userID string) ([]*borrow.Record, error) {
	return r.list(userID, func(rec *borrow.Record) bool { return rec.IsActive() }), nil
}

func (r *borrowRepository) ListByUser(ctx context.Context, userID string) ([]*borrow.Record, error) {
	return r.list(userID, func(*borrow.Record) bool { return true }), nil
}

func (r *borrowRepository) list(userID string, keep func(*borrow.Record) bool) []*borrow.Record {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*borrow.Record, 0)
	for _, rec := range r.s.borrows {
		if rec.UserID == userID && keep(rec) {
			result = append(result, r.s.hydrate(rec))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].BorrowedAt.After(result[j].BorrowedAt)
	})
	return result
}

// hydrate 填充关联图书(包括已下架)与用户,调用方持有mu
func (s *Store) hydrate(rec *borrow.Record) *borrow.Record {
	c := cloneRecord(rec)
	if b, ok := s.books[rec.BookID]; ok {
		c.Book = cloneBook(b)
	}
	if u, ok := s.users[rec.UserID]; ok {
		uc := *u
		c.User = &uc
	}
	return c
}
