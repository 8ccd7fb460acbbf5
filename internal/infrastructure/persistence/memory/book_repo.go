package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/xiebiao/library/internal/domain/book"
)

type bookRepository struct {
	s *Store
}

// NewBookRepository 创建内存图书仓储
func NewBookRepository(s *Store) book.Repository {
	return &bookRepository{s: s}
}

func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	return r.s.write(ctx, func() error {
		for _, existing := range r.s.books {
			if existing.ISBN == b.ISBN {
				return book.DuplicateISBN(b.ISBN)
			}
		}
		r.s.books[b.ID] = cloneBook(b)
		return nil
	})
}

func (r *bookRepository) FindByID(ctx context.Context, id string) (*book.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, err := r.s.liveBook(id)
	if err != nil {
		return nil, err
	}
	return cloneBook(b), nil
}

func (r *bookRepository) ExistsByISBN(ctx context.Context, isbn, excludeID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, b := range r.s.books {
		if b.ISBN == isbn && b.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	return r.s.write(ctx, func() error {
		stored, err := r.s.liveBook(b.ID)
		if err != nil {
			return err
		}
		for _, other := range r.s.books {
			if other.ID != b.ID && other.ISBN == b.ISBN {
				return book.DuplicateISBN(b.ISBN)
			}
		}
		stored.Title = b.Title
		stored.Author = b.Author
		stored.ISBN = b.ISBN
		stored.PublicationYear = b.PublicationYear
		stored.Description = b.Description
		stored.CoverImage = b.CoverImage
		stored.Version = b.Version
		stored.UpdatedAt = b.UpdatedAt
		return nil
	})
}

func (r *bookRepository) SoftDelete(ctx context.Context, id string) error {
	return r.s.write(ctx, func() error {
		stored, err := r.s.liveBook(id)
		if err != nil {
			return err
		}
		now := time.Now()
		stored.DeletedAt = &now
		return nil
	})
}

func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	params.Normalize()

	r.s.mu.RLock()
	var matched []*book.Book
	for _, b := range r.s.books {
		if b.IsDeleted() || !matchBook(b, params) {
			continue
		}
		matched = append(matched, cloneBook(b))
	}
	r.s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := params.Offset()
	if start >= len(matched) {
		return []*book.Book{}, total, nil
	}
	end := start + params.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// LockByID 事务已串行化,直接读取
func (r *bookRepository) LockByID(ctx context.Context, id string) (*book.Book, error) {
	return r.FindByID(ctx, id)
}

func (r *bookRepository) SaveStock(ctx context.Context, b *book.Book) error {
	return r.s.write(ctx, func() error {
		stored, err := r.s.liveBook(b.ID)
		if err != nil {
			return err
		}
		stored.Quantity = b.Quantity
		stored.AvailableQuantity = b.AvailableQuantity
		stored.Version = b.Version
		stored.UpdatedAt = b.UpdatedAt
		return nil
	})
}

// liveBook 调用方持有mu
func (s *Store) liveBook(id string) (*book.Book, error) {
	b, ok := s.books[id]
	if !ok || b.IsDeleted() {
		return nil, book.NotFound(id)
	}
	return b, nil
}

func matchBook(b *book.Book, p book.ListParams) bool {
	if p.Search != "" {
		if !containsFold(b.Title, p.Search) && !containsFold(b.Author, p.Search) && !containsFold(b.ISBN, p.Search) {
			return false
		}
	}
	if p.Title != "" && !containsFold(b.Title, p.Title) {
		return false
	}
	if p.Author != "" && !containsFold(b.Author, p.Author) {
		return false
	}
	if p.ISBN != "" && !containsFold(b.ISBN, p.ISBN) {
		return false
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
