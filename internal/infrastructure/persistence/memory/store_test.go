package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/borrow"
)

func newTestBook(t *testing.T, isbn string, qty int) *book.Book {
	t.Helper()
	b, err := book.NewBook("The Go Programming Language", "Donovan", isbn, 2015, qty, "")
	require.NoError(t, err)
	return b
}

func TestStore_TransactionRollback(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	books := NewBookRepository(s)

	b := newTestBook(t, "9780134190440", 2)
	require.NoError(t, books.Create(ctx, b))

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(ctx context.Context) error {
		locked, err := books.LockByID(ctx, b.ID)
		require.NoError(t, err)
		require.NoError(t, locked.Lend())
		require.NoError(t, books.SaveStock(ctx, locked))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := books.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AvailableQuantity, "回滚后库存不变")
}

func TestStore_NestedTransactionJoinsOuter(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	books := NewBookRepository(s)
	b := newTestBook(t, "9780134190440", 1)
	require.NoError(t, books.Create(ctx, b))

	err := s.Transaction(ctx, func(ctx context.Context) error {
		// 内层事务加入外层,不会死锁
		require.NoError(t, s.Transaction(ctx, func(ctx context.Context) error {
			return books.SoftDelete(ctx, b.ID)
		}))
		return errors.New("outer failed")
	})
	require.Error(t, err)

	_, err = books.FindByID(ctx, b.ID)
	assert.NoError(t, err, "外层回滚同样撤销内层修改")
}

func TestBookRepository_SoftDeleteAndISBN(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	books := NewBookRepository(s)
	b := newTestBook(t, "9780134190440", 1)
	require.NoError(t, books.Create(ctx, b))
	require.NoError(t, books.SoftDelete(ctx, b.ID))

	_, err := books.FindByID(ctx, b.ID)
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	exists, err := books.ExistsByISBN(ctx, b.ISBN, "")
	require.NoError(t, err)
	assert.True(t, exists, "已下架图书的ISBN仍被占用")

	err = books.Create(ctx, newTestBook(t, b.ISBN, 1))
	assert.ErrorIs(t, err, book.ErrISBNDuplicate)
}

func TestBookRepository_List(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	books := NewBookRepository(s)

	base := time.Now()
	for i, isbn := range []string{"1111111111", "2222222222", "3333333333"} {
		b := newTestBook(t, isbn, 1)
		b.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, books.Create(ctx, b))
	}

	list, total, err := books.List(ctx, book.ListParams{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 2)
	assert.Equal(t, "3333333333", list[0].ISBN, "按创建时间倒序")

	list, total, err = books.List(ctx, book.ListParams{Search: "2222"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "2222222222", list[0].ISBN)
}

func TestBorrowRepository_ActiveUniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	borrows := NewBorrowRepository(s)
	now := time.Now()

	first := borrow.NewRecord("u-1", "b-1", now, 0)
	require.NoError(t, borrows.Create(ctx, first))

	err := borrows.Create(ctx, borrow.NewRecord("u-1", "b-1", now, 0))
	assert.ErrorIs(t, err, borrow.ErrAlreadyBorrowed)

	require.NoError(t, first.MarkReturned(now))
	require.NoError(t, borrows.MarkReturned(ctx, first))
	assert.ErrorIs(t, borrows.MarkReturned(ctx, first), borrow.ErrNotBorrowed, "重复归还")

	missing := borrow.NewRecord("u-2", "b-1", now, 0)
	require.NoError(t, missing.MarkReturned(now))
	err = borrows.MarkReturned(ctx, missing)
	assert.ErrorIs(t, err, borrow.ErrRecordNotFound, "记录不存在")
	assert.NotErrorIs(t, err, borrow.ErrNotBorrowed)

	require.NoError(t, borrows.Create(ctx, borrow.NewRecord("u-1", "b-1", now.Add(time.Hour), 0)), "归还后可再次借阅")

	history, err := borrows.ListByUser(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, borrow.StatusBorrowed, history[0].Status, "按借出时间倒序")
}

func TestTokenBlacklist(t *testing.T) {
	ctx := context.Background()
	bl := NewTokenBlacklist()
	now := time.Now()
	bl.now = func() time.Time { return now }

	require.NoError(t, bl.AddToBlacklist(ctx, "token", time.Minute))
	ok, err := bl.IsInBlacklist(ctx, "token")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = bl.IsInBlacklist(ctx, "token")
	assert.False(t, ok, "过期后失效")
}
