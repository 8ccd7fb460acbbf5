package lending_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/application/lending"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/internal/domain/inventory"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/persistence/memory"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

type spyCache struct {
	mu      sync.Mutex
	deleted []string
}

func (c *spyCache) Get(context.Context, string) (*book.Book, error) { return nil, nil }
func (c *spyCache) Set(context.Context, *book.Book) error            { return nil }
func (c *spyCache) Delete(_ context.Context, ids ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, ids...)
	return nil
}

type spyPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *spyPublisher) Publish(_ context.Context, key string, _ interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

type env struct {
	books   book.Repository
	borrows borrow.Repository
	users   user.Repository
	logs    inventory.LogRepository
	ledger  inventory.Ledger
	cache   *spyCache
	events  *spyPublisher

	borrowUC *lending.BorrowBookUseCase
	returnUC *lending.ReturnBookUseCase
	listUC   *lending.ListBorrowsUseCase
}

func newEnv(t *testing.T) *env {
	t.Helper()
	s := memory.NewStore()
	e := &env{
		books:   memory.NewBookRepository(s),
		borrows: memory.NewBorrowRepository(s),
		users:   memory.NewUserRepository(s),
		logs:    memory.NewInventoryLogRepository(s),
		cache:   &spyCache{},
		events:  &spyPublisher{},
	}
	e.ledger = inventory.NewLedger(s, e.books, e.logs)
	e.borrowUC = lending.NewBorrowBookUseCase(s, e.books, e.borrows, e.ledger, e.cache, e.events, lending.Options{LoanPeriod: 14 * 24 * time.Hour})
	e.returnUC = lending.NewReturnBookUseCase(s, e.books, e.borrows, e.ledger, e.cache, e.events)
	e.listUC = lending.NewListBorrowsUseCase(e.borrows)
	return e
}

func (e *env) addBook(t *testing.T, isbn string, qty int) *book.Book {
	t.Helper()
	b, err := book.NewBook("Designing Data-Intensive Applications", "Martin Kleppmann", isbn, 2017, qty, "")
	require.NoError(t, err)
	require.NoError(t, e.books.Create(context.Background(), b))
	return b
}

func (e *env) addUser(t *testing.T, name string) user.Principal {
	t.Helper()
	u := user.NewUser(name, name+"@example.com", "hashed", "Reader "+name, user.RoleUser)
	require.NoError(t, e.users.Create(context.Background(), u))
	return user.Principal{UserID: u.ID, Username: u.Username, Role: u.Role}
}

func (e *env) available(t *testing.T, id string) int {
	t.Helper()
	b, err := e.books.FindByID(context.Background(), id)
	require.NoError(t, err)
	return b.AvailableQuantity
}

func TestBorrow_Success(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	b := e.addBook(t, "9781449373320", 2)
	alice := e.addUser(t, "alice")

	before := time.Now()
	rec, err := e.borrowUC.Execute(ctx, alice, b.ID)
	require.NoError(t, err)

	assert.Equal(t, borrow.StatusBorrowed, rec.Status)
	assert.Nil(t, rec.ReturnedAt)
	assert.WithinDuration(t, before.Add(14*24*time.Hour), rec.DueDate, 5*time.Second)
	require.NotNil(t, rec.Book)
	assert.Equal(t, b.Title, rec.Book.Title)
	require.NotNil(t, rec.User)
	assert.Equal(t, "alice", rec.User.Username)

	assert.Equal(t, 1, e.available(t, b.ID))
	assert.Equal(t, []string{b.ID}, e.cache.deleted)
	assert.Equal(t, []string{borrow.EventBorrowed}, e.events.keys)

	logs, err := e.logs.ListByBook(ctx, b.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, inventory.ChangeTypeBorrow, logs[0].ChangeType)
	assert.Equal(t, rec.ID, logs[0].BorrowRecordID)
}

func TestBorrow_Rejections(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	b := e.addBook(t, "9781449373320", 1)
	alice := e.addUser(t, "alice")
	bob := e.addUser(t, "bob")

	_, err := e.borrowUC.Execute(ctx, alice, b.ID)
	require.NoError(t, err)

	t.Run("已借未还", func(t *testing.T) {
		other := e.addBook(t, "9780321751041", 3)
		_, err := e.borrowUC.Execute(ctx, alice, other.ID)
		require.NoError(t, err)

		_, err = e.borrowUC.Execute(ctx, alice, other.ID)
		assert.ErrorIs(t, err, borrow.ErrAlreadyBorrowed)
		assert.Equal(t, "You have already borrowed this book", apperrors.GetAppError(err).Message)
		assert.Equal(t, 2, e.available(t, other.ID), "被拒绝的借阅不改库存")
	})

	t.Run("无可借副本", func(t *testing.T) {
		_, err := e.borrowUC.Execute(ctx, bob, b.ID)
		assert.ErrorIs(t, err, book.ErrNoCopiesAvailable)
		assert.Equal(t, 0, e.available(t, b.ID))
	})

	t.Run("图书不存在", func(t *testing.T) {
		_, err := e.borrowUC.Execute(ctx, bob, "missing")
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})

	t.Run("未登录", func(t *testing.T) {
		_, err := e.borrowUC.Execute(ctx, user.Principal{}, b.ID)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}

func TestReturn(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	b := e.addBook(t, "9781449373320", 1)
	alice := e.addUser(t, "alice")
	bob := e.addUser(t, "bob")

	borrowed, err := e.borrowUC.Execute(ctx, alice, b.ID)
	require.NoError(t, err)

	_, err = e.returnUC.Execute(ctx, bob, b.ID)
	assert.ErrorIs(t, err, borrow.ErrNotBorrowed)
	assert.Equal(t, "You have not borrowed this book", apperrors.GetAppError(err).Message)
	assert.Equal(t, 0, e.available(t, b.ID), "未借阅的归还不改库存")

	rec, err := e.returnUC.Execute(ctx, alice, b.ID)
	require.NoError(t, err)
	assert.Equal(t, borrowed.ID, rec.ID)
	assert.Equal(t, borrow.StatusReturned, rec.Status)
	require.NotNil(t, rec.ReturnedAt)
	assert.Equal(t, 1, e.available(t, b.ID))
	assert.Equal(t, []string{borrow.EventBorrowed, borrow.EventReturned}, e.events.keys)

	_, err = e.returnUC.Execute(ctx, alice, b.ID)
	assert.ErrorIs(t, err, borrow.ErrNotBorrowed, "重复归还")
	assert.Equal(t, 1, e.available(t, b.ID))

	// 归还后可以再次借阅
	_, err = e.borrowUC.Execute(ctx, alice, b.ID)
	require.NoError(t, err)
}

// TestReturn_AfterQuantityReduced 总数调低到借出数以下,所有借阅仍可归还
func TestReturn_AfterQuantityReduced(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	b := e.addBook(t, "9781449373320", 5)

	readers := make([]user.Principal, 0, 4)
	for _, name := range []string{"a", "b", "c", "d"} {
		p := e.addUser(t, name)
		_, err := e.borrowUC.Execute(ctx, p, b.ID)
		require.NoError(t, err)
		readers = append(readers, p)
	}

	_, err := e.ledger.AdjustTotal(ctx, b.ID, 2, inventory.Ref{OperatorID: "admin"})
	require.NoError(t, err)
	require.Equal(t, 0, e.available(t, b.ID))

	for i, want := range []int{0, 0, 1, 2} {
		rec, err := e.returnUC.Execute(ctx, readers[i], b.ID)
		require.NoError(t, err, readers[i].Username)
		assert.Equal(t, borrow.StatusReturned, rec.Status)
		assert.Equal(t, want, e.available(t, b.ID), readers[i].Username)
	}

	active, err := e.borrows.HasActiveByBook(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, active)

	got, err := e.books.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)

	logs, err := e.logs.ListByBook(ctx, b.ID, 0)
	require.NoError(t, err)
	assert.Len(t, logs, 9, "4*BORROW + ADJUST + 4*RETURN")
}

func TestListBorrows(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	first := e.addBook(t, "9781449373320", 1)
	second := e.addBook(t, "9780321751041", 1)
	alice := e.addUser(t, "alice")

	_, err := e.borrowUC.Execute(ctx, alice, first.ID)
	require.NoError(t, err)
	_, err = e.borrowUC.Execute(ctx, alice, second.ID)
	require.NoError(t, err)
	_, err = e.returnUC.Execute(ctx, alice, first.ID)
	require.NoError(t, err)

	// 已归还的图书下架后仍出现在历史中
	require.NoError(t, e.books.SoftDelete(ctx, first.ID))

	active, err := e.listUC.Active(ctx, alice)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].BookID)

	history, err := e.listUC.History(ctx, alice)
	require.NoError(t, err)
	require.Len(t, history, 2)
	for _, rec := range history {
		require.NotNil(t, rec.Book)
	}

	_, err = e.listUC.History(ctx, user.Principal{})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

// N个用户同时借Q本库存的书:恰好Q个成功,库存归零
func TestBorrow_ConcurrentUsers(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	const copies, readers = 3, 10
	b := e.addBook(t, "9781449373320", copies)

	principals := make([]user.Principal, readers)
	for i := range principals {
		principals[i] = e.addUser(t, fmt.Sprintf("reader%02d", i))
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for _, p := range principals {
		wg.Add(1)
		go func(p user.Principal) {
			defer wg.Done()
			_, err := e.borrowUC.Execute(ctx, p, b.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			assert.ErrorIs(t, err, book.ErrNoCopiesAvailable)
			rejected++
		}(p)
	}
	wg.Wait()

	assert.Equal(t, copies, succeeded)
	assert.Equal(t, readers-copies, rejected)
	assert.Equal(t, 0, e.available(t, b.ID))
}

// 同一用户并发借同一本书:只有一条借阅中记录
func TestBorrow_ConcurrentSameUser(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	b := e.addBook(t, "9781449373320", 5)
	alice := e.addUser(t, "alice")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.borrowUC.Execute(ctx, alice, b.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			assert.ErrorIs(t, err, borrow.ErrAlreadyBorrowed)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 4, e.available(t, b.ID))

	active, err := e.listUC.Active(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}
