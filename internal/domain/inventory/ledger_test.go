package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/inventory"
	"github.com/xiebiao/library/internal/infrastructure/persistence/memory"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

type fixture struct {
	books  book.Repository
	logs   inventory.LogRepository
	ledger inventory.Ledger
}

func setup(t *testing.T, qty int) (*fixture, *book.Book) {
	t.Helper()
	s := memory.NewStore()
	f := &fixture{
		books: memory.NewBookRepository(s),
		logs:  memory.NewInventoryLogRepository(s),
	}
	f.ledger = inventory.NewLedger(s, f.books, f.logs)

	b, err := book.NewBook("Clean Code", "Robert C. Martin", "9780132350884", 2008, qty, "")
	require.NoError(t, err)
	require.NoError(t, f.books.Create(context.Background(), b))
	return f, b
}

func TestLedger_DecrementIncrement(t *testing.T) {
	ctx := context.Background()
	f, b := setup(t, 1)
	ref := inventory.Ref{BorrowRecordID: "r-1", OperatorID: "u-1"}

	got, err := f.ledger.Decrement(ctx, b.ID, ref)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableQuantity)

	_, err = f.ledger.Decrement(ctx, b.ID, ref)
	assert.ErrorIs(t, err, book.ErrNoCopiesAvailable)

	got, err = f.ledger.Increment(ctx, b.ID, ref)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AvailableQuantity)

	_, err = f.ledger.Increment(ctx, b.ID, ref)
	assert.ErrorIs(t, err, book.ErrAllCopiesAvailable)

	logs, err := f.logs.ListByBook(ctx, b.ID, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2, "失败的操作不记日志")
	assert.Equal(t, inventory.ChangeTypeReturn, logs[0].ChangeType)
	assert.Equal(t, inventory.ChangeTypeBorrow, logs[1].ChangeType)
	assert.Equal(t, 1, logs[1].AvailableBefore)
	assert.Equal(t, 0, logs[1].AvailableAfter)
	assert.Equal(t, "r-1", logs[1].BorrowRecordID)
}

func TestLedger_AdjustTotal(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		qty, borrowed int
		newQty        int
		wantAvailable int
	}{
		{"减少总数保留借出", 5, 2, 3, 1},
		{"增加总数", 5, 2, 8, 6},
		{"新总数小于借出数", 5, 4, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, b := setup(t, tt.qty)
			for i := 0; i < tt.borrowed; i++ {
				_, err := f.ledger.Decrement(ctx, b.ID, inventory.Ref{})
				require.NoError(t, err)
			}

			got, err := f.ledger.AdjustTotal(ctx, b.ID, tt.newQty, inventory.Ref{OperatorID: "admin"})
			require.NoError(t, err)
			assert.Equal(t, tt.newQty, got.Quantity)
			assert.Equal(t, tt.wantAvailable, got.AvailableQuantity)
		})
	}

	t.Run("非法总数", func(t *testing.T) {
		f, b := setup(t, 1)
		_, err := f.ledger.AdjustTotal(ctx, b.ID, 0, inventory.Ref{})
		require.ErrorIs(t, err, book.ErrInvalidQuantity)
		assert.Equal(t, "Quantity must be at least 1", apperrors.GetAppError(err).Message)
	})
}

func TestLedger_ReclaimOverLent(t *testing.T) {
	ctx := context.Background()
	f, b := setup(t, 5)
	for i := 0; i < 4; i++ {
		_, err := f.ledger.Decrement(ctx, b.ID, inventory.Ref{})
		require.NoError(t, err)
	}
	_, err := f.ledger.AdjustTotal(ctx, b.ID, 2, inventory.Ref{OperatorID: "admin"})
	require.NoError(t, err)

	// 4本借出、总数2:前两次归还只记日志,之后每次归还补回一本
	for i, want := range []int{0, 0, 1, 2} {
		outstanding := 3 - i
		got, err := f.ledger.Reclaim(ctx, b.ID, outstanding, inventory.Ref{BorrowRecordID: "r"})
		require.NoError(t, err, "第%d次归还", i+1)
		assert.Equal(t, want, got.AvailableQuantity, "第%d次归还", i+1)
		assert.Equal(t, 2, got.Quantity)
	}

	logs, err := f.logs.ListByBook(ctx, b.ID, 0)
	require.NoError(t, err)
	require.Len(t, logs, 9, "4*BORROW + ADJUST + 4*RETURN")
	assert.Equal(t, inventory.ChangeTypeReturn, logs[3].ChangeType)
	assert.Equal(t, logs[3].AvailableBefore, logs[3].AvailableAfter, "超借部分的归还不改变可借数量")
}

func TestLedger_BookNotFound(t *testing.T) {
	f, _ := setup(t, 1)
	_, err := f.ledger.Decrement(context.Background(), "missing", inventory.Ref{})
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestLedger_ConcurrentDecrement(t *testing.T) {
	ctx := context.Background()
	f, b := setup(t, 3)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.ledger.Decrement(ctx, b.ID, inventory.Ref{}); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, success)
	got, err := f.books.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableQuantity)
}
