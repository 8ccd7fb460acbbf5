package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[int]int{
		ErrCodeBookNotFound:       http.StatusNotFound,
		ErrCodeNoCopiesAvailable:  http.StatusBadRequest,
		ErrCodeAlreadyBorrowed:    http.StatusBadRequest,
		ErrCodeNotBorrowed:        http.StatusBadRequest,
		ErrCodeISBNDuplicate:      http.StatusConflict,
		ErrCodeBookInUse:          http.StatusConflict,
		ErrCodeInvalidToken:       http.StatusUnauthorized,
		ErrCodeTransactionFailure: http.StatusServiceUnavailable,
		ErrCodeDatabaseError:      http.StatusInternalServerError,
		42:                        http.StatusInternalServerError,
		99900:                     http.StatusInternalServerError,
	}

	for code, want := range cases {
		t.Run(fmt.Sprint(code), func(t *testing.T) {
			assert.Equal(t, want, HTTPStatus(code))
		})
	}
}

func TestAppError_IsComparesCode(t *testing.T) {
	base := New(ErrCodeBookNotFound, "Book not found")
	derived := base.WithMessagef("Book with ID %s not found", "abc")

	assert.True(t, errors.Is(derived, base))
	assert.Equal(t, "Book with ID abc not found", derived.Message)
	assert.False(t, errors.Is(derived, ErrNotFound), "不同错误码不应相等")

	wrapped := fmt.Errorf("context: %w", derived)
	assert.True(t, errors.Is(wrapped, base))
	assert.True(t, HasCode(wrapped, ErrCodeBookNotFound))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrTransactionFailure.WithCause(errors.New("deadlock"))))
	assert.False(t, IsRetryable(New(ErrCodeNoCopiesAvailable, "No available copies of this book")))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestGetAppError(t *testing.T) {
	t.Run("AppError原样返回", func(t *testing.T) {
		e := New(ErrCodeConflict, "conflict")
		assert.Same(t, e, GetAppError(fmt.Errorf("wrap: %w", e)))
	})

	t.Run("普通错误包装为Internal", func(t *testing.T) {
		got := GetAppError(errors.New("boom"))
		assert.Equal(t, ErrCodeInternal, got.Code)
		assert.EqualError(t, got.Err, "boom")
		assert.Equal(t, http.StatusInternalServerError, got.HTTPStatus())
	})
}
