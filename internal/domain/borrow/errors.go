package borrow

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

var (
	// ErrAlreadyBorrowed 用户已借阅该书且未归还
	ErrAlreadyBorrowed = apperrors.New(apperrors.ErrCodeAlreadyBorrowed, "You have already borrowed this book")

	// ErrNotBorrowed 用户没有该书的借阅中记录
	ErrNotBorrowed = apperrors.New(apperrors.ErrCodeNotBorrowed, "You have not borrowed this book")

	// ErrRecordNotFound 借阅记录不存在
	ErrRecordNotFound = apperrors.New(apperrors.ErrCodeBorrowRecordNotFound, "Borrow record not found")
)
