package book

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 图书领域错误定义
// 提示信息直接展示给用户,需要说明具体原因
var (
	// ErrBookNotFound 图书不存在(或已下架),通常用 WithMessagef 带上ID
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "Book not found")

	// ErrNoCopiesAvailable 没有可借副本
	ErrNoCopiesAvailable = apperrors.New(apperrors.ErrCodeNoCopiesAvailable, "No available copies of this book")

	// ErrAllCopiesAvailable 副本已全部在馆,不能再归还
	ErrAllCopiesAvailable = apperrors.New(apperrors.ErrCodeAllCopiesAvailable, "All copies are already available")

	// ErrISBNDuplicate ISBN已存在
	ErrISBNDuplicate = apperrors.New(apperrors.ErrCodeISBNDuplicate, "Book with this ISBN already exists")

	// ErrBookInUse 存在未归还的借阅,不能下架
	ErrBookInUse = apperrors.New(apperrors.ErrCodeBookInUse, "Book is currently borrowed and cannot be deleted")

	ErrInvalidTitle           = apperrors.New(apperrors.ErrCodeInvalidParams, "Title is required and must be at most 255 characters")
	ErrInvalidAuthor          = apperrors.New(apperrors.ErrCodeInvalidParams, "Author is required and must be at most 255 characters")
	ErrInvalidISBN            = apperrors.New(apperrors.ErrCodeInvalidParams, "ISBN must be 10 or 13 digits")
	ErrInvalidPublicationYear = apperrors.New(apperrors.ErrCodeInvalidParams, "Publication year is out of range")
	ErrInvalidQuantity        = apperrors.New(apperrors.ErrCodeInvalidParams, "Quantity must be at least 1")
)

// NotFound 带ID的"图书不存在"错误
func NotFound(id string) *apperrors.AppError {
	return ErrBookNotFound.WithMessagef("Book with ID %s not found", id)
}

// DuplicateISBN 带ISBN的冲突错误
func DuplicateISBN(isbn string) *apperrors.AppError {
	return ErrISBNDuplicate.WithMessagef("Book with ISBN %s already exists", isbn)
}
