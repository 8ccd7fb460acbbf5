package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/internal/application/lending"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// LendingHandler 借阅HTTP处理器
type LendingHandler struct {
	borrowUseCase *lending.BorrowBookUseCase
	returnUseCase *lending.ReturnBookUseCase
	listUseCase   *lending.ListBorrowsUseCase
}

// NewLendingHandler 创建借阅处理器
func NewLendingHandler(
	borrowUseCase *lending.BorrowBookUseCase,
	returnUseCase *lending.ReturnBookUseCase,
	listUseCase *lending.ListBorrowsUseCase,
) *LendingHandler {
	return &LendingHandler{
		borrowUseCase: borrowUseCase,
		returnUseCase: returnUseCase,
		listUseCase:   listUseCase,
	}
}

// Borrow 借书
// @Summary      借书
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "图书ID"
// @Success      200 {object} response.Response{data=dto.BorrowRecordResponse}
// @Failure      400 {object} response.Response "无可借副本/已借未还"
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      503 {object} response.Response "并发冲突,可重试"
// @Router       /api/books/{id}/borrow [post]
func (h *LendingHandler) Borrow(c *gin.Context) {
	id, err := bookIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	rec, err := h.borrowUseCase.Execute(c.Request.Context(), middleware.MustGetPrincipal(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToBorrowRecordResponse(rec))
}

// Return 还书
// @Summary      还书
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "图书ID"
// @Success      200 {object} response.Response{data=dto.BorrowRecordResponse}
// @Failure      400 {object} response.Response "未借阅该书"
// @Router       /api/books/{id}/return [post]
func (h *LendingHandler) Return(c *gin.Context) {
	id, err := bookIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	rec, err := h.returnUseCase.Execute(c.Request.Context(), middleware.MustGetPrincipal(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToBorrowRecordResponse(rec))
}

// Borrowed 当前借阅
// @Summary      当前借阅
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]dto.BorrowRecordResponse}
// @Router       /api/books/user/borrowed [get]
func (h *LendingHandler) Borrowed(c *gin.Context) {
	records, err := h.listUseCase.Active(c.Request.Context(), middleware.MustGetPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToBorrowRecordList(records))
}

// History 借阅历史
// @Summary      借阅历史
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]dto.BorrowRecordResponse}
// @Router       /api/books/user/history [get]
func (h *LendingHandler) History(c *gin.Context) {
	records, err := h.listUseCase.History(c.Request.Context(), middleware.MustGetPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToBorrowRecordList(records))
}
