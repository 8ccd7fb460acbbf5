package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/library/internal/application/book"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/response"
)

// BookHandler 图书目录HTTP处理器
type BookHandler struct {
	createUseCase *appbook.CreateBookUseCase
	getUseCase    *appbook.GetBookUseCase
	listUseCase   *appbook.ListBooksUseCase
	updateUseCase *appbook.UpdateBookUseCase
	deleteUseCase *appbook.DeleteBookUseCase
	coverUseCase  *appbook.UploadCoverUseCase
	logsUseCase   *appbook.ListInventoryLogsUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	createUseCase *appbook.CreateBookUseCase,
	getUseCase *appbook.GetBookUseCase,
	listUseCase *appbook.ListBooksUseCase,
	updateUseCase *appbook.UpdateBookUseCase,
	deleteUseCase *appbook.DeleteBookUseCase,
	coverUseCase *appbook.UploadCoverUseCase,
	logsUseCase *appbook.ListInventoryLogsUseCase,
) *BookHandler {
	return &BookHandler{
		createUseCase: createUseCase,
		getUseCase:    getUseCase,
		listUseCase:   listUseCase,
		updateUseCase: updateUseCase,
		deleteUseCase: deleteUseCase,
		coverUseCase:  coverUseCase,
		logsUseCase:   logsUseCase,
	}
}

// Create 新增图书
// @Summary      新增图书
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateBookRequest true "图书信息"
// @Success      201 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "ISBN已存在"
// @Router       /api/books [post]
func (h *BookHandler) Create(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	b, err := h.createUseCase.Execute(c.Request.Context(), appbook.CreateBookRequest{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		PublicationYear: req.PublicationYear,
		Quantity:        req.Quantity,
		Description:     req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToBookResponse(b))
}

// List 图书列表
// @Summary      图书列表
// @Description  search匹配书名/作者/ISBN,按入库时间倒序
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        search query string false "关键词"
// @Param        title  query string false "书名"
// @Param        author query string false "作者"
// @Param        isbn   query string false "ISBN"
// @Param        page   query int    false "页码" default(1)
// @Param        limit  query int    false "每页数量" default(10)
// @Success      200 {object} response.PageResponse{data=[]dto.BookResponse}
// @Router       /api/books [get]
func (h *BookHandler) List(c *gin.Context) {
	var q dto.ListBooksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}

	result, err := h.listUseCase.Execute(c.Request.Context(), q.Params())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPage(c, "Books retrieved successfully", dto.ToBookList(result.Books), result.Total, result.Page, result.Limit)
}

// Get 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "图书ID"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/books/{id} [get]
func (h *BookHandler) Get(c *gin.Context) {
	id, err := bookIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.getUseCase.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToBookResponse(b))
}

// Update 修改图书(部分更新)
// @Summary      修改图书
// @Description  修改quantity时借出数量保持不变
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                true "图书ID"
// @Param        request body dto.UpdateBookRequest true "修改的字段"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "ISBN已存在"
// @Router       /api/books/{id} [patch]
func (h *BookHandler) Update(c *gin.Context) {
	id, err := bookIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	b, err := h.updateUseCase.Execute(c.Request.Context(), middleware.MustGetPrincipal(c), id, appbook.UpdateBookRequest{
		Patch:    req.Patch(),
		Quantity: req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToBookResponse(b))
}

// Delete 下架图书
// @Summary      下架图书
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "图书ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "图书借出中"
// @Router       /api/books/{id} [delete]
func (h *BookHandler) Delete(c *gin.Context) {
	id, err := bookIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.deleteUseCase.Execute(c.Request.Context(), middleware.MustGetPrincipal(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "Book deleted successfully", nil)
}

// UploadCover 上传封面
// @Summary      上传封面
// @Description  jpg/jpeg/png/gif/webp,不超过5MB
// @Tags         图书
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id    path     string true "图书ID"
// @Param        cover formData file   true "封面图片"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "文件不合法"
// @Router       /api/books/{id}/cover [post]
func (h *BookHandler) UploadCover(c *gin.Context) {
	id, err := bookIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	fh, err := c.FormFile("cover")
	if err != nil {
		response.Error(c, apperrors.New(apperrors.ErrCodeInvalidFile, "Cover image file is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error(c, apperrors.WrapCode(err, apperrors.ErrCodeInvalidFile, "Failed to read upload"))
		return
	}
	defer f.Close()

	b, err := h.coverUseCase.Execute(c.Request.Context(), id, fh.Filename, f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToBookResponse(b))
}

// InventoryLogs 库存变更记录
// @Summary      库存变更记录
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string true  "图书ID"
// @Param        limit query int    false "条数" default(50)
// @Success      200 {object} response.Response{data=[]dto.InventoryLogResponse}
// @Router       /api/books/{id}/inventory-logs [get]
func (h *BookHandler) InventoryLogs(c *gin.Context) {
	id, err := bookIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	logs, err := h.logsUseCase.Execute(c.Request.Context(), id, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToInventoryLogList(logs))
}
