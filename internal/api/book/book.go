package book

import (
	"bookshare-backend/internal/errors"
	"bookshare-backend/internal/model"
	"bookshare-backend/internal/repository/interfaces"
	"bookshare-backend/internal/service"
	"bookshare-backend/internal/storage"
	"bookshare-backend/internal/util"
	"fmt"
	"mime/multipart"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookHandler 处理与书籍相关的HTTP请求
type BookHandler struct {
	bookService service.BookServiceInterface
	storage     storage.Storage
}

// NewBookHandler 创建一个新的 BookHandler 实例
func NewBookHandler(bookService service.BookServiceInterface, storage storage.Storage) *BookHandler {
	return &BookHandler{bookService, storage}
}

// CreateBook 发布一本新书（multipart，照片可选）
func (h *BookHandler) CreateBook(c *gin.Context) {
	userID := c.GetInt("user_id")

	book := &model.Book{
		Title:       c.PostForm("title"),
		Author:      c.PostForm("author"),
		Subject:     c.PostForm("subject"),
		ISBN:        c.PostForm("isbn"),
		Publisher:   c.PostForm("publisher"),
		Edition:     c.PostForm("edition"),
		Condition:   c.PostForm("condition"),
		Description: c.PostForm("description"),
		OfferType:   c.PostForm("offer_type"),
		OwnerID:     userID,
	}

	if book.Title == "" || book.Author == "" || book.Subject == "" || book.Condition == "" {
		errors.HandleError(c, errors.New(errors.ErrValidation, "标题、作者、科目和书籍状态为必填项"))
		return
	}

	if file, err := c.FormFile("photo"); err == nil {
		photoURL, err := h.uploadPhoto(userID, file)
		if err != nil {
			errors.HandleError(c, errors.Wrap(errors.ErrInternal, "上传书籍照片失败", err))
			return
		}
		book.PhotoURL = photoURL
	}

	if err := h.bookService.CreateBook(book); err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		util.Logger.Error("发布书籍失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "发布书籍失败", err))
		return
	}

	errors.HandleCreated(c, gin.H{
		"book": book,
	}, "书籍发布成功")
}

// ListBooks 返回可用书籍的分页列表，支持搜索和筛选
func (h *BookHandler) ListBooks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))

	filter := interfaces.BookFilter{
		Search:    c.Query("search"),
		Subject:   c.Query("subject"),
		Condition: c.Query("condition"),
		Page:      page,
		PageSize:  limit,
	}

	books, total, err := h.bookService.ListBooks(filter)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取书籍列表失败", err))
		return
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 12
	}
	totalPages := (total + limit - 1) / limit

	errors.HandleSuccess(c, gin.H{
		"books":       books,
		"total":       total,
		"totalPages":  totalPages,
		"currentPage": page,
	}, "")
}

// GetMyBooks 返回当前用户发布的书籍
func (h *BookHandler) GetMyBooks(c *gin.Context) {
	userID := c.GetInt("user_id")

	books, err := h.bookService.GetMyBooks(userID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取我的书籍失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"books": books,
	}, "")
}

// GetBook 返回单本书籍详情
func (h *BookHandler) GetBook(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的书籍ID"))
		return
	}

	book, err := h.bookService.GetBookByID(id)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取书籍失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"book": book,
	}, "")
}

// UpdateBook 更新书籍信息（multipart，照片可选）
func (h *BookHandler) UpdateBook(c *gin.Context) {
	userID := c.GetInt("user_id")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的书籍ID"))
		return
	}

	updated := &model.Book{
		Title:       c.PostForm("title"),
		Author:      c.PostForm("author"),
		Subject:     c.PostForm("subject"),
		ISBN:        c.PostForm("isbn"),
		Publisher:   c.PostForm("publisher"),
		Edition:     c.PostForm("edition"),
		Condition:   c.PostForm("condition"),
		Description: c.PostForm("description"),
		OfferType:   c.PostForm("offer_type"),
	}

	if file, err := c.FormFile("photo"); err == nil {
		photoURL, err := h.uploadPhoto(userID, file)
		if err != nil {
			errors.HandleError(c, errors.Wrap(errors.ErrInternal, "上传书籍照片失败", err))
			return
		}
		updated.PhotoURL = photoURL
	}

	book, err := h.bookService.UpdateBook(id, userID, updated)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		util.Logger.Error("更新书籍失败", zap.Error(err), zap.Int("book_id", id))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "更新书籍失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"book": book,
	}, "书籍更新成功")
}

// DeleteBook 删除书籍
func (h *BookHandler) DeleteBook(c *gin.Context) {
	userID := c.GetInt("user_id")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的书籍ID"))
		return
	}

	if err := h.bookService.DeleteBook(id, userID); err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "删除书籍失败", err))
		return
	}

	errors.HandleSuccess(c, nil, "书籍删除成功")
}

func (h *BookHandler) uploadPhoto(userID int, file *multipart.FileHeader) (string, error) {
	filename := util.GenerateUniqueFilename(file.Filename)
	path := fmt.Sprintf("books/%d/%s", userID, filename)
	return h.storage.UploadFile(file, path)
}
