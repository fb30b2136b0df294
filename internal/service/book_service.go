package service

import (
	"bookshare-backend/internal/errors"
	"bookshare-backend/internal/model"
	"bookshare-backend/internal/repository/interfaces"
	"fmt"
)

// BookService 处理与书籍相关的业务逻辑
type BookService struct {
	bookRepo interfaces.BookRepository
}

// NewBookService 创建一个新的 BookService 实例
func NewBookService(bookRepo interfaces.BookRepository) *BookService {
	return &BookService{bookRepo: bookRepo}
}

// CreateBook 发布一本新书
func (s *BookService) CreateBook(book *model.Book) error {
	if !model.IsValidCondition(book.Condition) {
		return errors.New(errors.ErrValidation, "无效的书籍状态")
	}
	if book.OfferType == "" {
		book.OfferType = model.OfferBoth
	}
	if !model.IsValidOfferType(book.OfferType) {
		return errors.New(errors.ErrValidation, "无效的提供方式")
	}
	book.Available = true
	return s.bookRepo.Create(book)
}

// GetBookByID 通过ID获取书籍
func (s *BookService) GetBookByID(id int) (*model.Book, error) {
	book, err := s.bookRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("查询书籍失败: %w", err)
	}
	if book == nil {
		return nil, errors.New(errors.ErrBookNotFound, "书籍不存在")
	}
	return book, nil
}

// ListBooks 返回可用书籍的分页列表和总数
func (s *BookService) ListBooks(filter interfaces.BookFilter) ([]*model.Book, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 12
	}
	return s.bookRepo.FindAvailable(filter)
}

// GetMyBooks 返回用户发布的书籍
func (s *BookService) GetMyBooks(ownerID int) ([]*model.Book, error) {
	return s.bookRepo.FindByOwner(ownerID)
}

// UpdateBook 更新书籍信息，只有书主可以操作
func (s *BookService) UpdateBook(bookID, userID int, updated *model.Book) (*model.Book, error) {
	book, err := s.GetBookByID(bookID)
	if err != nil {
		return nil, err
	}
	if book.OwnerID != userID {
		return nil, errors.New(errors.ErrForbidden, "只有书主可以修改书籍")
	}

	if updated.Title != "" {
		book.Title = updated.Title
	}
	if updated.Author != "" {
		book.Author = updated.Author
	}
	if updated.Subject != "" {
		book.Subject = updated.Subject
	}
	if updated.ISBN != "" {
		book.ISBN = updated.ISBN
	}
	if updated.Publisher != "" {
		book.Publisher = updated.Publisher
	}
	if updated.Edition != "" {
		book.Edition = updated.Edition
	}
	if updated.Condition != "" {
		if !model.IsValidCondition(updated.Condition) {
			return nil, errors.New(errors.ErrValidation, "无效的书籍状态")
		}
		book.Condition = updated.Condition
	}
	if updated.Description != "" {
		book.Description = updated.Description
	}
	if updated.PhotoURL != "" {
		book.PhotoURL = updated.PhotoURL
	}
	if updated.OfferType != "" {
		if !model.IsValidOfferType(updated.OfferType) {
			return nil, errors.New(errors.ErrValidation, "无效的提供方式")
		}
		book.OfferType = updated.OfferType
	}

	if err := s.bookRepo.Update(book); err != nil {
		return nil, fmt.Errorf("更新书籍失败: %w", err)
	}
	return book, nil
}

// DeleteBook 删除书籍，只有书主可以操作
func (s *BookService) DeleteBook(bookID, userID int) error {
	book, err := s.GetBookByID(bookID)
	if err != nil {
		return err
	}
	if book.OwnerID != userID {
		return errors.New(errors.ErrForbidden, "只有书主可以删除书籍")
	}
	return s.bookRepo.Delete(bookID)
}

type BookServiceInterface interface {
	CreateBook(book *model.Book) error
	GetBookByID(id int) (*model.Book, error)
	ListBooks(filter interfaces.BookFilter) ([]*model.Book, int, error)
	GetMyBooks(ownerID int) ([]*model.Book, error)
	UpdateBook(bookID, userID int, updated *model.Book) (*model.Book, error)
	DeleteBook(bookID, userID int) error
}

// 确保 BookService 实现了 BookServiceInterface
var _ BookServiceInterface = (*BookService)(nil)
