package service

import (
	"bookshare-backend/internal/errors"
	"bookshare-backend/internal/model"
	"bookshare-backend/internal/repository/interfaces"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBookRepository 是 BookRepository 接口的模拟实现
type MockBookRepository struct {
	mock.Mock
}

func (m *MockBookRepository) Create(book *model.Book) error {
	args := m.Called(book)
	return args.Error(0)
}

func (m *MockBookRepository) FindByID(id int) (*model.Book, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Book), args.Error(1)
}

func (m *MockBookRepository) FindAvailable(filter interfaces.BookFilter) ([]*model.Book, int, error) {
	args := m.Called(filter)
	return args.Get(0).([]*model.Book), args.Int(1), args.Error(2)
}

func (m *MockBookRepository) FindByOwner(ownerID int) ([]*model.Book, error) {
	args := m.Called(ownerID)
	return args.Get(0).([]*model.Book), args.Error(1)
}

func (m *MockBookRepository) Update(book *model.Book) error {
	args := m.Called(book)
	return args.Error(0)
}

func (m *MockBookRepository) Delete(id int) error {
	args := m.Called(id)
	return args.Error(0)
}

// TestCreateBook 测试发布书籍
func TestCreateBook(t *testing.T) {
	mockRepo := new(MockBookRepository)
	service := NewBookService(mockRepo)

	mockRepo.On("Create", mock.AnythingOfType("*model.Book")).Return(nil)

	// 成功发布，默认提供方式为 Both，自动标记为可用
	book := &model.Book{Title: "Cálculo", Author: "Stewart", Subject: "数学", Condition: model.ConditionGood}
	err := service.CreateBook(book)
	assert.NoError(t, err)
	assert.True(t, book.Available)
	assert.Equal(t, model.OfferBoth, book.OfferType)

	// 非法书籍状态
	err = service.CreateBook(&model.Book{Title: "x", Condition: "Destroyed"})
	assertAppErrCode(t, err, errors.ErrValidation)

	// 非法提供方式
	err = service.CreateBook(&model.Book{Title: "x", Condition: model.ConditionNew, OfferType: "Sale"})
	assertAppErrCode(t, err, errors.ErrValidation)
}

// TestListBooks 测试分页默认值
func TestListBooks(t *testing.T) {
	mockRepo := new(MockBookRepository)
	service := NewBookService(mockRepo)

	expected := interfaces.BookFilter{Search: "calc", Page: 1, PageSize: 12}
	mockRepo.On("FindAvailable", expected).Return([]*model.Book{}, 0, nil)

	// 未提供分页参数时使用默认值
	_, _, err := service.ListBooks(interfaces.BookFilter{Search: "calc"})
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

// TestUpdateBook 测试书主权限与部分更新
func TestUpdateBook(t *testing.T) {
	mockRepo := new(MockBookRepository)
	service := NewBookService(mockRepo)

	existing := &model.Book{ID: 1, Title: "旧标题", Author: "作者", OwnerID: 1, Condition: model.ConditionGood}
	mockRepo.On("FindByID", 1).Return(existing, nil)
	mockRepo.On("FindByID", 99).Return(nil, nil)
	mockRepo.On("Update", mock.AnythingOfType("*model.Book")).Return(nil)

	// 非书主
	_, err := service.UpdateBook(1, 2, &model.Book{Title: "新标题"})
	assertAppErrCode(t, err, errors.ErrForbidden)

	// 书籍不存在
	_, err = service.UpdateBook(99, 1, &model.Book{Title: "新标题"})
	assertAppErrCode(t, err, errors.ErrBookNotFound)

	// 部分更新：未提供的字段保持不变
	book, err := service.UpdateBook(1, 1, &model.Book{Title: "新标题"})
	assert.NoError(t, err)
	assert.Equal(t, "新标题", book.Title)
	assert.Equal(t, "作者", book.Author)

	// 非法枚举值被拒绝
	_, err = service.UpdateBook(1, 1, &model.Book{Condition: "Burnt"})
	assertAppErrCode(t, err, errors.ErrValidation)
}

// TestDeleteBook 测试删除权限
func TestDeleteBook(t *testing.T) {
	mockRepo := new(MockBookRepository)
	service := NewBookService(mockRepo)

	existing := &model.Book{ID: 1, OwnerID: 1}
	mockRepo.On("FindByID", 1).Return(existing, nil)
	mockRepo.On("Delete", 1).Return(nil)

	err := service.DeleteBook(1, 2)
	assertAppErrCode(t, err, errors.ErrForbidden)

	err = service.DeleteBook(1, 1)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
