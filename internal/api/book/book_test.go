package book

import (
	"bookshare-backend/internal/errors"
	"bookshare-backend/internal/model"
	"bookshare-backend/internal/repository/interfaces"
	"bookshare-backend/internal/service"
	"bookshare-backend/internal/util"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	util.InitLogger("error")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// MockBookService 是 BookServiceInterface 的模拟实现
type MockBookService struct {
	mock.Mock
}

func (m *MockBookService) CreateBook(book *model.Book) error {
	args := m.Called(book)
	return args.Error(0)
}

func (m *MockBookService) GetBookByID(id int) (*model.Book, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Book), args.Error(1)
}

func (m *MockBookService) ListBooks(filter interfaces.BookFilter) ([]*model.Book, int, error) {
	args := m.Called(filter)
	return args.Get(0).([]*model.Book), args.Int(1), args.Error(2)
}

func (m *MockBookService) GetMyBooks(ownerID int) ([]*model.Book, error) {
	args := m.Called(ownerID)
	return args.Get(0).([]*model.Book), args.Error(1)
}

func (m *MockBookService) UpdateBook(bookID, userID int, updated *model.Book) (*model.Book, error) {
	args := m.Called(bookID, userID, updated)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Book), args.Error(1)
}

func (m *MockBookService) DeleteBook(bookID, userID int) error {
	args := m.Called(bookID, userID)
	return args.Error(0)
}

// 确保 MockBookService 实现了 BookServiceInterface
var _ service.BookServiceInterface = (*MockBookService)(nil)

// TestListBooks 测试书籍列表的筛选参数和分页载荷
func TestListBooks(t *testing.T) {
	mockService := new(MockBookService)
	handler := NewBookHandler(mockService, nil)

	router := gin.New()
	router.GET("/books", handler.ListBooks)

	expected := interfaces.BookFilter{
		Search:    "calculo",
		Subject:   "数学",
		Condition: model.ConditionGood,
		Page:      2,
		PageSize:  5,
	}
	books := []*model.Book{{ID: 1, Title: "Cálculo"}}
	mockService.On("ListBooks", expected).Return(books, 13, nil)

	req, _ := http.NewRequest("GET", "/books?search=calculo&subject=数学&condition=Good&page=2&limit=5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(13), resp["total"])
	assert.Equal(t, float64(3), resp["totalPages"])
	assert.Equal(t, float64(2), resp["currentPage"])
}

// TestGetBookNotFound 书籍不存在时返回 404
func TestGetBookNotFound(t *testing.T) {
	mockService := new(MockBookService)
	handler := NewBookHandler(mockService, nil)

	router := gin.New()
	router.GET("/books/:id", handler.GetBook)

	mockService.On("GetBookByID", 99).
		Return(nil, errors.New(errors.ErrBookNotFound, "书籍不存在"))

	req, _ := http.NewRequest("GET", "/books/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestDeleteBookForbidden 非书主删除返回 403
func TestDeleteBookForbidden(t *testing.T) {
	mockService := new(MockBookService)
	handler := NewBookHandler(mockService, nil)

	router := gin.New()
	router.DELETE("/books/:id", func(c *gin.Context) {
		c.Set("user_id", 2)
		handler.DeleteBook(c)
	})

	mockService.On("DeleteBook", 1, 2).
		Return(errors.New(errors.ErrForbidden, "只有书主可以删除书籍"))

	req, _ := http.NewRequest("DELETE", "/books/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockService.AssertExpectations(t)
}
