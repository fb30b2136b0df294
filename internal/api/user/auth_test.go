package user

import (
	"bookshare-backend/internal/errors"
	"bookshare-backend/internal/model"
	"bookshare-backend/internal/service"
	"bookshare-backend/internal/util"
	"bytes"
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

// MockUserService 是 UserServiceInterface 的模拟实现
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(user *model.User, password string) error {
	args := m.Called(user, password)
	return args.Error(0)
}

func (m *MockUserService) Login(email, password string) (*model.User, error) {
	args := m.Called(email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) GetUserByID(id int) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) GetUsers(excludeID int) ([]*model.User, error) {
	args := m.Called(excludeID)
	return args.Get(0).([]*model.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(userID int, name, phone, university, program string) (*model.User, error) {
	args := m.Called(userID, name, phone, university, program)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) UpdateAvatar(userID int, avatarURL string) error {
	args := m.Called(userID, avatarURL)
	return args.Error(0)
}

func (m *MockUserService) VerifyEmail(token string) error {
	args := m.Called(token)
	return args.Error(0)
}

func (m *MockUserService) ResendVerification(email string) error {
	args := m.Called(email)
	return args.Error(0)
}

func (m *MockUserService) DeleteAccount(userID int) (int, error) {
	args := m.Called(userID)
	return args.Int(0), args.Error(1)
}

// 确保 MockUserService 实现了 UserServiceInterface
var _ service.UserServiceInterface = (*MockUserService)(nil)

func performRequest(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestRegister 测试注册处理器
func TestRegister(t *testing.T) {
	mockService := new(MockUserService)
	handler := NewAuthHandler(mockService)

	router := gin.New()
	router.POST("/register", handler.Register)

	// 模拟成功注册
	mockService.On("Register", mock.AnythingOfType("*model.User"), "password123").Return(nil)

	body := []byte(`{"name": "testuser", "email": "test@example.com", "password": "password123"}`)
	w := performRequest(router, "POST", "/register", body)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.NotEmpty(t, resp["token"])
}

// TestRegisterValidation 校验失败时逐项返回错误信息
func TestRegisterValidation(t *testing.T) {
	mockService := new(MockUserService)
	handler := NewAuthHandler(mockService)

	router := gin.New()
	router.POST("/register", handler.Register)

	body := []byte(`{"name": "ab", "email": "not-an-email", "password": "123"}`)
	w := performRequest(router, "POST", "/register", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])

	details, ok := resp["errors"].([]interface{})
	assert.True(t, ok)
	assert.Len(t, details, 3)

	// 校验失败不应触达服务层
	mockService.AssertNotCalled(t, "Register")
}

// TestRegisterDuplicateEmail 邮箱重复时返回 400
func TestRegisterDuplicateEmail(t *testing.T) {
	mockService := new(MockUserService)
	handler := NewAuthHandler(mockService)

	router := gin.New()
	router.POST("/register", handler.Register)

	mockService.On("Register", mock.AnythingOfType("*model.User"), "password123").
		Return(errors.New(errors.ErrUserExists, "该邮箱已被注册"))

	body := []byte(`{"name": "testuser", "email": "taken@example.com", "password": "password123"}`)
	w := performRequest(router, "POST", "/register", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertExpectations(t)
}

// TestLogin 测试登录处理器
func TestLogin(t *testing.T) {
	mockService := new(MockUserService)
	handler := NewAuthHandler(mockService)

	router := gin.New()
	router.POST("/login", handler.Login)

	// 模拟成功登录
	mockUser := &model.User{ID: 1, Email: "test@example.com", IsVerified: true}
	mockService.On("Login", "test@example.com", "password123").Return(mockUser, nil)

	body := []byte(`{"email": "test@example.com", "password": "password123"}`)
	w := performRequest(router, "POST", "/login", body)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.NotEmpty(t, resp["token"])

	// 模拟密码错误
	mockService.On("Login", "test@example.com", "wrong").
		Return(nil, errors.New(errors.ErrInvalidCredentials, "邮箱或密码不正确"))

	body = []byte(`{"email": "test@example.com", "password": "wrong"}`)
	w = performRequest(router, "POST", "/login", body)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertExpectations(t)
}

// TestLoginNeedsVerification 未验证邮箱的用户登录返回 403 并附带重发信息
func TestLoginNeedsVerification(t *testing.T) {
	mockService := new(MockUserService)
	handler := NewAuthHandler(mockService)

	router := gin.New()
	router.POST("/login", handler.Login)

	unverified := &model.User{ID: 2, Email: "new@example.com", IsVerified: false}
	mockService.On("Login", "new@example.com", "password123").
		Return(unverified, errors.New(errors.ErrNeedsVerification, "请先验证您的邮箱再登录"))

	body := []byte(`{"email": "new@example.com", "password": "password123"}`)
	w := performRequest(router, "POST", "/login", body)

	assert.Equal(t, http.StatusForbidden, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, true, resp["needsVerification"])
	assert.Equal(t, "new@example.com", resp["email"])
}

// TestVerifyEmail 测试邮箱验证处理器
func TestVerifyEmail(t *testing.T) {
	mockService := new(MockUserService)
	handler := NewAuthHandler(mockService)

	router := gin.New()
	router.GET("/verify-email/:token", handler.VerifyEmail)

	mockService.On("VerifyEmail", "good-token").Return(nil)
	mockService.On("VerifyEmail", "bad-token").
		Return(errors.New(errors.ErrValidation, "验证令牌无效或已过期"))

	w := performRequest(router, "GET", "/verify-email/good-token", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, "GET", "/verify-email/bad-token", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertExpectations(t)
}

// TestDeleteAccount 测试账户注销处理器返回删除的书籍数量
func TestDeleteAccount(t *testing.T) {
	mockService := new(MockUserService)
	handler := NewAuthHandler(mockService)

	router := gin.New()
	router.DELETE("/delete-account", func(c *gin.Context) {
		c.Set("user_id", 1)
		handler.DeleteAccount(c)
	})

	mockService.On("DeleteAccount", 1).Return(2, nil)

	w := performRequest(router, "DELETE", "/delete-account", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(2), resp["booksDeleted"])
	mockService.AssertExpectations(t)
}
