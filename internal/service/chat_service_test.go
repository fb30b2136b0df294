package service

import (
	"bookshare-backend/internal/errors"
	"bookshare-backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockMessageRepository 是 MessageRepository 接口的模拟实现
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(message *model.Message) error {
	args := m.Called(message)
	return args.Error(0)
}

func (m *MockMessageRepository) FindConversation(userID, otherID int) ([]*model.Message, error) {
	args := m.Called(userID, otherID)
	return args.Get(0).([]*model.Message), args.Error(1)
}

func (m *MockMessageRepository) FindUserMessages(userID int) ([]*model.Message, error) {
	args := m.Called(userID)
	return args.Get(0).([]*model.Message), args.Error(1)
}

func (m *MockMessageRepository) MarkRead(senderID, recipientID int) error {
	args := m.Called(senderID, recipientID)
	return args.Error(0)
}

// TestSendMessage 测试发送私信的校验
func TestSendMessage(t *testing.T) {
	mockMessageRepo := new(MockMessageRepository)
	mockUserRepo := new(MockUserRepository)
	service := NewChatService(mockMessageRepo, mockUserRepo)

	mockUserRepo.On("FindByID", 2).Return(&model.User{ID: 2}, nil)
	mockUserRepo.On("FindByID", 99).Return(nil, nil)
	mockMessageRepo.On("Create", mock.AnythingOfType("*model.Message")).Return(nil)

	// 成功发送
	message, err := service.SendMessage(1, 2, "你好")
	assert.NoError(t, err)
	assert.Equal(t, 1, message.SenderID)
	assert.Equal(t, 2, message.RecipientID)

	// 不能给自己发消息
	_, err = service.SendMessage(1, 1, "你好")
	assertAppErrCode(t, err, errors.ErrSelfTargeting)

	// 内容不能为空
	_, err = service.SendMessage(1, 2, "")
	assertAppErrCode(t, err, errors.ErrValidation)

	// 接收方不存在
	_, err = service.SendMessage(1, 99, "你好")
	assertAppErrCode(t, err, errors.ErrUserNotFound)
}

// TestGetConversation 测试读取会话时对方消息被标记为已读
func TestGetConversation(t *testing.T) {
	mockMessageRepo := new(MockMessageRepository)
	mockUserRepo := new(MockUserRepository)
	service := NewChatService(mockMessageRepo, mockUserRepo)

	thread := []*model.Message{
		{ID: 1, SenderID: 2, RecipientID: 1, Content: "hola"},
		{ID: 2, SenderID: 1, RecipientID: 2, Content: "hola!"},
	}
	mockMessageRepo.On("FindConversation", 1, 2).Return(thread, nil)
	mockMessageRepo.On("MarkRead", 2, 1).Return(nil)

	messages, err := service.GetConversation(1, 2)
	assert.NoError(t, err)
	assert.Len(t, messages, 2)
	mockMessageRepo.AssertExpectations(t)
}

// TestGetConversations 测试会话聚合：每个对话方一条，取最近的消息
func TestGetConversations(t *testing.T) {
	mockMessageRepo := new(MockMessageRepository)
	mockUserRepo := new(MockUserRepository)
	service := NewChatService(mockMessageRepo, mockUserRepo)

	now := time.Now()
	// 仓库层已按 (created_at DESC, id DESC) 排序
	messages := []*model.Message{
		{ID: 9, SenderID: 3, RecipientID: 1, Content: "最新", CreatedAt: now},
		{ID: 8, SenderID: 1, RecipientID: 2, Content: "给2的", CreatedAt: now.Add(-time.Minute)},
		{ID: 7, SenderID: 1, RecipientID: 3, Content: "旧消息", CreatedAt: now.Add(-2 * time.Minute)},
		{ID: 6, SenderID: 2, RecipientID: 1, Content: "更旧", CreatedAt: now.Add(-3 * time.Minute)},
	}
	mockMessageRepo.On("FindUserMessages", 1).Return(messages, nil)

	conversations, err := service.GetConversations(1)
	assert.NoError(t, err)
	assert.Len(t, conversations, 2)

	// 对话方 3 的最新消息是 ID 9
	assert.Equal(t, 3, conversations[0].CounterpartID)
	assert.Equal(t, 9, conversations[0].LastMessage.ID)

	// 对话方 2 的最新消息是 ID 8，而不是更旧的 ID 6
	assert.Equal(t, 2, conversations[1].CounterpartID)
	assert.Equal(t, 8, conversations[1].LastMessage.ID)
}

// TestGetConversationsEmpty 没有消息时返回空列表而不是 nil，
// 序列化后客户端拿到的是 [] 而不是 null
func TestGetConversationsEmpty(t *testing.T) {
	mockMessageRepo := new(MockMessageRepository)
	mockUserRepo := new(MockUserRepository)
	service := NewChatService(mockMessageRepo, mockUserRepo)

	mockMessageRepo.On("FindUserMessages", 1).Return([]*model.Message{}, nil)

	conversations, err := service.GetConversations(1)
	assert.NoError(t, err)
	assert.NotNil(t, conversations)
	assert.Len(t, conversations, 0)
}
