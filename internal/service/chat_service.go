package service

import (
	"bookshare-backend/internal/errors"
	"bookshare-backend/internal/model"
	"bookshare-backend/internal/repository/interfaces"
	"fmt"
)

// ChatService 处理私信与会话聚合的业务逻辑
type ChatService struct {
	messageRepo interfaces.MessageRepository
	userRepo    interfaces.UserRepository
}

// NewChatService 创建一个新的 ChatService 实例
func NewChatService(messageRepo interfaces.MessageRepository, userRepo interfaces.UserRepository) *ChatService {
	return &ChatService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
	}
}

// SendMessage 发送私信
func (s *ChatService) SendMessage(senderID, recipientID int, content string) (*model.Message, error) {
	if senderID == recipientID {
		return nil, errors.New(errors.ErrSelfTargeting, "不能给自己发送消息")
	}
	if content == "" {
		return nil, errors.New(errors.ErrValidation, "消息内容不能为空")
	}

	recipient, err := s.userRepo.FindByID(recipientID)
	if err != nil {
		return nil, fmt.Errorf("查询接收方失败: %w", err)
	}
	if recipient == nil {
		return nil, errors.New(errors.ErrUserNotFound, "接收方不存在")
	}

	message := &model.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}
	return message, nil
}

// GetConversation 返回与某用户的完整会话并把对方发来的消息标记为已读
func (s *ChatService) GetConversation(userID, otherID int) ([]*model.Message, error) {
	messages, err := s.messageRepo.FindConversation(userID, otherID)
	if err != nil {
		return nil, err
	}

	if err := s.messageRepo.MarkRead(otherID, userID); err != nil {
		return nil, fmt.Errorf("标记消息已读失败: %w", err)
	}
	return messages, nil
}

// GetConversations 聚合用户的会话列表：每个对话方一条记录，
// 携带该配对中最近的一条消息，按消息时间降序。
// 输入消息已按 (created_at DESC, id DESC) 排序，
// 因此每个对话方遇到的第一条消息即为最近的一条
func (s *ChatService) GetConversations(userID int) ([]*model.Conversation, error) {
	messages, err := s.messageRepo.FindUserMessages(userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	conversations := []*model.Conversation{}
	for _, m := range messages {
		counterpart := m.SenderID
		if m.SenderID == userID {
			counterpart = m.RecipientID
		}
		if seen[counterpart] {
			continue
		}
		seen[counterpart] = true
		conversations = append(conversations, &model.Conversation{
			CounterpartID: counterpart,
			LastMessage:   m,
		})
	}
	return conversations, nil
}

type ChatServiceInterface interface {
	SendMessage(senderID, recipientID int, content string) (*model.Message, error)
	GetConversation(userID, otherID int) ([]*model.Message, error)
	GetConversations(userID int) ([]*model.Conversation, error)
}

// 确保 ChatService 实现了 ChatServiceInterface
var _ ChatServiceInterface = (*ChatService)(nil)
