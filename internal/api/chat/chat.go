package chat

import (
	"bookshare-backend/internal/errors"
	"bookshare-backend/internal/service"
	"bookshare-backend/internal/util"
	"bookshare-backend/internal/ws"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatHandler 处理与私信相关的HTTP请求
type ChatHandler struct {
	chatService service.ChatServiceInterface
	presence    ws.Presence
}

// NewChatHandler 创建一个新的 ChatHandler 实例
func NewChatHandler(chatService service.ChatServiceInterface, presence ws.Presence) *ChatHandler {
	return &ChatHandler{chatService, presence}
}

// SendMessage 发送私信：先持久化，再通过 Hub 实时投递
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID := c.GetInt("user_id")

	var requestData struct {
		RecipientID int    `json:"recipient_id" binding:"required"`
		Content     string `json:"content" binding:"required"`
	}

	if err := c.ShouldBindJSON(&requestData); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "无效的请求数据", err))
		return
	}

	message, err := h.chatService.SendMessage(userID, requestData.RecipientID, requestData.Content)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		util.Logger.Error("发送消息失败", zap.Error(err))
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "发送消息失败", err))
		return
	}

	// 接收方在线时定向推送，不在线则仅落库
	h.presence.SendToUser(message.RecipientID, ws.EventReceiveMessage, message)
	h.presence.SendToUser(message.RecipientID, ws.EventNewMessageNotified, ws.NotificationPayload{
		From:    message.SenderID,
		Message: message,
	})

	errors.HandleCreated(c, gin.H{
		"message": message,
	}, "消息已发送")
}

// GetConversations 返回会话列表，每个对话方一条，按最新消息倒序
func (h *ChatHandler) GetConversations(c *gin.Context) {
	userID := c.GetInt("user_id")

	conversations, err := h.chatService.GetConversations(userID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取会话列表失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"conversations": conversations,
	}, "")
}

// GetConversation 返回与指定用户的完整消息记录，并将对方发来的消息标记为已读
func (h *ChatHandler) GetConversation(c *gin.Context) {
	userID := c.GetInt("user_id")

	otherID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		errors.HandleError(c, errors.New(errors.ErrBadRequest, "无效的用户ID"))
		return
	}

	messages, err := h.chatService.GetConversation(userID, otherID)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			errors.HandleError(c, appErr)
			return
		}
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "获取会话消息失败", err))
		return
	}

	errors.HandleSuccess(c, gin.H{
		"messages": messages,
	}, "")
}
