package ws

import (
	"encoding/json"

	"bookshare-backend/internal/model"
)

// 客户端到服务端事件
const (
	EventUserConnected = "user-connected"
	EventJoinChat      = "join-chat"
	EventSendMessage   = "send-message"
	EventTyping        = "typing"
	EventStopTyping    = "stop-typing"
)

// 服务端到客户端事件
const (
	EventReceiveMessage     = "receive-message"
	EventUserTyping         = "user-typing"
	EventUserStopTyping     = "user-stop-typing"
	EventUserStatusChange   = "user-status-change"
	EventOnlineUsersList    = "online-users-list"
	EventNewMessageNotified = "new-message-notification"
)

// Event 是 WebSocket 连接上传输的统一消息帧
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEvent 构造一个向客户端发送的消息帧
func NewEvent(event string, data interface{}) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Event{Event: event, Data: raw}, nil
}

// JoinChatPayload 请求加入与另一用户的会话频道
type JoinChatPayload struct {
	OtherUserID int `json:"otherUserId"`
}

// SendMessagePayload 携带一条已持久化的消息，请求投递给接收方
type SendMessagePayload struct {
	RecipientID int            `json:"recipientId"`
	Message     *model.Message `json:"message"`
}

// TypingPayload 输入状态事件的载荷
type TypingPayload struct {
	UserID      int `json:"userId"`
	RecipientID int `json:"recipientId"`
}

// StatusChangePayload 用户上下线通知
type StatusChangePayload struct {
	UserID int  `json:"userId"`
	Online bool `json:"online"`
}

// NotificationPayload 新消息通知，发给接收方的个人连接
type NotificationPayload struct {
	From    int            `json:"from"`
	Message *model.Message `json:"message"`
}
