package model

import "time"

// Message 结构体表示私信模型
type Message struct {
	ID          int          `json:"id"`
	SenderID    int          `json:"sender_id"`
	RecipientID int          `json:"recipient_id"`
	Content     string       `json:"content"`
	Read        bool         `json:"read"`
	Sender      *UserProfile `json:"sender,omitempty"`
	Recipient   *UserProfile `json:"recipient,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Conversation 表示会话摘要：与某个对话方的最近一条消息
type Conversation struct {
	CounterpartID int      `json:"counterpart_id"`
	LastMessage   *Message `json:"last_message"`
}
