package interfaces

import "bookshare-backend/internal/model"

// MessageRepository 接口定义了私信仓库应该实现的方法
type MessageRepository interface {
	Create(message *model.Message) error
	// FindConversation 返回两个用户之间的全部消息，按时间升序
	FindConversation(userID, otherID int) ([]*model.Message, error)
	// FindUserMessages 返回用户参与的全部消息（排除自发自收），
	// 按创建时间降序、ID降序排列
	FindUserMessages(userID int) ([]*model.Message, error)
	// MarkRead 将 sender 发给 recipient 的未读消息标记为已读
	MarkRead(senderID, recipientID int) error
}
