package mysql

import (
	"bookshare-backend/internal/common"
	"bookshare-backend/internal/model"
	"bookshare-backend/internal/util"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// messageRepository 实现了 MessageRepository 接口
type messageRepository struct {
	db *sql.DB
}

// NewMessageRepository 创建一个新的 messageRepository 实例
func NewMessageRepository(db *sql.DB) *messageRepository {
	return &messageRepository{db}
}

// Create 创建一条新消息并回填发送方与接收方的轻量级信息
func (r *messageRepository) Create(message *model.Message) error {
	result, err := r.db.Exec(
		`INSERT INTO messages (sender_id, recipient_id, content, is_read) VALUES (?, ?, ?, false)`,
		message.SenderID, message.RecipientID, message.Content)
	if err != nil {
		util.Logger.Error("创建消息失败", zap.Error(err),
			zap.Int("sender_id", message.SenderID),
			zap.Int("recipient_id", message.RecipientID))
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	message.ID = int(id)

	// 回读时间戳和双方信息
	var sender, recipient model.UserProfile
	err = r.db.QueryRow(`
		SELECT m.created_at,
		       s.id, s.name, s.avatar_url,
		       rec.id, rec.name, rec.avatar_url
		FROM messages m
		JOIN users s ON s.id = m.sender_id
		JOIN users rec ON rec.id = m.recipient_id
		WHERE m.id = ?`, message.ID).Scan(
		&message.CreatedAt,
		&sender.ID, &sender.Name, &sender.AvatarURL,
		&recipient.ID, &recipient.Name, &recipient.AvatarURL,
	)
	if err != nil {
		return fmt.Errorf("failed to load message projections: %w", err)
	}
	message.Sender = &sender
	message.Recipient = &recipient
	util.Logger.Info("消息创建成功", zap.Int("message_id", message.ID))
	return nil
}

// FindConversation 返回两个用户之间的全部消息，按时间升序
func (r *messageRepository) FindConversation(userID, otherID int) ([]*model.Message, error) {
	query := messageSelect + `
		WHERE (m.sender_id = ? AND m.recipient_id = ?)
		   OR (m.sender_id = ? AND m.recipient_id = ?)
		ORDER BY m.created_at ASC, m.id ASC`
	return r.queryMessages(query, userID, otherID, otherID, userID)
}

// FindUserMessages 返回用户参与的全部消息（排除自发自收），
// 按创建时间降序、ID降序排列，为会话聚合提供确定的顺序
func (r *messageRepository) FindUserMessages(userID int) ([]*model.Message, error) {
	query := messageSelect + `
		WHERE (m.sender_id = ? OR m.recipient_id = ?)
		  AND m.sender_id != m.recipient_id
		ORDER BY m.created_at DESC, m.id DESC`

	var messages []*model.Message
	err := common.WithRetry(func() error {
		var err error
		messages, err = r.queryMessages(query, userID, userID)
		return err
	}, 3)
	return messages, err
}

// MarkRead 将 sender 发给 recipient 的未读消息标记为已读
func (r *messageRepository) MarkRead(senderID, recipientID int) error {
	_, err := r.db.Exec(
		`UPDATE messages SET is_read = true
		 WHERE sender_id = ? AND recipient_id = ? AND is_read = false`,
		senderID, recipientID)
	if err != nil {
		util.Logger.Error("标记消息已读失败", zap.Error(err),
			zap.Int("sender_id", senderID),
			zap.Int("recipient_id", recipientID))
	}
	return err
}

const messageSelect = `
	SELECT m.id, m.sender_id, m.recipient_id, m.content, m.is_read, m.created_at,
	       s.name, s.avatar_url,
	       rec.name, rec.avatar_url
	FROM messages m
	JOIN users s ON s.id = m.sender_id
	JOIN users rec ON rec.id = m.recipient_id`

func (r *messageRepository) queryMessages(query string, args ...interface{}) ([]*model.Message, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		util.Logger.Error("查询消息失败", zap.Error(err))
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []*model.Message
	for rows.Next() {
		var m model.Message
		var sender, recipient model.UserProfile
		err := rows.Scan(
			&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.Read, &m.CreatedAt,
			&sender.Name, &sender.AvatarURL,
			&recipient.Name, &recipient.AvatarURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		sender.ID = m.SenderID
		recipient.ID = m.RecipientID
		m.Sender = &sender
		m.Recipient = &recipient
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}
