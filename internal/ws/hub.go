package ws

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"bookshare-backend/internal/model"
	"bookshare-backend/internal/util"
)

// Presence 暴露在线状态查询和定向推送能力，供 HTTP 层注入使用
type Presence interface {
	SendToUser(userID int, event string, data interface{}) bool
	IsOnline(userID int) bool
	OnlineUsers() []int
}

// DeriveChannel 根据两个用户 ID 计算会话频道名。
// 对字符串形式的 ID 做字典序排序后用下划线连接，保证双方算出同一频道
func DeriveChannel(a, b int) string {
	ids := []string{strconv.Itoa(a), strconv.Itoa(b)}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}

// Hub 管理所有活跃的 WebSocket 连接、在线状态和会话频道
type Hub struct {
	// 受 mu 保护的连接状态
	clients  map[*Client]bool
	users    map[int]*Client            // userID -> 当前连接（后登录者顶掉先前连接）
	channels map[string]map[*Client]bool // 频道名 -> 订阅连接
	mu       sync.RWMutex

	register   chan *Client
	unregister chan *Client
}

// NewHub 创建一个新的 Hub 实例
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		users:      make(map[int]*Client),
		channels:   make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run 启动 Hub 主循环，处理连接的注册和注销
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()

	// 同一用户重复连接时，仅保留最新连接
	if prev, ok := h.users[client.userID]; ok && prev != client {
		h.dropClientLocked(prev)
		if prev.conn != nil {
			prev.conn.Close()
		}
	}

	h.clients[client] = true
	h.users[client.userID] = client
	snapshot := h.onlineUsersLocked()
	h.mu.Unlock()

	util.Logger.Info("WebSocket 客户端已连接",
		zap.String("connection_id", client.id),
		zap.Int("user_id", client.userID))

	h.broadcastStatus(client.userID, true)
	h.sendEvent(client, EventOnlineUsersList, snapshot)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	// 被新连接顶掉的旧连接注销时不得影响新连接的在线状态
	current := h.users[client.userID] == client
	h.dropClientLocked(client)
	h.mu.Unlock()

	util.Logger.Info("WebSocket 客户端已断开",
		zap.String("connection_id", client.id),
		zap.Int("user_id", client.userID))

	if current {
		h.broadcastStatus(client.userID, false)
	}
}

// dropClientLocked 从所有注册表中移除连接，调用方必须持有写锁
func (h *Hub) dropClientLocked(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	if h.users[client.userID] == client {
		delete(h.users, client.userID)
	}
	for name, members := range h.channels {
		if _, ok := members[client]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(h.channels, name)
			}
		}
	}
	close(client.send)
}

func (h *Hub) onlineUsersLocked() []int {
	users := make([]int, 0, len(h.users))
	for userID := range h.users {
		users = append(users, userID)
	}
	sort.Ints(users)
	return users
}

// OnlineUsers 返回当前在线用户 ID 列表
func (h *Hub) OnlineUsers() []int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.onlineUsersLocked()
}

// IsOnline 判断用户当前是否在线
func (h *Hub) IsOnline(userID int) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.users[userID]
	return ok
}

// SendToUser 向指定用户的当前连接推送事件，用户不在线时返回 false
func (h *Hub) SendToUser(userID int, event string, data interface{}) bool {
	raw, ok := h.encodeEvent(event, data)
	if !ok {
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	client, online := h.users[userID]
	if !online {
		return false
	}
	h.deliverLocked(client, raw)
	return true
}

// RelayMessage 将一条已持久化的消息投递给接收方：
// 定向发送 receive-message 和 new-message-notification，不做频道广播
func (h *Hub) RelayMessage(message *model.Message) {
	if message == nil {
		return
	}
	h.SendToUser(message.RecipientID, EventReceiveMessage, message)
	h.SendToUser(message.RecipientID, EventNewMessageNotified, NotificationPayload{
		From:    message.SenderID,
		Message: message,
	})
}

// joinChannel 将连接订阅到会话频道，会话期间不会退订
func (h *Hub) joinChannel(client *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	members, ok := h.channels[channel]
	if !ok {
		members = make(map[*Client]bool)
		h.channels[channel] = members
	}
	members[client] = true
}

// relayToChannel 向频道内除发送者外的所有连接推送事件
func (h *Hub) relayToChannel(channel string, sender *Client, event string, data interface{}) {
	raw, ok := h.encodeEvent(event, data)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.channels[channel] {
		if client == sender {
			continue
		}
		h.deliverLocked(client, raw)
	}
}

// broadcastStatus 向所有连接广播用户上下线变更
func (h *Hub) broadcastStatus(userID int, online bool) {
	raw, ok := h.encodeEvent(EventUserStatusChange, StatusChangePayload{UserID: userID, Online: online})
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if client.userID == userID {
			continue
		}
		h.deliverLocked(client, raw)
	}
}

// sendEvent 向单个连接推送事件
func (h *Hub) sendEvent(client *Client, event string, data interface{}) {
	raw, ok := h.encodeEvent(event, data)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.deliverLocked(client, raw)
}

// deliverLocked 向连接投递已序列化的事件，发送缓冲已满时丢弃。
// 调用方必须持有锁：投递与注销时的通道关闭互斥，
// 注册表中不存在的连接直接跳过，不会写入已关闭的通道
func (h *Hub) deliverLocked(client *Client, raw []byte) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	select {
	case client.send <- raw:
	default:
	}
}

func (h *Hub) encodeEvent(event string, data interface{}) ([]byte, bool) {
	ev, err := NewEvent(event, data)
	if err != nil {
		util.Logger.Error("构造事件失败", zap.String("event", event), zap.Error(err))
		return nil, false
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		util.Logger.Error("序列化事件失败", zap.String("event", event), zap.Error(err))
		return nil, false
	}
	return raw, true
}

// handleEvent 分发客户端上行事件
func (h *Hub) handleEvent(client *Client, ev *Event) {
	switch ev.Event {
	case EventUserConnected:
		// 连接建立时已完成注册，此事件仅作为客户端握手确认
	case EventJoinChat:
		var payload JoinChatPayload
		if err := json.Unmarshal(ev.Data, &payload); err != nil {
			util.Logger.Warn("解析 join-chat 载荷失败", zap.Error(err))
			return
		}
		h.joinChannel(client, DeriveChannel(client.userID, payload.OtherUserID))
	case EventSendMessage:
		var payload SendMessagePayload
		if err := json.Unmarshal(ev.Data, &payload); err != nil {
			util.Logger.Warn("解析 send-message 载荷失败", zap.Error(err))
			return
		}
		if payload.Message == nil || payload.Message.SenderID != client.userID {
			return
		}
		h.RelayMessage(payload.Message)
	case EventTyping:
		h.relayTyping(client, ev.Data, EventUserTyping)
	case EventStopTyping:
		h.relayTyping(client, ev.Data, EventUserStopTyping)
	default:
		util.Logger.Warn("未知的 WebSocket 事件",
			zap.String("event", ev.Event),
			zap.Int("user_id", client.userID))
	}
}

func (h *Hub) relayTyping(client *Client, data json.RawMessage, event string) {
	var payload TypingPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		util.Logger.Warn("解析输入状态载荷失败", zap.Error(err))
		return
	}
	payload.UserID = client.userID
	channel := DeriveChannel(client.userID, payload.RecipientID)
	h.relayToChannel(channel, client, event, payload)
}

// 确保 Hub 实现了 Presence 接口
var _ Presence = (*Hub)(nil)
