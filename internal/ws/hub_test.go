package ws

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshare-backend/internal/model"
	"bookshare-backend/internal/util"
)

func TestMain(m *testing.M) {
	util.InitLogger("error")
	os.Exit(m.Run())
}

func newTestClient(userID int) *Client {
	return &Client{
		id:     "test-" + time.Now().String(),
		send:   make(chan []byte, 16),
		userID: userID,
	}
}

func readEvent(t *testing.T, c *Client) *Event {
	t.Helper()
	select {
	case raw := <-c.send:
		var ev Event
		require.NoError(t, json.Unmarshal(raw, &ev))
		return &ev
	case <-time.After(100 * time.Millisecond):
		t.Fatal("未收到预期的事件")
		return nil
	}
}

// TestDeriveChannel 两侧必须算出同一频道名，ID 按字典序排序
func TestDeriveChannel(t *testing.T) {
	assert.Equal(t, DeriveChannel(1, 2), DeriveChannel(2, 1))
	assert.Equal(t, "1_2", DeriveChannel(2, 1))

	// 字典序而非数值序
	assert.Equal(t, "10_2", DeriveChannel(2, 10))
	assert.Equal(t, "10_2", DeriveChannel(10, 2))
}

// TestRegistryLastWins 同一用户再次连接时，新连接顶掉旧连接
func TestRegistryLastWins(t *testing.T) {
	hub := NewHub()

	first := newTestClient(1)
	second := newTestClient(1)

	hub.registerClient(first)
	assert.True(t, hub.IsOnline(1))

	hub.registerClient(second)
	assert.True(t, hub.IsOnline(1))
	assert.Equal(t, []int{1}, hub.OnlineUsers())

	hub.mu.RLock()
	assert.Same(t, second, hub.users[1])
	_, firstStillRegistered := hub.clients[first]
	hub.mu.RUnlock()
	assert.False(t, firstStillRegistered)

	// 旧连接的注销不能影响新连接的在线状态
	hub.unregisterClient(first)
	assert.True(t, hub.IsOnline(1))
}

// TestPresenceSnapshot 新连接收到在线用户列表，其他连接收到上线广播
func TestPresenceSnapshot(t *testing.T) {
	hub := NewHub()

	alice := newTestClient(1)
	hub.registerClient(alice)

	// 注册时收到自己的在线列表
	ev := readEvent(t, alice)
	assert.Equal(t, EventOnlineUsersList, ev.Event)

	var online []int
	require.NoError(t, json.Unmarshal(ev.Data, &online))
	assert.Equal(t, []int{1}, online)

	bob := newTestClient(2)
	hub.registerClient(bob)

	// 已在线的 alice 收到 bob 的上线广播
	ev = readEvent(t, alice)
	assert.Equal(t, EventUserStatusChange, ev.Event)

	var status StatusChangePayload
	require.NoError(t, json.Unmarshal(ev.Data, &status))
	assert.Equal(t, 2, status.UserID)
	assert.True(t, status.Online)

	// bob 的快照包含双方
	ev = readEvent(t, bob)
	assert.Equal(t, EventOnlineUsersList, ev.Event)
	require.NoError(t, json.Unmarshal(ev.Data, &online))
	assert.Equal(t, []int{1, 2}, online)

	// bob 断开后 alice 收到下线广播
	hub.unregisterClient(bob)
	ev = readEvent(t, alice)
	assert.Equal(t, EventUserStatusChange, ev.Event)
	require.NoError(t, json.Unmarshal(ev.Data, &status))
	assert.Equal(t, 2, status.UserID)
	assert.False(t, status.Online)
}

// TestRelayMessage 消息只定向投递给接收方
func TestRelayMessage(t *testing.T) {
	hub := NewHub()

	sender := newTestClient(1)
	recipient := newTestClient(2)
	bystander := newTestClient(3)
	hub.registerClient(sender)
	hub.registerClient(recipient)
	hub.registerClient(bystander)

	// 清空注册阶段产生的事件
	for _, c := range []*Client{sender, recipient, bystander} {
		for len(c.send) > 0 {
			<-c.send
		}
	}

	msg := &model.Message{ID: 10, SenderID: 1, RecipientID: 2, Content: "你好"}
	hub.RelayMessage(msg)

	ev := readEvent(t, recipient)
	assert.Equal(t, EventReceiveMessage, ev.Event)

	var received model.Message
	require.NoError(t, json.Unmarshal(ev.Data, &received))
	assert.Equal(t, 10, received.ID)
	assert.Equal(t, "你好", received.Content)

	ev = readEvent(t, recipient)
	assert.Equal(t, EventNewMessageNotified, ev.Event)

	var notification NotificationPayload
	require.NoError(t, json.Unmarshal(ev.Data, &notification))
	assert.Equal(t, 1, notification.From)

	// 发送方和无关用户不会收到任何投递
	assert.Empty(t, sender.send)
	assert.Empty(t, bystander.send)
}

// TestTypingRelay 输入状态只转发给频道内除发送者外的成员
func TestTypingRelay(t *testing.T) {
	hub := NewHub()

	alice := newTestClient(1)
	bob := newTestClient(2)
	hub.registerClient(alice)
	hub.registerClient(bob)

	hub.joinChannel(alice, DeriveChannel(1, 2))
	hub.joinChannel(bob, DeriveChannel(2, 1))

	for _, c := range []*Client{alice, bob} {
		for len(c.send) > 0 {
			<-c.send
		}
	}

	payload, _ := json.Marshal(TypingPayload{RecipientID: 2})
	hub.handleEvent(alice, &Event{Event: EventTyping, Data: payload})

	ev := readEvent(t, bob)
	assert.Equal(t, EventUserTyping, ev.Event)

	var typing TypingPayload
	require.NoError(t, json.Unmarshal(ev.Data, &typing))
	assert.Equal(t, 1, typing.UserID)

	// 发送者自己收不到
	assert.Empty(t, alice.send)

	hub.handleEvent(alice, &Event{Event: EventStopTyping, Data: payload})
	ev = readEvent(t, bob)
	assert.Equal(t, EventUserStopTyping, ev.Event)
}

// TestSendToUserDuringDisconnect 定向投递与连接注销并发进行时，
// 不得向已关闭的发送通道写入
func TestSendToUserDuringDisconnect(t *testing.T) {
	hub := NewHub()

	msg := &model.Message{ID: 1, SenderID: 2, RecipientID: 1, Content: "你好"}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5000; i++ {
			hub.SendToUser(1, EventReceiveMessage, msg)
		}
	}()

	for i := 0; i < 5000; i++ {
		client := newTestClient(1)
		hub.registerClient(client)
		hub.unregisterClient(client)
	}
	<-done

	assert.False(t, hub.IsOnline(1))
}

// TestSendToUserOffline 不在线的用户投递返回 false
func TestSendToUserOffline(t *testing.T) {
	hub := NewHub()

	assert.False(t, hub.SendToUser(42, EventReceiveMessage, nil))

	client := newTestClient(42)
	hub.registerClient(client)
	assert.True(t, hub.SendToUser(42, EventReceiveMessage, nil))
}
