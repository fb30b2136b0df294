package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"bookshare-backend/internal/util"
)

const (
	// 向对端写入一条消息的最长等待时间
	writeWait = 10 * time.Second

	// 等待对端 pong 响应的最长时间
	pongWait = 60 * time.Second

	// ping 发送周期，必须小于 pongWait
	pingPeriod = (pongWait * 9) / 10

	// 允许对端发送的最大消息长度
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client 表示一条已认证的 WebSocket 连接
type Client struct {
	id     string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID int
}

// readPump 从连接读取上行事件并交给 Hub 处理
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				util.Logger.Warn("WebSocket 连接异常关闭",
					zap.Int("user_id", c.userID), zap.Error(err))
			}
			break
		}

		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			util.Logger.Warn("解析 WebSocket 消息失败",
				zap.Int("user_id", c.userID), zap.Error(err))
			continue
		}
		c.hub.handleEvent(c, &ev)
	}
}

// writePump 将 Hub 推送的消息写入连接，并定期发送 ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWS 处理 WebSocket 升级请求。
// 通过 token 查询参数完成认证后升级连接并注册到 Hub
func ServeWS(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		userID, err := util.ValidateToken(token)
		if err != nil {
			util.Logger.Warn("WebSocket 认证失败", zap.Error(err))
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			util.Logger.Error("WebSocket 升级失败", zap.Error(err))
			return
		}

		client := &Client{
			id:     uuid.NewString(),
			hub:    hub,
			conn:   conn,
			send:   make(chan []byte, 256),
			userID: userID,
		}
		hub.register <- client

		go client.writePump()
		go client.readPump()
	}
}
