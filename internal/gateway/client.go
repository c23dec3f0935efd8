package gateway

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hongjun500/duel-go/internal/observe"
	"github.com/hongjun500/duel-go/internal/protocol"
	"github.com/hongjun500/duel-go/pkg/logger"
)

const clientWriteWait = 10 * time.Second

// ClientConn 一条客户端 WebSocket 连接。
// 出站消息进缓冲通道，由专属写 goroutine 串行写出；
// 缓冲打满说明客户端消费不过来，直接丢弃该条消息。
type ClientConn struct {
	id string
	ws *websocket.Conn

	out chan *protocol.Envelope

	mu        sync.Mutex
	closed    bool
	sessionID string
}

func NewClientConn(ws *websocket.Conn, outBuffer int) *ClientConn {
	if outBuffer <= 0 {
		outBuffer = 256
	}
	return &ClientConn{
		id:  uuid.New().String(),
		ws:  ws,
		out: make(chan *protocol.Envelope, outBuffer),
	}
}

func (c *ClientConn) ID() string { return c.id }

func (c *ClientConn) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

func (c *ClientConn) SetSessionID(id string) {
	c.mu.Lock()
	c.sessionID = id
	c.mu.Unlock()
}

// Enqueue 入队一条出站消息。连接已关闭或缓冲打满返回 false。
func (c *ClientConn) Enqueue(env *protocol.Envelope) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		observe.IncDropped("conn_closed")
		return false
	}
	select {
	case c.out <- env:
		return true
	default:
		observe.IncDropped("backpressure")
		logger.L().Sugar().Warnw("client_backpressure_drop", "conn", c.id, "type", env.Type)
		return false
	}
}

// Close 幂等关闭，之后的 Enqueue 一律失败
func (c *ClientConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.out)
	c.mu.Unlock()
	_ = c.ws.Close()
}

// writeLoop 唯一的写者：排空出站通道并按心跳间隔发 ping
func (c *ClientConn) writeLoop(heartbeat time.Duration) {
	ticker := time.NewTicker(heartbeat)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case env, ok := <-c.out:
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			raw, err := json.Marshal(env)
			if err != nil {
				logger.L().Sugar().Errorw("client_encode_failed", "conn", c.id, "type", env.Type, "err", err)
				continue
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(clientWriteWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, raw); err != nil {
				logger.L().Sugar().Infow("client_write_closed", "conn", c.id, "err", err)
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(clientWriteWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
