package gateway

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hongjun500/duel-go/internal/config"
	"github.com/hongjun500/duel-go/internal/observe"
	"github.com/hongjun500/duel-go/internal/protocol"
	"github.com/hongjun500/duel-go/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Server 面向客户端的 WebSocket 接入层
type Server struct {
	cfg    *config.Gateway
	router *Router
}

func NewServer(cfg *config.Gateway, router *Router) *Server {
	return &Server{cfg: cfg, router: router}
}

// Start 启动 HTTP 服务并阻塞到 ctx 取消
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.WSPath, s.handleWS)
	srv := &http.Server{Addr: s.cfg.ListenAddr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logger.L().Sugar().Infow("gateway_listen", "addr", s.cfg.ListenAddr, "path", s.cfg.WSPath)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.L().Sugar().Warnw("ws_upgrade_failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	c := NewClientConn(ws, s.cfg.OutBuffer)
	observe.AddClientConns(1)
	logger.L().Sugar().Infow("client_connected", "conn", c.ID(), "remote", r.RemoteAddr)

	ws.SetReadLimit(protocol.MaxMessageSize)
	readWait := s.cfg.HeartbeatInterval * 2
	_ = ws.SetReadDeadline(time.Now().Add(readWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(readWait))
	})

	go c.writeLoop(s.cfg.HeartbeatInterval)

	welcome, _ := protocol.NewPush(protocol.SystemWelcome, "", &protocol.WelcomePayload{
		Message:    "duel gateway ready",
		ServerTime: time.Now().UnixMilli(),
	})
	c.Enqueue(welcome)

	s.readLoop(c, ws)

	observe.AddClientConns(-1)
	c.Close()
	s.router.Disconnected(c)
	logger.L().Sugar().Infow("client_disconnected", "conn", c.ID())
}

// readLoop 逐条读取客户端消息。格式错误就地回应并继续，
// 连接级错误退出循环。
func (s *Server) readLoop(c *ClientConn, ws *websocket.Conn) {
	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.L().Sugar().Warnw("client_read_error", "conn", c.ID(), "err", err)
			}
			return
		}
		env, err := protocol.Unmarshal(bytes.TrimSpace(raw))
		if err != nil {
			logger.L().Sugar().Warnw("client_malformed_message", "conn", c.ID(), "err", err)
			c.Enqueue(protocol.NewLocalError(protocol.CodeInvalidJSON, "malformed message"))
			continue
		}
		s.router.FromClient(c, env)
	}
}
