package core

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hongjun500/duel-go/internal/protocol"
	"github.com/hongjun500/duel-go/pkg/logger"
)

// Link 一条已接受的网关链路。写侧互斥，一条消息完整写完才轮到下一条；
// 读侧只有专属的 readLoop 一个读者。
type Link struct {
	id      string
	conn    net.Conn
	codec   protocol.LineCodec
	writeMu sync.Mutex
	closed  bool
}

func (l *Link) ID() string         { return l.id }
func (l *Link) RemoteAddr() string { return l.conn.RemoteAddr().String() }

// Send 序列化并写出一条信封，可从任意 goroutine 调用
func (l *Link) Send(env *protocol.Envelope) error {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	if l.closed {
		return net.ErrClosed
	}
	return l.codec.Encode(l.conn, env)
}

func (l *Link) close() {
	l.writeMu.Lock()
	l.closed = true
	l.writeMu.Unlock()
	_ = l.conn.Close()
}

// Server 核心侧的链路监听器
type Server struct {
	disp *Dispatcher
}

func NewServer(disp *Dispatcher) *Server {
	return &Server{disp: disp}
}

// Start 监听并逐条接受网关链路，每条链路一个读 goroutine
func (s *Server) Start(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	logger.L().Sugar().Infow("core_listen", "addr", addr)
	go func() { <-ctx.Done(); _ = ln.Close() }()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.L().Sugar().Warnw("core_accept_error", "err", err)
			continue
		}
		go s.serveLink(conn)
	}
}

func (s *Server) serveLink(conn net.Conn) {
	link := &Link{id: uuid.New().String(), conn: conn}
	logger.L().Sugar().Infow("link_open", "link", link.id, "remote", link.RemoteAddr())

	welcome, _ := protocol.NewPush(protocol.SystemWelcome, "", &protocol.WelcomePayload{
		Message:    "duel core ready",
		ServerTime: time.Now().UnixMilli(),
	})
	_ = link.Send(welcome)

	r := bufio.NewReader(conn)
	for {
		env, err := link.codec.Decode(r, protocol.MaxMessageSize)
		if err != nil {
			// 行边界完好的错误就地回应后继续读
			if errors.Is(err, protocol.ErrMalformed) {
				logger.L().Sugar().Warnw("link_malformed_message", "link", link.id, "err", err)
				_ = link.Send(protocol.NewLocalError(protocol.CodeInvalidJSON, "malformed message"))
				continue
			}
			if errors.Is(err, protocol.ErrLineTooLong) {
				// 行边界已丢，回应后必须断开
				logger.L().Sugar().Warnw("link_frame_too_large", "link", link.id)
				_ = link.Send(protocol.NewLocalError(protocol.CodeInvalidJSON, "message exceeds size limit"))
				link.close()
				return
			}
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				logger.L().Sugar().Warnw("link_read_error", "link", link.id, "err", err)
			}
			logger.L().Sugar().Infow("link_closed", "link", link.id)
			link.close()
			return
		}
		for _, out := range s.disp.Dispatch(link, env) {
			if out == nil {
				continue
			}
			if err := link.Send(out); err != nil {
				logger.L().Sugar().Warnw("link_write_error", "link", link.id, "err", err)
				link.close()
				return
			}
		}
	}
}
