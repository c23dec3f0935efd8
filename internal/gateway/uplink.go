package gateway

import (
	"bufio"
	"context"
	"errors"
	"net"
	"sync/atomic"
	"time"

	"github.com/hongjun500/duel-go/internal/protocol"
	"github.com/hongjun500/duel-go/pkg/logger"
)

// ErrBackendDown 核心后端不可达或上行缓冲打满
var ErrBackendDown = errors.New("gateway: backend unavailable")

// CoreLink 通往核心后端的唯一一条 TCP 链路。
// 所有客户端的上行消息汇入一个通道，由单个写 goroutine 串行写出；
// 断线后按指数退避重连，期间 Send 直接失败。
type CoreLink struct {
	addr          string
	codec         protocol.LineCodec
	out           chan *protocol.Envelope
	onEnvelope    func(*protocol.Envelope)
	heartbeat     time.Duration
	reconnectBase time.Duration
	reconnectMax  time.Duration

	down atomic.Bool
}

func NewCoreLink(addr string, outBuffer int, heartbeat, reconnectBase, reconnectMax time.Duration, onEnvelope func(*protocol.Envelope)) *CoreLink {
	if outBuffer <= 0 {
		outBuffer = 256
	}
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	if reconnectBase <= 0 {
		reconnectBase = time.Second
	}
	if reconnectMax < reconnectBase {
		reconnectMax = 30 * time.Second
	}
	l := &CoreLink{
		addr:          addr,
		out:           make(chan *protocol.Envelope, outBuffer),
		onEnvelope:    onEnvelope,
		heartbeat:     heartbeat,
		reconnectBase: reconnectBase,
		reconnectMax:  reconnectMax,
	}
	l.down.Store(true)
	return l
}

// Down 链路当前是否断开
func (l *CoreLink) Down() bool { return l.down.Load() }

// Send 把一条上行消息排入链路。链路断开或缓冲打满立即失败，
// 调用方据此就地回 BACKEND_UNAVAILABLE。
func (l *CoreLink) Send(env *protocol.Envelope) error {
	if l.down.Load() {
		return ErrBackendDown
	}
	select {
	case l.out <- env:
		return nil
	default:
		return ErrBackendDown
	}
}

// Run 维持链路直到 ctx 取消：连接、收发、断线重连
func (l *CoreLink) Run(ctx context.Context) {
	backoff := l.reconnectBase
	for {
		if ctx.Err() != nil {
			return
		}
		conn, err := net.Dial("tcp", l.addr)
		if err != nil {
			logger.L().Sugar().Warnw("core_dial_failed", "addr", l.addr, "retry_in", backoff, "err", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, l.reconnectMax)
			continue
		}
		backoff = l.reconnectBase
		l.down.Store(false)
		logger.L().Sugar().Infow("core_connected", "addr", l.addr)

		l.serve(ctx, conn)

		l.down.Store(true)
		logger.L().Sugar().Warnw("core_disconnected", "addr", l.addr)
	}
}

// serve 在一条活动连接上收发，任何一侧出错即返回
func (l *CoreLink) serve(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(l.heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				// 关掉连接让读循环解除阻塞
				_ = conn.Close()
				return
			case env := <-l.out:
				if err := l.codec.Encode(conn, env); err != nil {
					logger.L().Sugar().Warnw("core_write_failed", "err", err)
					_ = conn.Close()
					return
				}
			case <-ticker.C:
				// 不带寻址，应答在网关本地终结
				ping, _ := protocol.NewPush(protocol.SystemPing, "", &protocol.PingPayload{
					Timestamp: time.Now().UnixMilli(),
				})
				if err := l.codec.Encode(conn, ping); err != nil {
					_ = conn.Close()
					return
				}
			}
		}
	}()

	r := bufio.NewReader(conn)
	for {
		env, err := l.codec.Decode(r, protocol.MaxMessageSize)
		if err != nil {
			if errors.Is(err, protocol.ErrMalformed) {
				logger.L().Sugar().Warnw("core_malformed_message", "err", err)
				continue
			}
			// 超长行或连接错误都只能重连
			_ = conn.Close()
			<-writerDone
			return
		}
		l.onEnvelope(env)
	}
}
