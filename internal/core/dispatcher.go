package core

import (
	"github.com/hongjun500/duel-go/internal/protocol"
	"github.com/hongjun500/duel-go/pkg/logger"
)

// HandlerFunc 业务处理器。返回 0~2 个出站信封，按序写回链路；
// 推送类消息由引擎内部通过 SessionManager 直接发出，不走返回值。
type HandlerFunc func(link *Link, env *protocol.Envelope) []*protocol.Envelope

// Dispatcher 按消息类型分发到处理器
type Dispatcher struct {
	handlers map[string]HandlerFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]HandlerFunc)}
}

// Register 注册处理器
func (d *Dispatcher) Register(msgType string, handler HandlerFunc) {
	d.handlers[msgType] = handler
}

// Dispatch 分发一条消息。未知类型回 SYSTEM.ERROR(UNKNOWN_TYPE)，
// 沿用消息上已有的寻址字段，不会让任何一侧崩溃。
func (d *Dispatcher) Dispatch(link *Link, env *protocol.Envelope) []*protocol.Envelope {
	handler, ok := d.handlers[env.Type]
	if !ok {
		logger.L().Sugar().Warnw("unknown_message_type", "type", env.Type)
		e := protocol.NewLocalError(protocol.CodeUnknownType, "unknown message type: "+env.Type)
		e.CorrelationID = env.CorrelationID
		e.SessionID = env.SessionID
		return []*protocol.Envelope{e}
	}
	return handler(link, env)
}
