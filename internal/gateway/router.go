package gateway

import (
	"github.com/google/uuid"
	"github.com/hongjun500/duel-go/internal/observe"
	"github.com/hongjun500/duel-go/internal/protocol"
	"github.com/hongjun500/duel-go/pkg/logger"
)

// Router 客户端与核心之间的无状态转发面。
// 业务含义一概不解释，只按 correlationId/sessionId 寻址。
type Router struct {
	registry *Registry
	uplink   *CoreLink
}

func NewRouter(registry *Registry, uplink *CoreLink) *Router {
	return &Router{registry: registry, uplink: uplink}
}

// FromClient 上行：先登记路由再转发，保证响应回来时绑定已就位。
// 后端断开时就地回 BACKEND_UNAVAILABLE，并撤销刚登记的 correlation。
func (r *Router) FromClient(c *ClientConn, env *protocol.Envelope) {
	observe.IncRouted("inbound")
	if env.CorrelationID != "" {
		r.registry.BindCorrelation(env.CorrelationID, c)
	}
	if env.SessionID != "" {
		r.registry.BindSession(env.SessionID, c)
		c.SetSessionID(env.SessionID)
	}
	if err := r.uplink.Send(env); err != nil {
		if env.CorrelationID != "" {
			r.registry.TakeCorrelation(env.CorrelationID)
		}
		observe.IncDropped("backend_down")
		resp := protocol.NewLocalError(protocol.CodeBackendUnavailable, "backend unavailable, try again later")
		resp.CorrelationID = env.CorrelationID
		resp.SessionID = env.SessionID
		c.Enqueue(resp)
	}
}

// FromCore 下行：correlation 命中即投递并失效该绑定；
// 未命中再按 session 找；都找不到只能丢弃。
func (r *Router) FromCore(env *protocol.Envelope) {
	observe.IncRouted("outbound")
	if !env.Addressable() {
		// 核心发给网关本身的消息（如连接欢迎语），到此为止
		logger.L().Sugar().Debugw("core_local_message", "type", env.Type)
		return
	}
	if env.CorrelationID != "" {
		if c, ok := r.registry.TakeCorrelation(env.CorrelationID); ok {
			// 登录响应在这里顺手建立 session 绑定
			if env.SessionID != "" {
				r.registry.BindSession(env.SessionID, c)
				c.SetSessionID(env.SessionID)
			}
			c.Enqueue(env)
			return
		}
	}
	if env.SessionID != "" {
		if c, ok := r.registry.Session(env.SessionID); ok {
			c.Enqueue(env)
			return
		}
	}
	observe.IncDropped("no_target")
	logger.L().Sugar().Warnw("undeliverable_message", "type", env.Type,
		"correlationId", env.CorrelationID, "sessionId", env.SessionID)
}

// Disconnected 客户端断开：清路由绑定，并代发登出请求让核心
// 做认输、出队等离线清理。
func (r *Router) Disconnected(c *ClientConn) {
	r.registry.PruneConnection(c)
	sessionID := c.SessionID()
	if sessionID == "" {
		return
	}
	logout := &protocol.Envelope{
		Type:          protocol.AuthLogoutRequest,
		CorrelationID: uuid.New().String(),
		SessionID:     sessionID,
	}
	if err := r.uplink.Send(logout); err != nil {
		// 后端也不在了，会话由核心侧超时回收
		logger.L().Sugar().Warnw("synthetic_logout_failed", "session", sessionID, "err", err)
		return
	}
	logger.L().Sugar().Infow("synthetic_logout", "session", sessionID, "conn", c.id)
}
