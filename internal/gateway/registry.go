package gateway

import "sync"

// Registry 出站寻址的双索引路由表。
//
// correlation 索引服务请求/响应配对：投递即失效，保证单次投递；
// session 索引服务推送：长期有效，重复绑定后写覆盖，
// 客户端重连后用旧 sessionId 发一条消息即可把推送引流到新连接。
type Registry struct {
	correlations sync.Map // correlationId → *ClientConn
	sessions     sync.Map // sessionId → *ClientConn
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) BindCorrelation(correlationID string, c *ClientConn) {
	r.correlations.Store(correlationID, c)
}

// TakeCorrelation 取出并移除 correlation 绑定
func (r *Registry) TakeCorrelation(correlationID string) (*ClientConn, bool) {
	v, ok := r.correlations.LoadAndDelete(correlationID)
	if !ok {
		return nil, false
	}
	return v.(*ClientConn), true
}

func (r *Registry) BindSession(sessionID string, c *ClientConn) {
	r.sessions.Store(sessionID, c)
}

func (r *Registry) Session(sessionID string) (*ClientConn, bool) {
	v, ok := r.sessions.Load(sessionID)
	if !ok {
		return nil, false
	}
	return v.(*ClientConn), true
}

func (r *Registry) UnbindSession(sessionID string) {
	r.sessions.Delete(sessionID)
}

// PruneConnection 清掉指向该连接的全部绑定。
// session 绑定只在仍指向该连接时移除，重连后的新绑定不受影响。
func (r *Registry) PruneConnection(c *ClientConn) {
	r.correlations.Range(func(k, v any) bool {
		if v == c {
			r.correlations.Delete(k)
		}
		return true
	})
	r.sessions.Range(func(k, v any) bool {
		if v == c {
			r.sessions.Delete(k)
		}
		return true
	})
}

// CorrelationCount 当前挂起的请求数
func (r *Registry) CorrelationCount() int {
	n := 0
	r.correlations.Range(func(_, _ any) bool { n++; return true })
	return n
}

// SessionCount 当前绑定的会话数
func (r *Registry) SessionCount() int {
	n := 0
	r.sessions.Range(func(_, _ any) bool { n++; return true })
	return n
}
