package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hongjun500/duel-go/internal/observe"
	"github.com/hongjun500/duel-go/internal/protocol"
)

// Sender 能把信封写回某条网关链路的抽象，Link 实现它
type Sender interface {
	Send(*protocol.Envelope) error
}

// SessionContext 一个已登录用户的会话
type SessionContext struct {
	SessionID string
	UserID    string
	Username  string

	mu           sync.Mutex
	matchID      string
	challengeID  string
	lastActivity time.Time
	sender       Sender
}

func (sc *SessionContext) MatchID() string {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.matchID
}

func (sc *SessionContext) SetMatchID(id string) {
	sc.mu.Lock()
	sc.matchID = id
	sc.mu.Unlock()
}

func (sc *SessionContext) ChallengeID() string {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.challengeID
}

// SetChallengeID 设置活动挑战；expect 非空时只在当前值匹配才清除
func (sc *SessionContext) SetChallengeID(id, expect string) {
	sc.mu.Lock()
	if expect == "" || sc.challengeID == expect {
		sc.challengeID = id
	}
	sc.mu.Unlock()
}

func (sc *SessionContext) Touch() {
	sc.mu.Lock()
	sc.lastActivity = time.Now()
	sc.mu.Unlock()
}

// SessionManager 会话管理器，sessionId 与 userId 双向索引。
// 同一用户最多一个会话，新登录顶掉旧会话。
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*SessionContext
	byUser   map[string]*SessionContext
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*SessionContext),
		byUser:   make(map[string]*SessionContext),
	}
}

// Create 为用户创建新会话，替换掉该用户已有的会话
func (sm *SessionManager) Create(userID, username string, sender Sender) *SessionContext {
	sc := &SessionContext{
		SessionID:    uuid.New().String(),
		UserID:       userID,
		Username:     username,
		lastActivity: time.Now(),
		sender:       sender,
	}
	sm.mu.Lock()
	if old, ok := sm.byUser[userID]; ok {
		delete(sm.sessions, old.SessionID)
	} else {
		observe.AddSessions(1)
	}
	sm.sessions[sc.SessionID] = sc
	sm.byUser[userID] = sc
	sm.mu.Unlock()
	return sc
}

func (sm *SessionManager) Get(sessionID string) (*SessionContext, bool) {
	if sessionID == "" {
		return nil, false
	}
	sm.mu.RLock()
	sc, ok := sm.sessions[sessionID]
	sm.mu.RUnlock()
	if ok {
		sc.Touch()
	}
	return sc, ok
}

func (sm *SessionManager) GetByUser(userID string) (*SessionContext, bool) {
	sm.mu.RLock()
	sc, ok := sm.byUser[userID]
	sm.mu.RUnlock()
	return sc, ok
}

func (sm *SessionManager) Remove(sessionID string) {
	sm.mu.Lock()
	if sc, ok := sm.sessions[sessionID]; ok {
		delete(sm.sessions, sessionID)
		if cur, ok := sm.byUser[sc.UserID]; ok && cur.SessionID == sessionID {
			delete(sm.byUser, sc.UserID)
		}
		observe.AddSessions(-1)
	}
	sm.mu.Unlock()
}

func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// Push 按 userId 推送一条消息，目标不在线时返回 false。
// 写失败按掉线对待：记录方丢弃，客户端重连后自行恢复。
func (sm *SessionManager) Push(userID string, env *protocol.Envelope) bool {
	sc, ok := sm.GetByUser(userID)
	if !ok {
		observe.IncDropped("no_target")
		return false
	}
	env.SessionID = sc.SessionID
	if err := sc.sender.Send(env); err != nil {
		observe.IncDropped("conn_closed")
		return false
	}
	return true
}
