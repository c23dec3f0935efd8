package core

import (
	"sync"

	"github.com/hongjun500/duel-go/internal/protocol"
	"github.com/hongjun500/duel-go/pkg/logger"
)

// Matchmaker 先进先出排位队列。第二个人入队时立刻配对开局，
// 不做轮询，也不看分差。
type Matchmaker struct {
	mu      sync.Mutex
	queue   []string
	queued  map[string]struct{}
	matches *MatchEngine
}

func NewMatchmaker(matches *MatchEngine) *Matchmaker {
	return &Matchmaker{
		queued:  make(map[string]struct{}),
		matches: matches,
	}
}

// Request 入队。已在队列、已在对局中都拒绝。凑齐两人时同步开局。
func (mm *Matchmaker) Request(sc *SessionContext) (*protocol.MatchAckPayload, *DomainError) {
	if sc.MatchID() != "" {
		return nil, domainErr(protocol.CodePlayerBusy, "player is already in a game")
	}
	mm.mu.Lock()
	if _, ok := mm.queued[sc.UserID]; ok {
		mm.mu.Unlock()
		return nil, domainErr(protocol.CodeAlreadyInQueue, "player is already in the queue")
	}
	mm.queue = append(mm.queue, sc.UserID)
	mm.queued[sc.UserID] = struct{}{}
	var p1, p2 string
	if len(mm.queue) >= 2 {
		p1, p2 = mm.queue[0], mm.queue[1]
		mm.queue = mm.queue[2:]
		delete(mm.queued, p1)
		delete(mm.queued, p2)
	}
	mm.mu.Unlock()

	logger.L().Sugar().Infow("queue_join", "user", sc.UserID)
	if p1 != "" {
		mm.matches.CreateMatch(p1, p2)
	}
	return &protocol.MatchAckPayload{Status: "QUEUED"}, nil
}

// Cancel 出队。不在队列里返回失败。
func (mm *Matchmaker) Cancel(sc *SessionContext) (*protocol.MatchAckPayload, *DomainError) {
	if !mm.RemoveUser(sc.UserID) {
		return nil, domainErr(protocol.CodeNotInQueue, "player is not in the queue")
	}
	logger.L().Sugar().Infow("queue_leave", "user", sc.UserID)
	return &protocol.MatchAckPayload{Status: "CANCELLED"}, nil
}

// RemoveUser 把用户从队列中移除，登出与断连路径也走这里
func (mm *Matchmaker) RemoveUser(userID string) bool {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	if _, ok := mm.queued[userID]; !ok {
		return false
	}
	delete(mm.queued, userID)
	for i, uid := range mm.queue {
		if uid == userID {
			mm.queue = append(mm.queue[:i], mm.queue[i+1:]...)
			break
		}
	}
	return true
}

// QueueLen 当前排队人数
func (mm *Matchmaker) QueueLen() int {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	return len(mm.queue)
}
