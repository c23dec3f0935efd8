package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hongjun500/duel-go/internal/observe"
	"github.com/hongjun500/duel-go/internal/protocol"
	"github.com/hongjun500/duel-go/pkg/logger"
)

// 挑战终结原因
const (
	ChallengeDeclined           = "DECLINED"
	ChallengeTimeout            = "TIMEOUT"
	ChallengeCancelled          = "CANCELLED"
	ChallengeSenderDisconnected = "SENDER_DISCONNECTED"
	ChallengeTargetDisconnected = "TARGET_DISCONNECTED"
)

// challengeState 一次挑战。done 只会从 false 翻到 true 一次，
// 超时回调和应答竞争时先到先得。
type challengeState struct {
	mu        sync.Mutex
	id        string
	senderID  string
	targetID  string
	expiresAt time.Time
	timer     *time.Timer
	done      bool
}

// terminate 尝试终结挑战，已终结返回 false
func (c *challengeState) terminate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return false
	}
	c.done = true
	if c.timer != nil {
		c.timer.Stop()
	}
	return true
}

// ChallengeEngine 定向挑战引擎：PENDING → ACCEPTED | DECLINED | TIMEOUT | CANCELLED
type ChallengeEngine struct {
	timeout  time.Duration
	sessions *SessionManager
	matches  *MatchEngine

	mu         sync.Mutex
	challenges map[string]*challengeState
}

func NewChallengeEngine(timeout time.Duration, sessions *SessionManager, matches *MatchEngine) *ChallengeEngine {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ChallengeEngine{
		timeout:    timeout,
		sessions:   sessions,
		matches:    matches,
		challenges: make(map[string]*challengeState),
	}
}

func (e *ChallengeEngine) get(challengeID string) *challengeState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.challenges[challengeID]
}

// Create 发起挑战。双方都必须在线、空闲且没有别的活动挑战。
// 成功后给目标方推 CHALLENGE_OFFER，并起超时定时器。
func (e *ChallengeEngine) Create(sender *SessionContext, targetUserID string) (*protocol.ChallengeSuccessPayload, *DomainError) {
	if targetUserID == "" {
		return nil, domainErr(protocol.CodeMissingField, "targetUserId is required")
	}
	if targetUserID == sender.UserID {
		return nil, domainErr(protocol.CodeChallengeSelf, "cannot challenge yourself")
	}
	target, online := e.sessions.GetByUser(targetUserID)
	if !online {
		return nil, domainErr(protocol.CodePlayerOffline, "target player is offline")
	}
	if sender.MatchID() != "" || target.MatchID() != "" {
		return nil, domainErr(protocol.CodePlayerBusy, "player is already in a game")
	}
	if sender.ChallengeID() != "" || target.ChallengeID() != "" {
		return nil, domainErr(protocol.CodeChallengeActive, "a challenge is already active")
	}

	c := &challengeState{
		id:        "c-" + uuid.New().String(),
		senderID:  sender.UserID,
		targetID:  targetUserID,
		expiresAt: time.Now().Add(e.timeout),
	}
	e.mu.Lock()
	e.challenges[c.id] = c
	e.mu.Unlock()
	sender.SetChallengeID(c.id, "")
	target.SetChallengeID(c.id, "")
	c.mu.Lock()
	c.timer = time.AfterFunc(e.timeout, func() { e.expire(c.id) })
	c.mu.Unlock()

	offer, _ := protocol.NewPush(protocol.GameChallengeOffer, "", &protocol.ChallengeOfferPayload{
		ChallengeID:    c.id,
		SenderUserID:   sender.UserID,
		SenderUsername: sender.Username,
		ExpiresAt:      c.expiresAt.UnixMilli(),
		TimeoutSeconds: int(e.timeout.Seconds()),
	})
	e.sessions.Push(targetUserID, offer)
	logger.L().Sugar().Infow("challenge_created", "challenge", c.id, "sender", sender.UserID, "target", targetUserID)

	return &protocol.ChallengeSuccessPayload{
		ChallengeID:    c.id,
		ExpiresAt:      c.expiresAt.UnixMilli(),
		TimeoutSeconds: int(e.timeout.Seconds()),
	}, nil
}

// Respond 目标方应答。接受则直接开局，拒绝则通知发起方。
// 已超时或已撤回的挑战返回失败。
func (e *ChallengeEngine) Respond(responder *SessionContext, challengeID string, accept bool) *DomainError {
	c := e.get(challengeID)
	if c == nil {
		return domainErr(protocol.CodeChallengeNotFound, "challenge not found: "+challengeID)
	}
	if c.targetID != responder.UserID {
		return domainErr(protocol.CodeChallengeInvalid, "challenge is not addressed to this player")
	}
	if !c.terminate() {
		return domainErr(protocol.CodeChallengeInvalid, "challenge is no longer valid")
	}
	e.remove(c)

	if accept {
		observe.IncChallenge("accepted")
		logger.L().Sugar().Infow("challenge_accepted", "challenge", c.id)
		e.matches.CreateMatch(c.senderID, c.targetID)
		return nil
	}
	observe.IncChallenge("declined")
	logger.L().Sugar().Infow("challenge_declined", "challenge", c.id)
	e.notifyCancelled(c.senderID, c.id, ChallengeDeclined)
	return nil
}

// Cancel 发起方撤回仍在等待的挑战
func (e *ChallengeEngine) Cancel(sender *SessionContext, challengeID string) *DomainError {
	c := e.get(challengeID)
	if c == nil {
		return domainErr(protocol.CodeChallengeNotFound, "challenge not found: "+challengeID)
	}
	if c.senderID != sender.UserID {
		return domainErr(protocol.CodeChallengeInvalid, "only the sender can cancel")
	}
	if !c.terminate() {
		return domainErr(protocol.CodeChallengeInvalid, "challenge is no longer valid")
	}
	e.remove(c)
	observe.IncChallenge("cancelled")
	logger.L().Sugar().Infow("challenge_cancelled", "challenge", c.id)
	e.notifyCancelled(c.targetID, c.id, ChallengeCancelled)
	return nil
}

// expire 超时回调。晚到的应答由 terminate 挡掉。
func (e *ChallengeEngine) expire(challengeID string) {
	c := e.get(challengeID)
	if c == nil || !c.terminate() {
		return
	}
	e.remove(c)
	observe.IncChallenge("timeout")
	logger.L().Sugar().Infow("challenge_timeout", "challenge", c.id)
	e.notifyCancelled(c.senderID, c.id, ChallengeTimeout)
	e.notifyCancelled(c.targetID, c.id, ChallengeTimeout)
}

// HandleDisconnect 某一方离线时终结其活动挑战并通知另一方
func (e *ChallengeEngine) HandleDisconnect(sc *SessionContext) {
	challengeID := sc.ChallengeID()
	if challengeID == "" {
		return
	}
	c := e.get(challengeID)
	if c == nil || !c.terminate() {
		return
	}
	e.remove(c)
	observe.IncChallenge("disconnected")
	if sc.UserID == c.senderID {
		e.notifyCancelled(c.targetID, c.id, ChallengeSenderDisconnected)
	} else {
		e.notifyCancelled(c.senderID, c.id, ChallengeTargetDisconnected)
	}
	logger.L().Sugar().Infow("challenge_disconnect", "challenge", c.id, "user", sc.UserID)
}

// Sweep 清掉已过期却仍挂在表里的挑战，作为定时器失效时的兜底
func (e *ChallengeEngine) Sweep() {
	now := time.Now()
	e.mu.Lock()
	var stale []string
	for id, c := range e.challenges {
		c.mu.Lock()
		expired := now.After(c.expiresAt)
		c.mu.Unlock()
		if expired {
			stale = append(stale, id)
		}
	}
	e.mu.Unlock()
	for _, id := range stale {
		e.expire(id)
	}
	if len(stale) > 0 {
		logger.L().Sugar().Infow("challenge_sweep", "expired", len(stale))
	}
}

func (e *ChallengeEngine) remove(c *challengeState) {
	e.mu.Lock()
	delete(e.challenges, c.id)
	e.mu.Unlock()
	for _, uid := range []string{c.senderID, c.targetID} {
		if sc, ok := e.sessions.GetByUser(uid); ok {
			sc.SetChallengeID("", c.id)
		}
	}
}

func (e *ChallengeEngine) notifyCancelled(userID, challengeID, reason string) {
	env, _ := protocol.NewPush(protocol.GameChallengeCancelled, "", &protocol.ChallengeCancelledPayload{
		ChallengeID: challengeID,
		Reason:      reason,
	})
	e.sessions.Push(userID, env)
}
