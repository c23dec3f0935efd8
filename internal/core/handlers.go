package core

import (
	"time"

	"github.com/hongjun500/duel-go/internal/protocol"
	"github.com/hongjun500/duel-go/pkg/logger"
)

// Handlers 把各引擎装配到分发器上。每个请求类型一个处理器，
// 处理器只做解码、鉴权和转调，业务语义都在引擎里。
type Handlers struct {
	auth        *AuthService
	sessions    *SessionManager
	matchmaker  *Matchmaker
	matches     *MatchEngine
	challenges  *ChallengeEngine
	leaderboard *LeaderboardService
}

func NewHandlers(auth *AuthService, sessions *SessionManager, matchmaker *Matchmaker, matches *MatchEngine, challenges *ChallengeEngine, leaderboard *LeaderboardService) *Handlers {
	return &Handlers{
		auth:        auth,
		sessions:    sessions,
		matchmaker:  matchmaker,
		matches:     matches,
		challenges:  challenges,
		leaderboard: leaderboard,
	}
}

// RegisterAll 注册全部请求类型
func (h *Handlers) RegisterAll(d *Dispatcher) {
	d.Register(protocol.AuthRegisterRequest, h.handleRegister)
	d.Register(protocol.AuthLoginRequest, h.handleLogin)
	d.Register(protocol.AuthLogoutRequest, h.authed(h.handleLogout))
	d.Register(protocol.LobbyMatchRequest, h.authed(h.handleMatchRequest))
	d.Register(protocol.LobbyMatchCancel, h.authed(h.handleMatchCancel))
	d.Register(protocol.LobbyLeaderboardRequest, h.authed(h.handleLeaderboard))
	d.Register(protocol.GameCardPlayRequest, h.authed(h.handleCardPlay))
	d.Register(protocol.GameForfeitRequest, h.authed(h.handleForfeit))
	d.Register(protocol.GameChallengeRequest, h.authed(h.handleChallenge))
	d.Register(protocol.GameChallengeResponse, h.authed(h.handleChallengeResponse))
	d.Register(protocol.GameChallengeCancel, h.authed(h.handleChallengeCancel))
	d.Register(protocol.SystemPing, h.handlePing)
}

// authedHandler 已通过会话校验的处理器
type authedHandler func(sc *SessionContext, link *Link, env *protocol.Envelope) []*protocol.Envelope

// authed 会话门卫：sessionId 缺失或不可用时直接回失败
func (h *Handlers) authed(next authedHandler) HandlerFunc {
	return func(link *Link, env *protocol.Envelope) []*protocol.Envelope {
		sc, ok := h.sessions.Get(env.SessionID)
		if !ok {
			return fail(env, domainErr(protocol.CodeNotAuthenticated, "login required"))
		}
		sc.mu.Lock()
		sc.sender = link
		sc.mu.Unlock()
		return next(sc, link, env)
	}
}

func respond(req *protocol.Envelope, msgType string, payload any) []*protocol.Envelope {
	e, err := protocol.NewResponse(req, msgType, payload)
	if err != nil {
		logger.L().Sugar().Errorw("response_encode_failed", "type", msgType, "err", err)
		return fail(req, domainErr(protocol.CodeInternalError, "response encoding failed"))
	}
	return []*protocol.Envelope{e}
}

func fail(req *protocol.Envelope, derr *DomainError) []*protocol.Envelope {
	return []*protocol.Envelope{protocol.NewFailure(req, derr.Code, derr.Message)}
}

func (h *Handlers) handleRegister(link *Link, env *protocol.Envelope) []*protocol.Envelope {
	var p protocol.RegisterRequestPayload
	if err := env.DecodePayload(&p); err != nil {
		return fail(env, domainErr(protocol.CodeMissingField, "username and password are required"))
	}
	resp, derr := h.auth.Register(p.Username, p.Password)
	if derr != nil {
		return fail(env, derr)
	}
	return respond(env, protocol.AuthRegisterSuccess, resp)
}

func (h *Handlers) handleLogin(link *Link, env *protocol.Envelope) []*protocol.Envelope {
	var p protocol.LoginRequestPayload
	if err := env.DecodePayload(&p); err != nil {
		return fail(env, domainErr(protocol.CodeMissingField, "username and password are required"))
	}
	resp, derr := h.auth.Login(link, p.Username, p.Password)
	if derr != nil {
		return fail(env, derr)
	}
	// 登录响应的信封直接携带新会话 id
	out, err := protocol.NewResponse(env, protocol.AuthLoginSuccess, resp)
	if err != nil {
		return fail(env, domainErr(protocol.CodeInternalError, "response encoding failed"))
	}
	out.SessionID = resp.SessionID
	return []*protocol.Envelope{out}
}

func (h *Handlers) handleLogout(sc *SessionContext, link *Link, env *protocol.Envelope) []*protocol.Envelope {
	h.auth.Logout(sc)
	return respond(env, protocol.AuthLogoutSuccess, nil)
}

func (h *Handlers) handleMatchRequest(sc *SessionContext, link *Link, env *protocol.Envelope) []*protocol.Envelope {
	ack, derr := h.matchmaker.Request(sc)
	if derr != nil {
		return fail(env, derr)
	}
	return respond(env, protocol.LobbyMatchAck, ack)
}

func (h *Handlers) handleMatchCancel(sc *SessionContext, link *Link, env *protocol.Envelope) []*protocol.Envelope {
	ack, derr := h.matchmaker.Cancel(sc)
	if derr != nil {
		return fail(env, derr)
	}
	return respond(env, protocol.LobbyMatchCancelAck, ack)
}

func (h *Handlers) handleLeaderboard(sc *SessionContext, link *Link, env *protocol.Envelope) []*protocol.Envelope {
	var p protocol.LeaderboardRequestPayload
	_ = env.DecodePayload(&p) // 负载可省略，用默认分页
	resp, derr := h.leaderboard.Top(p.Limit, p.Offset)
	if derr != nil {
		return fail(env, derr)
	}
	return respond(env, protocol.LobbyLeaderboardResponse, resp)
}

func (h *Handlers) handleCardPlay(sc *SessionContext, link *Link, env *protocol.Envelope) []*protocol.Envelope {
	var p protocol.CardPlayRequestPayload
	if err := env.DecodePayload(&p); err != nil {
		return fail(env, domainErr(protocol.CodeMissingField, "matchId and cardId are required"))
	}
	if p.MatchID == "" {
		p.MatchID = sc.MatchID()
	}
	resp, derr := h.matches.PlayCard(sc.UserID, p.MatchID, p.CardID)
	if derr != nil {
		return fail(env, derr)
	}
	return respond(env, protocol.GameCardPlaySuccess, resp)
}

func (h *Handlers) handleForfeit(sc *SessionContext, link *Link, env *protocol.Envelope) []*protocol.Envelope {
	var p protocol.ForfeitRequestPayload
	_ = env.DecodePayload(&p)
	if p.MatchID == "" {
		p.MatchID = sc.MatchID()
	}
	if derr := h.matches.Forfeit(p.MatchID, sc.UserID); derr != nil {
		return fail(env, derr)
	}
	return respond(env, protocol.GameForfeitSuccess, &protocol.ForfeitRequestPayload{MatchID: p.MatchID})
}

func (h *Handlers) handleChallenge(sc *SessionContext, link *Link, env *protocol.Envelope) []*protocol.Envelope {
	var p protocol.ChallengeRequestPayload
	if err := env.DecodePayload(&p); err != nil {
		return fail(env, domainErr(protocol.CodeMissingField, "targetUserId is required"))
	}
	resp, derr := h.challenges.Create(sc, p.TargetUserID)
	if derr != nil {
		return fail(env, derr)
	}
	return respond(env, protocol.GameChallengeSuccess, resp)
}

func (h *Handlers) handleChallengeResponse(sc *SessionContext, link *Link, env *protocol.Envelope) []*protocol.Envelope {
	var p protocol.ChallengeResponsePayload
	if err := env.DecodePayload(&p); err != nil {
		return fail(env, domainErr(protocol.CodeMissingField, "challengeId and accept are required"))
	}
	if derr := h.challenges.Respond(sc, p.ChallengeID, p.Accept); derr != nil {
		return fail(env, derr)
	}
	return respond(env, protocol.GameChallengeResponseSuccess, &p)
}

func (h *Handlers) handleChallengeCancel(sc *SessionContext, link *Link, env *protocol.Envelope) []*protocol.Envelope {
	var p protocol.ChallengeCancelPayload
	if err := env.DecodePayload(&p); err != nil {
		return fail(env, domainErr(protocol.CodeMissingField, "challengeId is required"))
	}
	if derr := h.challenges.Cancel(sc, p.ChallengeID); derr != nil {
		return fail(env, derr)
	}
	return respond(env, protocol.GameChallengeCancelSuccess, &protocol.ChallengeCancelPayload{ChallengeID: p.ChallengeID})
}

func (h *Handlers) handlePing(link *Link, env *protocol.Envelope) []*protocol.Envelope {
	var p protocol.PingPayload
	_ = env.DecodePayload(&p)
	ts := p.Timestamp
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	return respond(env, protocol.SystemPong, &protocol.PongPayload{Timestamp: ts})
}
