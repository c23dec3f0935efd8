package core

import (
	"context"
	"errors"
	"time"

	"github.com/hongjun500/duel-go/internal/protocol"
	"github.com/hongjun500/duel-go/internal/store"
	"github.com/hongjun500/duel-go/pkg/logger"
)

// AuthService 注册、登录、登出。登出同时负责清理用户的队列、
// 挑战与进行中的对局。
type AuthService struct {
	identity   store.IdentityStore
	sessions   *SessionManager
	matches    *MatchEngine
	challenges *ChallengeEngine
	matchmaker *Matchmaker
}

func NewAuthService(identity store.IdentityStore, sessions *SessionManager, matches *MatchEngine, challenges *ChallengeEngine, matchmaker *Matchmaker) *AuthService {
	return &AuthService{
		identity:   identity,
		sessions:   sessions,
		matches:    matches,
		challenges: challenges,
		matchmaker: matchmaker,
	}
}

func (a *AuthService) opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// Register 创建新用户，不建立会话
func (a *AuthService) Register(username, password string) (*protocol.RegisterSuccessPayload, *DomainError) {
	if username == "" || password == "" {
		return nil, domainErr(protocol.CodeMissingField, "username and password are required")
	}
	ctx, cancel := a.opCtx()
	defer cancel()
	u, err := a.identity.Register(ctx, username, password)
	if err != nil {
		if errors.Is(err, store.ErrUserExists) {
			return nil, domainErr(protocol.CodeUserAlreadyExists, "username is taken: "+username)
		}
		logger.L().Sugar().Errorw("register_failed", "username", username, "err", err)
		return nil, domainErr(protocol.CodeInternalError, "registration failed")
	}
	logger.L().Sugar().Infow("user_registered", "user", u.ID, "username", username)
	return &protocol.RegisterSuccessPayload{UserID: u.ID}, nil
}

// Login 校验凭证并建立会话。同一用户重复登录顶掉旧会话。
func (a *AuthService) Login(link Sender, username, password string) (*protocol.LoginSuccessPayload, *DomainError) {
	if username == "" || password == "" {
		return nil, domainErr(protocol.CodeMissingField, "username and password are required")
	}
	ctx, cancel := a.opCtx()
	defer cancel()
	u, err := a.identity.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) || errors.Is(err, store.ErrUserNotFound) {
			return nil, domainErr(protocol.CodeInvalidCredentials, "invalid username or password")
		}
		logger.L().Sugar().Errorw("login_failed", "username", username, "err", err)
		return nil, domainErr(protocol.CodeInternalError, "login failed")
	}
	sc := a.sessions.Create(u.ID, u.Username, link)
	logger.L().Sugar().Infow("user_login", "user", u.ID, "session", sc.SessionID)
	return &protocol.LoginSuccessPayload{
		SessionID: sc.SessionID,
		UserID:    u.ID,
		Username:  u.Username,
		Score:     u.Score,
	}, nil
}

// Logout 结束会话。网关在客户端断开时也会代发登出请求，
// 所以这里就是离线清理的唯一入口。
func (a *AuthService) Logout(sc *SessionContext) {
	a.matchmaker.RemoveUser(sc.UserID)
	a.challenges.HandleDisconnect(sc)
	a.matches.ForfeitByUser(sc.UserID)
	a.sessions.Remove(sc.SessionID)
	logger.L().Sugar().Infow("user_logout", "user", sc.UserID, "session", sc.SessionID)
}
