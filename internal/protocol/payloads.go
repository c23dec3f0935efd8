package protocol

import "github.com/hongjun500/duel-go/internal/game"

// ---- AUTH ----

// RegisterRequestPayload 注册请求负载
type RegisterRequestPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterSuccessPayload 注册成功负载
type RegisterSuccessPayload struct {
	UserID string `json:"userId"`
}

// LoginRequestPayload 登录请求负载
type LoginRequestPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginSuccessPayload 登录成功负载，sessionId 同时会写进信封
type LoginSuccessPayload struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Score     int    `json:"score"`
}

// ---- LOBBY ----

// MatchAckPayload 排队确认
type MatchAckPayload struct {
	Status string `json:"status"` // QUEUED | CANCELLED
}

// LeaderboardRequestPayload 排行榜查询
type LeaderboardRequestPayload struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// LeaderboardEntryPayload 排行榜单行
type LeaderboardEntryPayload struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// LeaderboardResponsePayload 排行榜响应
type LeaderboardResponsePayload struct {
	Entries []LeaderboardEntryPayload `json:"entries"`
	Total   int                       `json:"total"`
}

// ---- GAME：比赛 ----

// OpponentInfo 对手概要
type OpponentInfo struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// MatchFoundPayload 配对成功推送
type MatchFoundPayload struct {
	MatchID  string       `json:"matchId"`
	Opponent OpponentInfo `json:"opponent"`
}

// GameStartPayload 开局推送，共享牌堆的初始可选牌
type GameStartPayload struct {
	MatchID        string       `json:"matchId"`
	TotalRounds    int          `json:"totalRounds"`
	RoundTimeoutMs int64        `json:"roundTimeoutMs"`
	AvailableCards []game.Card  `json:"availableCards"`
	Opponent       OpponentInfo `json:"opponent"`
	YourPosition   int          `json:"yourPosition"` // 1 或 2
}

// RoundStartPayload 回合开始推送，带绝对截止时间
type RoundStartPayload struct {
	MatchID        string      `json:"matchId"`
	RoundNumber    int         `json:"roundNumber"`
	Deadline       int64       `json:"deadline"` // unix ms
	DurationMs     int64       `json:"durationMs"`
	AvailableCards []game.Card `json:"availableCards"`
}

// CardPlayRequestPayload 出牌请求
type CardPlayRequestPayload struct {
	MatchID string `json:"matchId"`
	CardID  int    `json:"cardId"`
}

// CardPlaySuccessPayload 出牌确认（仅发给出牌方）
type CardPlaySuccessPayload struct {
	MatchID        string      `json:"matchId"`
	CardID         int         `json:"cardId"`
	AvailableCards []game.Card `json:"availableCards"`
}

// OpponentReadyPayload 对手已出牌推送，不泄露具体牌面
type OpponentReadyPayload struct {
	MatchID        string      `json:"matchId"`
	Status         string      `json:"status"` // READY
	AvailableCards []game.Card `json:"availableCards"`
}

// RoundRevealPayload 回合揭示推送，按接收方视角填充
type RoundRevealPayload struct {
	MatchID            string    `json:"matchId"`
	RoundNumber        int       `json:"roundNumber"`
	YourCard           game.Card `json:"yourCard"`
	OpponentCard       game.Card `json:"opponentCard"`
	YourAutoPicked     bool      `json:"yourAutoPicked"`
	OpponentAutoPicked bool      `json:"opponentAutoPicked"`
	PointsEarned       int       `json:"pointsEarned"`
	YourScore          int       `json:"yourScore"`
	OpponentScore      int       `json:"opponentScore"`
	Result             string    `json:"result"` // WIN | LOSS | DRAW
}

// GameEndPayload 终局推送，双方收到相同内容
type GameEndPayload struct {
	MatchID      string `json:"matchId"`
	Player1ID    string `json:"player1Id"`
	Player2ID    string `json:"player2Id"`
	Player1Score int    `json:"player1Score"`
	Player2Score int    `json:"player2Score"`
	Result       string `json:"result"` // A_WINS | B_WINS | DRAW
	WinnerID     string `json:"winnerId,omitempty"`
	Forfeited    bool   `json:"forfeited,omitempty"`
}

// OpponentLeftPayload 对手离开推送
type OpponentLeftPayload struct {
	MatchID string `json:"matchId"`
	UserID  string `json:"userId"`
}

// ForfeitRequestPayload 认输请求
type ForfeitRequestPayload struct {
	MatchID string `json:"matchId"`
}

// ---- GAME：挑战 ----

// ChallengeRequestPayload 发起挑战
type ChallengeRequestPayload struct {
	TargetUserID string `json:"targetUserId"`
}

// ChallengeSuccessPayload 挑战已创建（发给发起方）
type ChallengeSuccessPayload struct {
	ChallengeID    string `json:"challengeId"`
	ExpiresAt      int64  `json:"expiresAt"` // unix ms
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

// ChallengeOfferPayload 挑战邀约推送（发给目标方）
type ChallengeOfferPayload struct {
	ChallengeID    string `json:"challengeId"`
	SenderUserID   string `json:"senderUserId"`
	SenderUsername string `json:"senderUsername"`
	ExpiresAt      int64  `json:"expiresAt"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

// ChallengeResponsePayload 目标方应答
type ChallengeResponsePayload struct {
	ChallengeID string `json:"challengeId"`
	Accept      bool   `json:"accept"`
}

// ChallengeCancelPayload 发起方撤回
type ChallengeCancelPayload struct {
	ChallengeID string `json:"challengeId"`
}

// ChallengeCancelledPayload 挑战终结推送
type ChallengeCancelledPayload struct {
	ChallengeID string `json:"challengeId"`
	Reason      string `json:"reason"` // DECLINED | TIMEOUT | CANCELLED | SENDER_DISCONNECTED | TARGET_DISCONNECTED
}

// ---- SYSTEM ----

// WelcomePayload 连接建立推送
type WelcomePayload struct {
	Message    string `json:"message"`
	ServerTime int64  `json:"serverTime"`
}

// PingPayload 心跳
type PingPayload struct {
	Timestamp int64 `json:"timestamp"`
}

// PongPayload 心跳应答
type PongPayload struct {
	Timestamp int64 `json:"timestamp"`
}
