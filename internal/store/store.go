package store

import (
	"context"
	"errors"
	"time"
)

// 核心进程消费的外部存储协作方。游戏逻辑只依赖这些接口，
// 具体实现（postgres/redis/内存）在进程装配时注入。

var (
	ErrInvalidCredentials = errors.New("store: invalid credentials")
	ErrUserExists         = errors.New("store: user already exists")
	ErrUserNotFound       = errors.New("store: user not found")
)

// User 身份存储返回的用户视图
type User struct {
	ID       string
	Username string
	Score    int
}

// LeaderboardEntry 排行榜单行
type LeaderboardEntry struct {
	Rank     int
	UserID   string
	Username string
	Score    int
}

// MatchRecord 终局追加记录
type MatchRecord struct {
	MatchID   string    `json:"matchId"`
	Player1ID string    `json:"player1Id"`
	Player2ID string    `json:"player2Id"`
	Result    string    `json:"result"`
	WinnerID  string    `json:"winnerId,omitempty"`
	Forfeited bool      `json:"forfeited,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// IdentityStore 用户凭证存储
type IdentityStore interface {
	Register(ctx context.Context, username, password string) (*User, error)
	Authenticate(ctx context.Context, username, password string) (*User, error)
	AddScore(ctx context.Context, userID string, delta int) error
}

// LeaderboardStore 排行榜查询
type LeaderboardStore interface {
	TopN(ctx context.Context, limit, offset int) ([]LeaderboardEntry, int, error)
}

// MatchRecorder 终局结果的追加写。写失败只记日志，绝不阻塞对局收尾。
type MatchRecorder interface {
	Record(ctx context.Context, rec *MatchRecord) error
}
