package core

import (
	"context"
	"time"

	"github.com/hongjun500/duel-go/internal/protocol"
	"github.com/hongjun500/duel-go/internal/store"
	"github.com/hongjun500/duel-go/pkg/logger"
)

const (
	leaderboardDefaultLimit = 100
	leaderboardMaxLimit     = 500
)

// LeaderboardService 排行榜查询，越界的分页参数收敛到合法区间
type LeaderboardService struct {
	store store.LeaderboardStore
}

func NewLeaderboardService(s store.LeaderboardStore) *LeaderboardService {
	return &LeaderboardService{store: s}
}

func (l *LeaderboardService) Top(limit, offset int) (*protocol.LeaderboardResponsePayload, *DomainError) {
	if limit <= 0 {
		limit = leaderboardDefaultLimit
	}
	if limit > leaderboardMaxLimit {
		limit = leaderboardMaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	entries, total, err := l.store.TopN(ctx, limit, offset)
	if err != nil {
		logger.L().Sugar().Errorw("leaderboard_query_failed", "err", err)
		return nil, domainErr(protocol.CodeInternalError, "leaderboard unavailable")
	}
	resp := &protocol.LeaderboardResponsePayload{
		Entries: make([]protocol.LeaderboardEntryPayload, 0, len(entries)),
		Total:   total,
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, protocol.LeaderboardEntryPayload{
			Rank:     e.Rank,
			UserID:   e.UserID,
			Username: e.Username,
			Score:    e.Score,
		})
	}
	return resp, nil
}
