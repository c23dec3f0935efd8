package core

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hongjun500/duel-go/internal/config"
	"github.com/hongjun500/duel-go/internal/game"
	"github.com/hongjun500/duel-go/internal/observe"
	"github.com/hongjun500/duel-go/internal/protocol"
	"github.com/hongjun500/duel-go/internal/store"
	"github.com/hongjun500/duel-go/pkg/logger"
)

// playerSlot 对局里一方的状态
type playerSlot struct {
	userID     string
	score      int
	played     *game.Card
	autoPicked bool
}

// matchState 一局比赛的权威状态，只在持有 mu 时读写
type matchState struct {
	mu       sync.Mutex
	id       string
	players  [2]*playerSlot
	round    int
	resolved int // 已揭示的最高回合号
	deck     []game.Card
	complete bool
	timer    *time.Timer
}

func (m *matchState) slotIndex(userID string) int {
	for i, p := range m.players {
		if p.userID == userID {
			return i
		}
	}
	return -1
}

// MatchConfig 对局引擎配置
type MatchConfig struct {
	RoundTimeout   time.Duration
	AutoPickPolicy string
}

// MatchEngine 比赛生命周期引擎：
// MATCHING → FOUND → STARTED → ROUND_IN_PROGRESS → ROUND_REVEALED (loop) → COMPLETED | FORFEITED
type MatchEngine struct {
	cfg      MatchConfig
	sessions *SessionManager
	recorder store.MatchRecorder
	identity store.IdentityStore

	mu      sync.Mutex
	matches map[string]*matchState

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewMatchEngine(cfg MatchConfig, sessions *SessionManager, recorder store.MatchRecorder, identity store.IdentityStore) *MatchEngine {
	if cfg.RoundTimeout <= 0 {
		cfg.RoundTimeout = 10 * time.Second
	}
	if cfg.AutoPickPolicy == "" {
		cfg.AutoPickPolicy = config.AutoPickLowest
	}
	return &MatchEngine{
		cfg:      cfg,
		sessions: sessions,
		recorder: recorder,
		identity: identity,
		matches:  make(map[string]*matchState),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (e *MatchEngine) get(matchID string) *matchState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.matches[matchID]
}

// CreateMatch 为两名玩家开一局：洗共享牌堆，推送 MATCH_FOUND 和 GAME.START，
// 然后进入第一回合。排位队列和挑战接受都走这里。
func (e *MatchEngine) CreateMatch(player1ID, player2ID string) string {
	matchID := "m-" + uuid.New().String()
	deck := game.NewDeck()
	e.rngMu.Lock()
	game.Shuffle(deck, e.rng)
	e.rngMu.Unlock()

	m := &matchState{
		id:   matchID,
		deck: deck,
		players: [2]*playerSlot{
			{userID: player1ID},
			{userID: player2ID},
		},
	}
	e.mu.Lock()
	e.matches[matchID] = m
	e.mu.Unlock()

	for _, uid := range []string{player1ID, player2ID} {
		if sc, ok := e.sessions.GetByUser(uid); ok {
			sc.SetMatchID(matchID)
		}
	}

	e.notifyMatchFound(m, player1ID, player2ID)
	e.notifyGameStart(m, player1ID, player2ID)
	observe.IncMatchStarted()
	logger.L().Sugar().Infow("match_created", "match", matchID, "player1", player1ID, "player2", player2ID)

	e.startRound(m)
	return matchID
}

func (e *MatchEngine) usernameOf(userID string) string {
	if sc, ok := e.sessions.GetByUser(userID); ok {
		return sc.Username
	}
	return "Unknown"
}

func (e *MatchEngine) notifyMatchFound(m *matchState, p1, p2 string) {
	for i, uid := range []string{p1, p2} {
		opp := p2
		if i == 1 {
			opp = p1
		}
		env, _ := protocol.NewPush(protocol.GameMatchFound, "", &protocol.MatchFoundPayload{
			MatchID:  m.id,
			Opponent: protocol.OpponentInfo{UserID: opp, Username: e.usernameOf(opp)},
		})
		e.sessions.Push(uid, env)
	}
}

func (e *MatchEngine) notifyGameStart(m *matchState, p1, p2 string) {
	m.mu.Lock()
	cards := append([]game.Card(nil), m.deck...)
	m.mu.Unlock()
	for i, uid := range []string{p1, p2} {
		opp := p2
		if i == 1 {
			opp = p1
		}
		env, _ := protocol.NewPush(protocol.GameStart, "", &protocol.GameStartPayload{
			MatchID:        m.id,
			TotalRounds:    game.TotalRounds,
			RoundTimeoutMs: e.cfg.RoundTimeout.Milliseconds(),
			AvailableCards: cards,
			Opponent:       protocol.OpponentInfo{UserID: opp, Username: e.usernameOf(opp)},
			YourPosition:   i + 1,
		})
		e.sessions.Push(uid, env)
	}
}

func (e *MatchEngine) startRound(m *matchState) {
	m.mu.Lock()
	if m.complete {
		m.mu.Unlock()
		return
	}
	m.round++
	for _, p := range m.players {
		p.played = nil
		p.autoPicked = false
	}
	round := m.round
	cards := append([]game.Card(nil), m.deck...)
	deadline := time.Now().Add(e.cfg.RoundTimeout)
	m.timer = time.AfterFunc(e.cfg.RoundTimeout, func() { e.roundDeadline(m, round) })
	p1, p2 := m.players[0].userID, m.players[1].userID
	m.mu.Unlock()

	payload := &protocol.RoundStartPayload{
		MatchID:        m.id,
		RoundNumber:    round,
		Deadline:       deadline.UnixMilli(),
		DurationMs:     e.cfg.RoundTimeout.Milliseconds(),
		AvailableCards: cards,
	}
	for _, uid := range []string{p1, p2} {
		env, _ := protocol.NewPush(protocol.GameRoundStart, "", payload)
		e.sessions.Push(uid, env)
	}
}

// PlayCard 处理一次出牌。每人每回合只接受第一次有效选择；
// 重复、越界、已被占用的选择一律拒绝且不改变回合状态。
func (e *MatchEngine) PlayCard(userID, matchID string, cardID int) (*protocol.CardPlaySuccessPayload, *DomainError) {
	m := e.get(matchID)
	if m == nil {
		return nil, domainErr(protocol.CodeGameNotFound, "game not found or ended: "+matchID)
	}
	m.mu.Lock()
	if m.complete {
		m.mu.Unlock()
		return nil, domainErr(protocol.CodeGameNotFound, "game already ended")
	}
	idx := m.slotIndex(userID)
	if idx < 0 {
		m.mu.Unlock()
		return nil, domainErr(protocol.CodeNotInGame, "player not in this game")
	}
	if m.round == 0 || m.round > game.TotalRounds {
		m.mu.Unlock()
		return nil, domainErr(protocol.CodeGameNotFound, "no active round")
	}
	slot := m.players[idx]
	if slot.played != nil {
		m.mu.Unlock()
		return nil, domainErr(protocol.CodeAlreadyPlayed, "already played this round")
	}
	card, ok := game.FindAndRemove(&m.deck, cardID)
	if !ok {
		m.mu.Unlock()
		return nil, domainErr(protocol.CodeCardNotAvailable, "card is not available or already played")
	}
	slot.played = &card
	slot.autoPicked = false
	opponent := m.players[1-idx]
	bothPlayed := opponent.played != nil
	cards := append([]game.Card(nil), m.deck...)
	m.mu.Unlock()

	if bothPlayed {
		e.reveal(m)
	} else {
		env, _ := protocol.NewPush(protocol.GameOpponentReady, "", &protocol.OpponentReadyPayload{
			MatchID:        matchID,
			Status:         "READY",
			AvailableCards: cards,
		})
		e.sessions.Push(opponent.userID, env)
	}
	return &protocol.CardPlaySuccessPayload{MatchID: matchID, CardID: card.CardID, AvailableCards: cards}, nil
}

// roundDeadline 回合截止。给未出牌的一方按策略补牌后进入揭示。
func (e *MatchEngine) roundDeadline(m *matchState, round int) {
	m.mu.Lock()
	if m.complete || m.round != round || m.resolved >= round {
		m.mu.Unlock()
		return
	}
	pending := false
	for _, p := range m.players {
		if p.played == nil {
			pending = true
			card, ok := e.autoPick(&m.deck)
			if !ok {
				logger.L().Sugar().Errorw("autopick_failed", "match", m.id, "round", round)
				m.mu.Unlock()
				return
			}
			p.played = &card
			p.autoPicked = true
		}
	}
	m.mu.Unlock()
	if pending {
		logger.L().Sugar().Infow("round_deadline_autopick", "match", m.id, "round", round)
	}
	e.reveal(m)
}

func (e *MatchEngine) autoPick(deck *[]game.Card) (game.Card, bool) {
	var card game.Card
	var ok bool
	if e.cfg.AutoPickPolicy == config.AutoPickRandom {
		e.rngMu.Lock()
		card, ok = game.RandomCard(*deck, e.rng)
		e.rngMu.Unlock()
	} else {
		card, ok = game.LowestCard(*deck)
	}
	if !ok {
		return game.Card{}, false
	}
	return game.FindAndRemove(deck, card.CardID)
}

// reveal 双方选择齐备后揭示本回合，更新累计分并决定续局或终局
func (e *MatchEngine) reveal(m *matchState) {
	m.mu.Lock()
	p1, p2 := m.players[0], m.players[1]
	if m.complete || p1.played == nil || p2.played == nil {
		m.mu.Unlock()
		return
	}
	if m.timer != nil {
		m.timer.Stop()
	}
	c1, c2 := *p1.played, *p2.played
	p1.score += game.RoundPoints(c1, c2)
	p2.score += game.RoundPoints(c2, c1)
	round := m.round
	s1, s2 := p1.score, p2.score
	auto1, auto2 := p1.autoPicked, p2.autoPicked
	gameOver := round >= game.TotalRounds
	if gameOver {
		m.complete = true
	}
	// 在锁内标记回合已揭示并清掉选择，迟到的截止回调和
	// 竞争到的第二个揭示方都在各自入口被挡掉
	m.resolved = round
	p1.played, p2.played = nil, nil
	m.mu.Unlock()

	reveal1 := &protocol.RoundRevealPayload{
		MatchID: m.id, RoundNumber: round,
		YourCard: c1, OpponentCard: c2,
		YourAutoPicked: auto1, OpponentAutoPicked: auto2,
		PointsEarned: game.RoundPoints(c1, c2),
		YourScore:    s1, OpponentScore: s2,
		Result: game.RoundResult(c1, c2),
	}
	reveal2 := &protocol.RoundRevealPayload{
		MatchID: m.id, RoundNumber: round,
		YourCard: c2, OpponentCard: c1,
		YourAutoPicked: auto2, OpponentAutoPicked: auto1,
		PointsEarned: game.RoundPoints(c2, c1),
		YourScore:    s2, OpponentScore: s1,
		Result: game.RoundResult(c2, c1),
	}
	env1, _ := protocol.NewPush(protocol.GameRoundReveal, "", reveal1)
	env2, _ := protocol.NewPush(protocol.GameRoundReveal, "", reveal2)
	e.sessions.Push(p1.userID, env1)
	e.sessions.Push(p2.userID, env2)
	observe.IncRoundRevealed()

	if gameOver {
		e.finish(m, false, "")
	} else {
		e.startRound(m)
	}
}

// Forfeit 任一非终态下的认输/掉线处理：剩下的一方直接获胜
func (e *MatchEngine) Forfeit(matchID, userID string) *DomainError {
	m := e.get(matchID)
	if m == nil {
		return domainErr(protocol.CodeGameNotFound, "game not found or ended: "+matchID)
	}
	m.mu.Lock()
	if m.complete {
		m.mu.Unlock()
		return domainErr(protocol.CodeGameNotFound, "game already ended")
	}
	idx := m.slotIndex(userID)
	if idx < 0 {
		m.mu.Unlock()
		return domainErr(protocol.CodeNotInGame, "player not in this game")
	}
	m.complete = true
	if m.timer != nil {
		m.timer.Stop()
	}
	remaining := m.players[1-idx].userID
	m.mu.Unlock()

	logger.L().Sugar().Infow("match_forfeited", "match", matchID, "by", userID)
	env, _ := protocol.NewPush(protocol.GameOpponentLeft, "", &protocol.OpponentLeftPayload{
		MatchID: matchID,
		UserID:  userID,
	})
	e.sessions.Push(remaining, env)
	e.finish(m, true, remaining)
	return nil
}

// ForfeitByUser 按用户查找其进行中的比赛并判负，登出与断连路径使用
func (e *MatchEngine) ForfeitByUser(userID string) {
	sc, ok := e.sessions.GetByUser(userID)
	if !ok {
		return
	}
	if matchID := sc.MatchID(); matchID != "" {
		_ = e.Forfeit(matchID, userID)
	}
}

// finish 发 GAME.END、落终局记录、清理。forfeitWinner 非空表示判负终局。
func (e *MatchEngine) finish(m *matchState, forfeited bool, forfeitWinner string) {
	m.mu.Lock()
	p1, p2 := m.players[0], m.players[1]
	s1, s2 := p1.score, p2.score
	m.mu.Unlock()

	var result, winnerID string
	if forfeited {
		if forfeitWinner == p1.userID {
			result = game.ResultAWins
		} else {
			result = game.ResultBWins
		}
		winnerID = forfeitWinner
	} else {
		result = game.FinalResult(s1, s2)
		switch result {
		case game.ResultAWins:
			winnerID = p1.userID
		case game.ResultBWins:
			winnerID = p2.userID
		}
	}

	payload := &protocol.GameEndPayload{
		MatchID:      m.id,
		Player1ID:    p1.userID,
		Player2ID:    p2.userID,
		Player1Score: s1,
		Player2Score: s2,
		Result:       result,
		WinnerID:     winnerID,
		Forfeited:    forfeited,
	}
	for _, uid := range []string{p1.userID, p2.userID} {
		env, _ := protocol.NewPush(protocol.GameEnd, "", payload)
		e.sessions.Push(uid, env)
	}

	outcome := "completed"
	if forfeited {
		outcome = "forfeited"
	}
	observe.IncMatchEnded(outcome)

	rec := &store.MatchRecord{
		MatchID:   m.id,
		Player1ID: p1.userID,
		Player2ID: p2.userID,
		Result:    result,
		WinnerID:  winnerID,
		Forfeited: forfeited,
		Timestamp: time.Now(),
	}
	// 落库在对局收尾之外进行，失败只记日志
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.recorder.Record(ctx, rec); err != nil {
			logger.L().Sugar().Warnw("match_record_failed", "match", rec.MatchID, "err", err)
		}
		if winnerID != "" {
			if err := e.identity.AddScore(ctx, winnerID, game.PointsPerWin); err != nil {
				logger.L().Sugar().Warnw("score_update_failed", "user", winnerID, "err", err)
			}
		}
	}()

	e.cleanup(m.id, p1.userID, p2.userID)
}

func (e *MatchEngine) cleanup(matchID string, userIDs ...string) {
	e.mu.Lock()
	delete(e.matches, matchID)
	e.mu.Unlock()
	for _, uid := range userIDs {
		if sc, ok := e.sessions.GetByUser(uid); ok {
			if sc.MatchID() == matchID {
				sc.SetMatchID("")
			}
		}
	}
	logger.L().Sugar().Infow("match_cleaned", "match", matchID)
}
