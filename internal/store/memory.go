package store

import (
	"context"
	"sort"
	"strconv"
	"sync"
)

// Memory 进程内实现，开发与测试用，同时兼任三个接口
type Memory struct {
	mu      sync.RWMutex
	nextID  int
	byName  map[string]*memUser
	byID    map[string]*memUser
	records []MatchRecord
}

type memUser struct {
	id       string
	username string
	password string
	score    int
}

func NewMemory() *Memory {
	return &Memory{
		byName: make(map[string]*memUser),
		byID:   make(map[string]*memUser),
	}
}

func (m *Memory) Register(_ context.Context, username, password string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byName[username]; ok {
		return nil, ErrUserExists
	}
	m.nextID++
	u := &memUser{id: strconv.Itoa(m.nextID), username: username, password: password}
	m.byName[username] = u
	m.byID[u.id] = u
	return &User{ID: u.id, Username: u.username}, nil
}

func (m *Memory) Authenticate(_ context.Context, username, password string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byName[username]
	if !ok || u.password != password {
		return nil, ErrInvalidCredentials
	}
	return &User{ID: u.id, Username: u.username, Score: u.score}, nil
}

func (m *Memory) AddScore(_ context.Context, userID string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.score += delta
	return nil
}

func (m *Memory) TopN(_ context.Context, limit, offset int) ([]LeaderboardEntry, int, error) {
	m.mu.RLock()
	users := make([]*memUser, 0, len(m.byID))
	for _, u := range m.byID {
		users = append(users, u)
	}
	m.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool {
		if users[i].score != users[j].score {
			return users[i].score > users[j].score
		}
		return users[i].username < users[j].username
	})

	total := len(users)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	out := make([]LeaderboardEntry, 0, end-offset)
	for i := offset; i < end; i++ {
		out = append(out, LeaderboardEntry{
			Rank:     i + 1,
			UserID:   users[i].id,
			Username: users[i].username,
			Score:    users[i].score,
		})
	}
	return out, total, nil
}

func (m *Memory) Record(_ context.Context, rec *MatchRecord) error {
	m.mu.Lock()
	m.records = append(m.records, *rec)
	m.mu.Unlock()
	return nil
}

// Records 返回已写入的终局记录副本（测试用）
func (m *Memory) Records() []MatchRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]MatchRecord, len(m.records))
	copy(out, m.records)
	return out
}
