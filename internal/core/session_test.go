package core

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hongjun500/duel-go/internal/protocol"
)

// fakeSender 捕获推送的测试替身
type fakeSender struct {
	mu   sync.Mutex
	envs []*protocol.Envelope
	fail bool
}

func (f *fakeSender) Send(env *protocol.Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("sender closed")
	}
	f.envs = append(f.envs, env)
	return nil
}

func (f *fakeSender) byType(msgType string) []*protocol.Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*protocol.Envelope
	for _, e := range f.envs {
		if e.Type == msgType {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeSender) last(msgType string) *protocol.Envelope {
	all := f.byType(msgType)
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}

// waitFor 轮询等待定时器驱动的推送到达
func (f *fakeSender) waitFor(t *testing.T, msgType string, timeout time.Duration) *protocol.Envelope {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if e := f.last(msgType); e != nil {
			return e
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no %s within %v", msgType, timeout)
	return nil
}

func decodeInto(t *testing.T, env *protocol.Envelope, v any) {
	t.Helper()
	if env == nil {
		t.Fatal("nil envelope")
	}
	if err := env.DecodePayload(v); err != nil {
		t.Fatalf("decode %s payload: %v", env.Type, err)
	}
}

func TestSessionManagerCreateAndLookup(t *testing.T) {
	sm := NewSessionManager()
	f := &fakeSender{}
	sc := sm.Create("u1", "alice", f)

	got, ok := sm.Get(sc.SessionID)
	if !ok || got.UserID != "u1" || got.Username != "alice" {
		t.Fatalf("Get = %+v %v", got, ok)
	}
	byUser, ok := sm.GetByUser("u1")
	if !ok || byUser.SessionID != sc.SessionID {
		t.Fatalf("GetByUser = %+v %v", byUser, ok)
	}
	if _, ok := sm.Get(""); ok {
		t.Fatal("empty session id must not resolve")
	}
	if sm.Count() != 1 {
		t.Fatalf("count = %d", sm.Count())
	}
}

func TestSessionManagerSupersedesOldSession(t *testing.T) {
	sm := NewSessionManager()
	old := sm.Create("u1", "alice", &fakeSender{})
	fresh := sm.Create("u1", "alice", &fakeSender{})

	if _, ok := sm.Get(old.SessionID); ok {
		t.Fatal("old session must be evicted")
	}
	cur, ok := sm.GetByUser("u1")
	if !ok || cur.SessionID != fresh.SessionID {
		t.Fatalf("current session = %+v", cur)
	}
	if sm.Count() != 1 {
		t.Fatalf("count = %d", sm.Count())
	}
}

func TestSessionManagerRemove(t *testing.T) {
	sm := NewSessionManager()
	sc := sm.Create("u1", "alice", &fakeSender{})
	sm.Remove(sc.SessionID)
	if _, ok := sm.Get(sc.SessionID); ok {
		t.Fatal("removed session still resolvable")
	}
	if _, ok := sm.GetByUser("u1"); ok {
		t.Fatal("removed session still indexed by user")
	}
	// 幂等
	sm.Remove(sc.SessionID)
}

func TestSessionManagerRemoveKeepsNewerSession(t *testing.T) {
	sm := NewSessionManager()
	old := sm.Create("u1", "alice", &fakeSender{})
	fresh := sm.Create("u1", "alice", &fakeSender{})
	// 旧会话的清理不能误伤顶掉它的新会话
	sm.Remove(old.SessionID)
	if _, ok := sm.GetByUser("u1"); !ok {
		t.Fatal("newer session lost")
	}
	if _, ok := sm.Get(fresh.SessionID); !ok {
		t.Fatal("newer session lost by id")
	}
}

func TestPushSetsSessionIDAndReportsMiss(t *testing.T) {
	sm := NewSessionManager()
	f := &fakeSender{}
	sc := sm.Create("u1", "alice", f)

	env, _ := protocol.NewPush(protocol.GameEnd, "", nil)
	if !sm.Push("u1", env) {
		t.Fatal("push to online user failed")
	}
	if got := f.last(protocol.GameEnd); got == nil || got.SessionID != sc.SessionID {
		t.Fatalf("pushed envelope = %+v", got)
	}

	if sm.Push("ghost", env) {
		t.Fatal("push to offline user must fail")
	}

	f.mu.Lock()
	f.fail = true
	f.mu.Unlock()
	if sm.Push("u1", env) {
		t.Fatal("push over broken sender must fail")
	}
}

func TestSetChallengeIDGuard(t *testing.T) {
	sc := &SessionContext{}
	sc.SetChallengeID("c-1", "")
	// 不匹配的 expect 不得清除
	sc.SetChallengeID("", "c-2")
	if sc.ChallengeID() != "c-1" {
		t.Fatalf("challenge id = %s", sc.ChallengeID())
	}
	sc.SetChallengeID("", "c-1")
	if sc.ChallengeID() != "" {
		t.Fatal("matching expect must clear")
	}
}
