package gateway

import (
	"testing"

	"github.com/hongjun500/duel-go/internal/protocol"
)

func newTestConn(buf int) *ClientConn {
	if buf <= 0 {
		buf = 16
	}
	return &ClientConn{id: "conn-test", out: make(chan *protocol.Envelope, buf)}
}

// drain 取出一条已入队的消息
func (c *ClientConn) drain(t *testing.T) *protocol.Envelope {
	t.Helper()
	select {
	case env := <-c.out:
		return env
	default:
		t.Fatal("no envelope enqueued")
		return nil
	}
}

func TestCorrelationSingleDelivery(t *testing.T) {
	r := NewRegistry()
	c := newTestConn(0)
	r.BindCorrelation("corr-1", c)

	got, ok := r.TakeCorrelation("corr-1")
	if !ok || got != c {
		t.Fatalf("take = %v %v", got, ok)
	}
	// 投递即失效
	if _, ok := r.TakeCorrelation("corr-1"); ok {
		t.Fatal("correlation delivered twice")
	}
	if _, ok := r.TakeCorrelation("corr-missing"); ok {
		t.Fatal("unknown correlation resolved")
	}
}

func TestSessionRebinding(t *testing.T) {
	r := NewRegistry()
	old := newTestConn(0)
	fresh := newTestConn(0)

	r.BindSession("s-1", old)
	// 重连后同一 sessionId 指向新连接，后写覆盖
	r.BindSession("s-1", fresh)

	got, ok := r.Session("s-1")
	if !ok || got != fresh {
		t.Fatal("session not rebound to newest connection")
	}

	// 会话绑定可重复使用
	if got2, ok := r.Session("s-1"); !ok || got2 != fresh {
		t.Fatal("session binding must be reusable")
	}

	r.UnbindSession("s-1")
	if _, ok := r.Session("s-1"); ok {
		t.Fatal("unbound session resolved")
	}
}

func TestPruneConnection(t *testing.T) {
	r := NewRegistry()
	gone := newTestConn(0)
	stay := newTestConn(0)

	r.BindCorrelation("corr-a", gone)
	r.BindCorrelation("corr-b", stay)
	r.BindSession("s-gone", gone)
	r.BindSession("s-stay", stay)

	r.PruneConnection(gone)

	if _, ok := r.TakeCorrelation("corr-a"); ok {
		t.Fatal("pruned correlation resolved")
	}
	if _, ok := r.TakeCorrelation("corr-b"); !ok {
		t.Fatal("unrelated correlation lost")
	}
	if _, ok := r.Session("s-gone"); ok {
		t.Fatal("pruned session resolved")
	}
	if _, ok := r.Session("s-stay"); !ok {
		t.Fatal("unrelated session lost")
	}
}

func TestPruneKeepsReboundSession(t *testing.T) {
	r := NewRegistry()
	old := newTestConn(0)
	fresh := newTestConn(0)
	r.BindSession("s-1", old)
	r.BindSession("s-1", fresh)

	// 旧连接断开的清理不能影响新绑定
	r.PruneConnection(old)
	got, ok := r.Session("s-1")
	if !ok || got != fresh {
		t.Fatal("rebound session lost on stale prune")
	}
}

func TestRegistryCounts(t *testing.T) {
	r := NewRegistry()
	c := newTestConn(0)
	r.BindCorrelation("a", c)
	r.BindCorrelation("b", c)
	r.BindSession("s", c)
	if r.CorrelationCount() != 2 || r.SessionCount() != 1 {
		t.Fatalf("counts = %d/%d", r.CorrelationCount(), r.SessionCount())
	}
}
