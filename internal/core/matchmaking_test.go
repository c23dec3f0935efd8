package core

import (
	"testing"
	"time"

	"github.com/hongjun500/duel-go/internal/protocol"
)

func TestMatchmakerQueueAndPair(t *testing.T) {
	fx := newDuelFixture(t, MatchConfig{RoundTimeout: time.Hour})
	s1, _ := fx.sessions.GetByUser(fx.u1)
	s2, _ := fx.sessions.GetByUser(fx.u2)

	ack, derr := fx.matchmaker.Request(s1)
	if derr != nil {
		t.Fatal(derr)
	}
	if ack.Status != "QUEUED" {
		t.Fatalf("ack = %+v", ack)
	}
	if fx.matchmaker.QueueLen() != 1 {
		t.Fatalf("queue len = %d", fx.matchmaker.QueueLen())
	}

	if _, derr := fx.matchmaker.Request(s1); derr == nil || derr.Code != protocol.CodeAlreadyInQueue {
		t.Fatalf("double request: %v", derr)
	}

	// 第二人入队立即配对
	if _, derr := fx.matchmaker.Request(s2); derr != nil {
		t.Fatal(derr)
	}
	if fx.matchmaker.QueueLen() != 0 {
		t.Fatalf("queue not drained: %d", fx.matchmaker.QueueLen())
	}
	if fx.f1.last(protocol.GameMatchFound) == nil || fx.f2.last(protocol.GameMatchFound) == nil {
		t.Fatal("both players must get MATCH_FOUND")
	}

	// 在局玩家不得再排队
	if _, derr := fx.matchmaker.Request(s1); derr == nil || derr.Code != protocol.CodePlayerBusy {
		t.Fatalf("request while in game: %v", derr)
	}
}

func TestMatchmakerCancel(t *testing.T) {
	fx := newDuelFixture(t, MatchConfig{RoundTimeout: time.Hour})
	s1, _ := fx.sessions.GetByUser(fx.u1)

	if _, derr := fx.matchmaker.Cancel(s1); derr == nil || derr.Code != protocol.CodeNotInQueue {
		t.Fatalf("cancel outside queue: %v", derr)
	}

	if _, derr := fx.matchmaker.Request(s1); derr != nil {
		t.Fatal(derr)
	}
	ack, derr := fx.matchmaker.Cancel(s1)
	if derr != nil {
		t.Fatal(derr)
	}
	if ack.Status != "CANCELLED" || fx.matchmaker.QueueLen() != 0 {
		t.Fatalf("cancel ack = %+v len = %d", ack, fx.matchmaker.QueueLen())
	}

	// 取消后可重新入队
	if _, derr := fx.matchmaker.Request(s1); derr != nil {
		t.Fatal(derr)
	}
}

func TestMatchmakerRemoveUser(t *testing.T) {
	fx := newDuelFixture(t, MatchConfig{RoundTimeout: time.Hour})
	s1, _ := fx.sessions.GetByUser(fx.u1)
	s2, _ := fx.sessions.GetByUser(fx.u2)

	_, _ = fx.matchmaker.Request(s1)
	if !fx.matchmaker.RemoveUser(fx.u1) {
		t.Fatal("remove queued user failed")
	}
	if fx.matchmaker.RemoveUser(fx.u1) {
		t.Fatal("remove must be idempotent")
	}

	// u1 已出队，u2 入队不会配对
	if _, derr := fx.matchmaker.Request(s2); derr != nil {
		t.Fatal(derr)
	}
	if fx.f2.last(protocol.GameMatchFound) != nil {
		t.Fatal("no pairing expected after removal")
	}
}
