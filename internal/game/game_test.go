package game

import (
	"math/rand"
	"testing"
)

func TestNewDeck(t *testing.T) {
	deck := NewDeck()
	if len(deck) != DeckSize {
		t.Fatalf("deck size = %d", len(deck))
	}
	seenIDs := make(map[int]bool)
	suitCount := make(map[string]int)
	for _, c := range deck {
		if seenIDs[c.CardID] {
			t.Fatalf("duplicate cardId %d", c.CardID)
		}
		seenIDs[c.CardID] = true
		if c.Value < MinCardValue || c.Value > MaxCardValue {
			t.Fatalf("value out of range: %+v", c)
		}
		suitCount[c.Suit]++
	}
	for s, n := range suitCount {
		if n != MaxCardValue {
			t.Fatalf("suit %s has %d cards", s, n)
		}
	}
}

func TestShufflePreservesCards(t *testing.T) {
	deck := NewDeck()
	Shuffle(deck, rand.New(rand.NewSource(42)))
	if len(deck) != DeckSize {
		t.Fatalf("shuffle changed size: %d", len(deck))
	}
	seen := make(map[int]bool)
	for _, c := range deck {
		seen[c.CardID] = true
	}
	if len(seen) != DeckSize {
		t.Fatal("shuffle lost cards")
	}
}

func TestFindAndRemove(t *testing.T) {
	deck := NewDeck()
	card, ok := FindAndRemove(&deck, 5)
	if !ok || card.CardID != 5 {
		t.Fatalf("FindAndRemove(5) = %+v %v", card, ok)
	}
	if len(deck) != DeckSize-1 {
		t.Fatalf("deck not shrunk: %d", len(deck))
	}
	if _, ok := FindAndRemove(&deck, 5); ok {
		t.Fatal("removed card found twice")
	}
	if _, ok := FindAndRemove(&deck, 999); ok {
		t.Fatal("nonexistent card found")
	}
}

func TestLowestCard(t *testing.T) {
	deck := []Card{
		{CardID: 10, Value: 4},
		{CardID: 3, Value: 2},
		{CardID: 7, Value: 2},
	}
	low, ok := LowestCard(deck)
	if !ok || low.CardID != 3 {
		t.Fatalf("LowestCard = %+v", low)
	}
	if _, ok := LowestCard(nil); ok {
		t.Fatal("empty deck should have no lowest card")
	}
}

func TestRoundWinner(t *testing.T) {
	high := Card{CardID: 1, Value: 9}
	low := Card{CardID: 2, Value: 1}
	if RoundWinner(high, low) != 1 || RoundWinner(low, high) != 2 {
		t.Fatal("value comparison wrong")
	}
	sameA := Card{CardID: 3, Suit: "HEARTS", Value: 5}
	sameB := Card{CardID: 12, Suit: "SPADES", Value: 5}
	if RoundWinner(sameA, sameB) != 0 {
		t.Fatal("equal values must draw regardless of suit")
	}
}

func TestRoundResultAndPoints(t *testing.T) {
	win := Card{Value: 8}
	lose := Card{Value: 3}
	if RoundResult(win, lose) != ResultWin || RoundResult(lose, win) != ResultLoss {
		t.Fatal("round result wrong")
	}
	if RoundPoints(win, lose) != PointsPerWin || RoundPoints(lose, win) != 0 {
		t.Fatal("round points wrong")
	}
	if RoundPoints(win, win) != 0 || RoundResult(win, win) != ResultDraw {
		t.Fatal("draw must earn nothing")
	}
}

func TestFinalResult(t *testing.T) {
	if FinalResult(2, 1) != ResultAWins {
		t.Fatal("A should win")
	}
	if FinalResult(0, 3) != ResultBWins {
		t.Fatal("B should win")
	}
	if FinalResult(1, 1) != ResultDraw {
		t.Fatal("equal scores must draw")
	}
}
