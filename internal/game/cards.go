package game

import "math/rand"

// 36 张牌：4 花色 × 点数 1..9。cardId 从 1 开始连续编号。
const (
	DeckSize     = 36
	SuitCount    = 4
	MinCardValue = 1
	MaxCardValue = 9
)

var suits = [SuitCount]string{"HEARTS", "DIAMONDS", "CLUBS", "SPADES"}

// Card 一张牌。Value 决定胜负，花色不参与比较。
type Card struct {
	CardID int    `json:"cardId"`
	Suit   string `json:"suit"`
	Value  int    `json:"value"`
}

// NewDeck 生成一副有序牌
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	id := 1
	for _, s := range suits {
		for v := MinCardValue; v <= MaxCardValue; v++ {
			deck = append(deck, Card{CardID: id, Suit: s, Value: v})
			id++
		}
	}
	return deck
}

// Shuffle 原地洗牌
func Shuffle(deck []Card, rng *rand.Rand) {
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}

// FindAndRemove 按 cardId 取出一张牌；不存在返回 false
func FindAndRemove(deck *[]Card, cardID int) (Card, bool) {
	d := *deck
	for i, c := range d {
		if c.CardID == cardID {
			*deck = append(d[:i], d[i+1:]...)
			return c, true
		}
	}
	return Card{}, false
}

// LowestCard 返回牌堆里点数最低的一张（点数相同取 cardId 小的）
func LowestCard(deck []Card) (Card, bool) {
	if len(deck) == 0 {
		return Card{}, false
	}
	low := deck[0]
	for _, c := range deck[1:] {
		if c.Value < low.Value || (c.Value == low.Value && c.CardID < low.CardID) {
			low = c
		}
	}
	return low, true
}

// RandomCard 返回牌堆里随机一张
func RandomCard(deck []Card, rng *rand.Rand) (Card, bool) {
	if len(deck) == 0 {
		return Card{}, false
	}
	return deck[rng.Intn(len(deck))], true
}
