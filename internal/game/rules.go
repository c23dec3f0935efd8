package game

// 对局规则：3 回合，点数高者得 1 分，平局双方 0 分，总分高者胜。
const (
	TotalRounds  = 3
	PointsPerWin = 1
)

// 回合/终局结果
const (
	ResultWin  = "WIN"
	ResultLoss = "LOSS"
	ResultDraw = "DRAW"

	ResultAWins = "A_WINS"
	ResultBWins = "B_WINS"
)

// RoundWinner 比较两张牌：1 表示 card1 胜，2 表示 card2 胜，0 平局
func RoundWinner(card1, card2 Card) int {
	switch {
	case card1.Value > card2.Value:
		return 1
	case card2.Value > card1.Value:
		return 2
	default:
		return 0
	}
}

// RoundPoints 本回合 playerCard 一方的得分
func RoundPoints(playerCard, opponentCard Card) int {
	if RoundWinner(playerCard, opponentCard) == 1 {
		return PointsPerWin
	}
	return 0
}

// RoundResult playerCard 一方视角的回合结果
func RoundResult(playerCard, opponentCard Card) string {
	switch RoundWinner(playerCard, opponentCard) {
	case 1:
		return ResultWin
	case 2:
		return ResultLoss
	default:
		return ResultDraw
	}
}

// FinalResult 终局三元结果，累计分的确定性函数
func FinalResult(player1Score, player2Score int) string {
	switch {
	case player1Score > player2Score:
		return ResultAWins
	case player2Score > player1Score:
		return ResultBWins
	default:
		return ResultDraw
	}
}
