package protocol

// 消息类型常量。每个请求类型有且只有一个成功响应和一个失败响应；
// 推送类型没有对应的请求。
const (
	// ---- AUTH ----
	AuthRegisterRequest = "AUTH.REGISTER_REQUEST"
	AuthRegisterSuccess = "AUTH.REGISTER_SUCCESS"
	AuthRegisterFailure = "AUTH.REGISTER_FAILURE"
	AuthLoginRequest    = "AUTH.LOGIN_REQUEST"
	AuthLoginSuccess    = "AUTH.LOGIN_SUCCESS"
	AuthLoginFailure    = "AUTH.LOGIN_FAILURE"
	AuthLogoutRequest   = "AUTH.LOGOUT_REQUEST"
	AuthLogoutSuccess   = "AUTH.LOGOUT_SUCCESS"
	AuthLogoutFailure   = "AUTH.LOGOUT_FAILURE"

	// ---- LOBBY ----
	LobbyMatchRequest        = "LOBBY.MATCH_REQUEST"
	LobbyMatchAck            = "LOBBY.MATCH_ACK"
	LobbyMatchFailure        = "LOBBY.MATCH_FAILURE"
	LobbyMatchCancel         = "LOBBY.MATCH_CANCEL"
	LobbyMatchCancelAck      = "LOBBY.MATCH_CANCEL_ACK"
	LobbyMatchCancelFailure  = "LOBBY.MATCH_CANCEL_FAILURE"
	LobbyLeaderboardRequest  = "LOBBY.LEADERBOARD_REQUEST"
	LobbyLeaderboardResponse = "LOBBY.LEADERBOARD_RESPONSE"
	LobbyLeaderboardFailure  = "LOBBY.LEADERBOARD_FAILURE"

	// ---- GAME：比赛生命周期 ----
	GameMatchFound      = "GAME.MATCH_FOUND" // push
	GameStart           = "GAME.START"       // push
	GameRoundStart      = "GAME.ROUND_START" // push
	GameCardPlayRequest = "GAME.CARD_PLAY_REQUEST"
	GameCardPlaySuccess = "GAME.CARD_PLAY_SUCCESS"
	GameCardPlayFailure = "GAME.CARD_PLAY_FAILURE"
	GameOpponentReady   = "GAME.OPPONENT_READY" // push
	GameRoundReveal     = "GAME.ROUND_REVEAL"   // push
	GameEnd             = "GAME.END"            // push
	GameOpponentLeft    = "GAME.OPPONENT_LEFT"  // push
	GameForfeitRequest  = "GAME.FORFEIT_REQUEST"
	GameForfeitSuccess  = "GAME.FORFEIT_SUCCESS"
	GameForfeitFailure  = "GAME.FORFEIT_FAILURE"

	// ---- GAME：挑战生命周期 ----
	GameChallengeRequest         = "GAME.CHALLENGE_REQUEST"
	GameChallengeSuccess         = "GAME.CHALLENGE_SUCCESS"
	GameChallengeFailure         = "GAME.CHALLENGE_FAILURE"
	GameChallengeOffer           = "GAME.CHALLENGE_OFFER" // push to target
	GameChallengeResponse        = "GAME.CHALLENGE_RESPONSE"
	GameChallengeResponseSuccess = "GAME.CHALLENGE_RESPONSE_SUCCESS"
	GameChallengeResponseFailure = "GAME.CHALLENGE_RESPONSE_FAILURE"
	GameChallengeCancel          = "GAME.CHALLENGE_CANCEL"
	GameChallengeCancelSuccess   = "GAME.CHALLENGE_CANCEL_SUCCESS"
	GameChallengeCancelFailure   = "GAME.CHALLENGE_CANCEL_FAILURE"
	GameChallengeCancelled       = "GAME.CHALLENGE_CANCELLED" // push，reason 区分 DECLINED/TIMEOUT/...

	// ---- SYSTEM ----
	SystemWelcome = "SYSTEM.WELCOME" // push
	SystemPing    = "SYSTEM.PING"
	SystemPong    = "SYSTEM.PONG"
	SystemError   = "SYSTEM.ERROR"
)

// requestFailure 请求类型到失败响应类型的映射，同时充当请求类型集合
var requestFailure = map[string]string{
	AuthRegisterRequest:     AuthRegisterFailure,
	AuthLoginRequest:        AuthLoginFailure,
	AuthLogoutRequest:       AuthLogoutFailure,
	LobbyMatchRequest:       LobbyMatchFailure,
	LobbyMatchCancel:        LobbyMatchCancelFailure,
	LobbyLeaderboardRequest: LobbyLeaderboardFailure,
	GameCardPlayRequest:     GameCardPlayFailure,
	GameForfeitRequest:      GameForfeitFailure,
	GameChallengeRequest:    GameChallengeFailure,
	GameChallengeResponse:   GameChallengeResponseFailure,
	GameChallengeCancel:     GameChallengeCancelFailure,
	SystemPing:              SystemError,
}

// FailureFor 返回请求类型对应的失败响应类型；未知类型返回 SYSTEM.ERROR
func FailureFor(reqType string) string {
	if t, ok := requestFailure[reqType]; ok {
		return t
	}
	return SystemError
}
