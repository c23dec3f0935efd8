package protocol

import "errors"

// 协议层错误码，放进 ErrorInfo.Code
const (
	CodeInvalidJSON        = "INVALID_JSON"
	CodeUnknownType        = "UNKNOWN_TYPE"
	CodeMissingField       = "MISSING_FIELD"
	CodeNotAuthenticated   = "NOT_AUTHENTICATED"
	CodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"

	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeUserAlreadyExists  = "AUTH_USER_ALREADY_EXISTS"

	CodeAlreadyInQueue = "LOBBY_ALREADY_IN_QUEUE"
	CodeNotInQueue     = "LOBBY_NOT_IN_QUEUE"
	CodePlayerBusy     = "LOBBY_PLAYER_BUSY"
	CodePlayerOffline  = "LOBBY_PLAYER_OFFLINE"

	CodeGameNotFound     = "GAME_SESSION_NOT_FOUND"
	CodeCardNotAvailable = "GAME_CARD_NOT_AVAILABLE"
	CodeAlreadyPlayed    = "GAME_ALREADY_PLAYED"
	CodeInvalidCard      = "GAME_INVALID_CARD"
	CodeNotInGame        = "GAME_PLAYER_NOT_IN_GAME"

	CodeChallengeSelf     = "CHALLENGE_SELF"
	CodeChallengeActive   = "CHALLENGE_ALREADY_ACTIVE"
	CodeChallengeInvalid  = "CHALLENGE_NO_LONGER_VALID"
	CodeChallengeNotFound = "CHALLENGE_NOT_FOUND"
)

var (
	ErrEmptyPayload = errors.New("protocol: empty payload")
	// ErrLineTooLong 行超过大小上限，行尾仍留在流里，连接不可复用
	ErrLineTooLong = errors.New("protocol: line exceeds max message size")
	// ErrMalformed 行边界完好但内容不是合法信封，连接可以继续使用
	ErrMalformed = errors.New("protocol: malformed message")
)
