package protocol

import "encoding/json"

// Envelope 网关与核心之间、客户端与网关之间统一的消息信封。
//
// 约定：
// 1. Type 永远存在，格式为 DOMAIN.ACTION（如 GAME.CARD_PLAY_REQUEST）
// 2. CorrelationID 只在请求/响应配对时出现，纯推送消息没有
// 3. SessionID 在客户端完成登录后出现
// 4. Payload 的结构由 Type 决定
// 5. Error 只出现在 *_FAILURE / SYSTEM.ERROR 响应里
type Envelope struct {
	Type          string          `json:"type"`
	CorrelationID string          `json:"correlationId,omitempty"`
	SessionID     string          `json:"sessionId,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	Error         *ErrorInfo      `json:"error,omitempty"`
}

// ErrorInfo 失败响应携带的错误信息
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// IsRequest 判断是否为请求类消息（有响应配对）
func (e *Envelope) IsRequest() bool {
	return requestFailure[e.Type] != ""
}

// Addressable 判断消息是否能通过注册表寻址。
// 既没有 correlationId 也没有 sessionId 的消息只能在收到它的连接上就地处理。
func (e *Envelope) Addressable() bool {
	return e.CorrelationID != "" || e.SessionID != ""
}

// DecodePayload 把 Payload 反序列化到 v
func (e *Envelope) DecodePayload(v any) error {
	if len(e.Payload) == 0 {
		return ErrEmptyPayload
	}
	return json.Unmarshal(e.Payload, v)
}
