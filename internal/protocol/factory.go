package protocol

import (
	"encoding/json"

	"github.com/google/uuid"
)

// NewRequest 构造请求信封，自动生成 correlationId
func NewRequest(msgType string, payload any) (*Envelope, error) {
	return newEnvelope(msgType, uuid.New().String(), "", payload)
}

// NewResponse 构造响应信封，回填请求的 correlationId 和 sessionId
func NewResponse(req *Envelope, msgType string, payload any) (*Envelope, error) {
	var corr, sess string
	if req != nil {
		corr = req.CorrelationID
		sess = req.SessionID
	}
	return newEnvelope(msgType, corr, sess, payload)
}

// NewPush 构造推送信封，按 sessionId 寻址，没有 correlationId
func NewPush(msgType, sessionID string, payload any) (*Envelope, error) {
	return newEnvelope(msgType, "", sessionID, payload)
}

// NewFailure 构造请求对应的失败响应
func NewFailure(req *Envelope, code, message string) *Envelope {
	e := &Envelope{
		Type:  FailureFor(typeOf(req)),
		Error: &ErrorInfo{Code: code, Message: message},
	}
	if req != nil {
		e.CorrelationID = req.CorrelationID
		e.SessionID = req.SessionID
	}
	return e
}

// NewLocalError 构造连接本地的 SYSTEM.ERROR，不携带任何寻址信息
func NewLocalError(code, message string) *Envelope {
	return &Envelope{
		Type:  SystemError,
		Error: &ErrorInfo{Code: code, Message: message},
	}
}

func typeOf(req *Envelope) string {
	if req == nil {
		return ""
	}
	return req.Type
}

func newEnvelope(msgType, corr, sess string, payload any) (*Envelope, error) {
	e := &Envelope{Type: msgType, CorrelationID: corr, SessionID: sess}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		e.Payload = raw
	}
	return e, nil
}
