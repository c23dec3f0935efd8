package protocol

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// MaxMessageSize 单条消息上限（64KB）
const MaxMessageSize = 64 * 1024

// LineCodec 按行分隔的 JSON 编解码器。
// 一行承载一个完整的信封；payload 里不允许出现裸换行（json.Marshal 会转义）。
type LineCodec struct{}

// Encode 序列化信封并追加换行，整行一次性写出，避免并发写交错
func (LineCodec) Encode(w io.Writer, e *Envelope) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if len(raw) > MaxMessageSize {
		return ErrLineTooLong
	}
	buf := make([]byte, 0, len(raw)+1)
	buf = append(buf, raw...)
	buf = append(buf, '\n')
	_, err = w.Write(buf)
	return err
}

// Decode 读取一行并反序列化。缺失 type 视为格式错误。
// 累计长度在读取过程中就卡在 maxSize 上，超限的行不会整段进内存；
// 返回 ErrLineTooLong 时行尾还留在流里，连接必须关闭。
func (LineCodec) Decode(r *bufio.Reader, maxSize int) (*Envelope, error) {
	if maxSize <= 0 {
		maxSize = MaxMessageSize
	}
	var line []byte
	for {
		chunk, err := r.ReadSlice('\n')
		if len(line)+len(chunk) > maxSize {
			return nil, ErrLineTooLong
		}
		line = append(line, chunk...)
		if err == nil {
			break
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		// 半行数据随 EOF 丢弃，消息边界即行边界
		return nil, err
	}
	return Unmarshal(bytes.TrimSpace(line))
}

// Unmarshal 解析一条已按行切分的消息，失败返回 ErrMalformed
func Unmarshal(raw []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if e.Type == "" {
		return nil, fmt.Errorf("%w: missing field: type", ErrMalformed)
	}
	return &e, nil
}
