package core

import (
	"bufio"
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/hongjun500/duel-go/internal/protocol"
)

func TestServeLinkClosesOnOversizedLine(t *testing.T) {
	s := NewServer(NewDispatcher())
	client, server := net.Pipe()
	_ = client.SetDeadline(time.Now().Add(2 * time.Second))
	defer client.Close()

	go s.serveLink(server)

	r := bufio.NewReader(client)
	welcome, err := (protocol.LineCodec{}).Decode(r, 0)
	if err != nil || welcome.Type != protocol.SystemWelcome {
		t.Fatalf("welcome = %v %v", welcome, err)
	}

	// 不带换行的超长洪水，写侧在链路关闭时被解除阻塞
	junk := bytes.Repeat([]byte("x"), protocol.MaxMessageSize+4096)
	go func() { _, _ = client.Write(junk) }()

	resp, err := (protocol.LineCodec{}).Decode(r, 0)
	if err != nil || resp.Type != protocol.SystemError {
		t.Fatalf("resp = %v %v", resp, err)
	}
	if resp.Error == nil || resp.Error.Code != protocol.CodeInvalidJSON {
		t.Fatalf("error = %+v", resp.Error)
	}

	// 之后链路必须已经关闭
	if _, err := (protocol.LineCodec{}).Decode(r, 0); err == nil {
		t.Fatal("link must be closed after an oversized line")
	}
}

func TestServeLinkRepliesAndContinuesOnMalformedLine(t *testing.T) {
	s := NewServer(NewDispatcher())
	client, server := net.Pipe()
	_ = client.SetDeadline(time.Now().Add(2 * time.Second))
	defer client.Close()

	go s.serveLink(server)

	r := bufio.NewReader(client)
	if _, err := (protocol.LineCodec{}).Decode(r, 0); err != nil {
		t.Fatalf("welcome: %v", err)
	}

	go func() { _, _ = client.Write([]byte("not json\n")) }()
	resp, err := (protocol.LineCodec{}).Decode(r, 0)
	if err != nil || resp.Type != protocol.SystemError || resp.Error.Code != protocol.CodeInvalidJSON {
		t.Fatalf("resp = %v %v", resp, err)
	}

	// 行边界完好，链路继续服务
	ping, _ := protocol.NewRequest(protocol.SystemPing, nil)
	go func() {
		var buf bytes.Buffer
		_ = (protocol.LineCodec{}).Encode(&buf, ping)
		_, _ = client.Write(buf.Bytes())
	}()
	resp, err = (protocol.LineCodec{}).Decode(r, 0)
	if err != nil {
		t.Fatalf("link dead after malformed line: %v", err)
	}
	if resp.CorrelationID != ping.CorrelationID {
		t.Fatalf("resp = %+v", resp)
	}
}
