package protocol

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestLineCodecRoundTrip(t *testing.T) {
	env, err := NewRequest(AuthLoginRequest, &LoginRequestPayload{Username: "alice", Password: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := (LineCodec{}).Encode(&buf, env); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
		t.Fatal("encoded frame must end with newline")
	}
	got, err := (LineCodec{}).Decode(bufio.NewReader(&buf), 0)
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != AuthLoginRequest || got.CorrelationID != env.CorrelationID {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	var p LoginRequestPayload
	if err := got.DecodePayload(&p); err != nil {
		t.Fatal(err)
	}
	if p.Username != "alice" {
		t.Fatalf("payload mismatch: %+v", p)
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, line := range []string{
		"not json at all\n",
		"{\"payload\":{}}\n", // missing type
		"[1,2,3]\n",
	} {
		r := bufio.NewReader(strings.NewReader(line))
		_, err := (LineCodec{}).Decode(r, 0)
		if !errors.Is(err, ErrMalformed) {
			t.Fatalf("line %q: want ErrMalformed, got %v", line, err)
		}
	}
}

func TestDecodeLineTooLong(t *testing.T) {
	big := strings.Repeat("x", MaxMessageSize)
	line := `{"type":"SYSTEM.PING","payload":{"pad":"` + big + `"}}` + "\n"
	r := bufio.NewReader(strings.NewReader(line))
	_, err := (LineCodec{}).Decode(r, MaxMessageSize)
	if !errors.Is(err, ErrLineTooLong) {
		t.Fatalf("want ErrLineTooLong, got %v", err)
	}
}

type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

func TestDecodeBoundsOversizedLineRead(t *testing.T) {
	// 32 MiB 不带换行的洪水，解码最多只能消费 O(maxSize) 字节
	src := &countingReader{r: strings.NewReader(strings.Repeat("a", 32<<20))}
	_, err := (LineCodec{}).Decode(bufio.NewReader(src), MaxMessageSize)
	if !errors.Is(err, ErrLineTooLong) {
		t.Fatalf("want ErrLineTooLong, got %v", err)
	}
	if src.n > 2*MaxMessageSize {
		t.Fatalf("consumed %d bytes of an oversized line (cap is %d)", src.n, MaxMessageSize)
	}
}

func TestDecodeMultipleFrames(t *testing.T) {
	var buf bytes.Buffer
	for _, typ := range []string{SystemPing, LobbyMatchRequest} {
		env, _ := NewRequest(typ, nil)
		if err := (LineCodec{}).Encode(&buf, env); err != nil {
			t.Fatal(err)
		}
	}
	r := bufio.NewReader(&buf)
	first, err := (LineCodec{}).Decode(r, 0)
	if err != nil || first.Type != SystemPing {
		t.Fatalf("first frame: %v %v", first, err)
	}
	second, err := (LineCodec{}).Decode(r, 0)
	if err != nil || second.Type != LobbyMatchRequest {
		t.Fatalf("second frame: %v %v", second, err)
	}
}

func TestResponseCarriesRequestAddressing(t *testing.T) {
	req, _ := NewRequest(LobbyMatchRequest, nil)
	req.SessionID = "s-1"
	resp, err := NewResponse(req, LobbyMatchAck, &MatchAckPayload{Status: "QUEUED"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.CorrelationID != req.CorrelationID || resp.SessionID != "s-1" {
		t.Fatalf("addressing not copied: %+v", resp)
	}
}

func TestFailureForMapsEveryRequest(t *testing.T) {
	cases := map[string]string{
		AuthLoginRequest:     AuthLoginFailure,
		LobbyMatchRequest:    LobbyMatchFailure,
		GameCardPlayRequest:  GameCardPlayFailure,
		GameChallengeRequest: GameChallengeFailure,
		"NO.SUCH_TYPE":       SystemError,
	}
	for req, want := range cases {
		if got := FailureFor(req); got != want {
			t.Fatalf("FailureFor(%s) = %s, want %s", req, got, want)
		}
	}
}

func TestNewFailure(t *testing.T) {
	req, _ := NewRequest(GameForfeitRequest, nil)
	req.SessionID = "s-9"
	f := NewFailure(req, CodeGameNotFound, "no such game")
	if f.Type != GameForfeitFailure {
		t.Fatalf("failure type = %s", f.Type)
	}
	if f.Error == nil || f.Error.Code != CodeGameNotFound {
		t.Fatalf("failure error = %+v", f.Error)
	}
	if f.CorrelationID != req.CorrelationID || f.SessionID != "s-9" {
		t.Fatalf("failure addressing = %+v", f)
	}
}

func TestAddressable(t *testing.T) {
	if (&Envelope{Type: SystemError}).Addressable() {
		t.Fatal("bare error should not be addressable")
	}
	if !(&Envelope{Type: GameEnd, SessionID: "s"}).Addressable() {
		t.Fatal("session push should be addressable")
	}
}
