package console

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// loopPort echoes every write. When status is set, a status line is queued
// ahead of each echoed chunk, as the firmware does while a terminal is open.
type loopPort struct {
	mu      sync.Mutex
	rx      bytes.Buffer
	status  bool
	counter uint32
	corrupt bool
	mute    bool
	writes  int
}

func (p *loopPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.writes++
	if p.mute {
		return len(b), nil
	}
	if p.status {
		p.rx.WriteString("Hello! ")
		p.rx.Write(appendUint(nil, p.counter))
		p.rx.WriteString("\r\n")
		p.counter++
	}
	echo := append([]byte(nil), b...)
	if p.corrupt && len(echo) > 0 {
		echo[0] ^= 0x01
	}
	p.rx.Write(echo)
	return len(b), nil
}

func (p *loopPort) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	// Short reads exercise lines split across reads
	if len(b) > 7 {
		b = b[:7]
	}
	return p.rx.Read(b)
}

func appendUint(dst []byte, n uint32) []byte {
	if n >= 10 {
		dst = appendUint(dst, n/10)
	}
	return append(dst, byte('0'+n%10))
}

func TestPayload(t *testing.T) {
	p := Payload(1000, 1)
	if len(p) != 1000 {
		t.Fatalf("len = %d", len(p))
	}
	if bytes.IndexByte(p, 'H') >= 0 {
		t.Error("payload contains 'H'")
	}
	if !bytes.Equal(p, Payload(1000, 1)) {
		t.Error("same seed produced different payloads")
	}
	if bytes.Equal(p, Payload(1000, 2)) {
		t.Error("different seeds produced the same payload")
	}
}

func TestCheckerRoundTrip(t *testing.T) {
	port := &loopPort{}
	c := &Checker{Port: port, Timeout: time.Second}

	payload := Payload(200, 7)
	res, err := c.Run(context.Background(), payload)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.OK() {
		t.Errorf("result not OK: %+v", res)
	}
	if res.Sent != 200 || res.Received != 200 {
		t.Errorf("sent %d received %d", res.Sent, res.Received)
	}
	if port.writes != 4 {
		t.Errorf("writes = %d, want 4 chunks of at most %d", port.writes, ChunkSize)
	}
}

func TestCheckerIgnoresStatusLines(t *testing.T) {
	port := &loopPort{status: true}
	c := &Checker{Port: port, Timeout: time.Second}

	res, err := c.Run(context.Background(), Payload(130, 3))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.OK() {
		t.Errorf("result not OK: %+v", res)
	}
	if !equalLines(res.Lines, []uint32{0, 1, 2}) {
		t.Errorf("lines = %v", res.Lines)
	}
}

func TestCheckerDetectsCorruption(t *testing.T) {
	port := &loopPort{corrupt: true}
	c := &Checker{Port: port, Timeout: time.Second}

	res, err := c.Run(context.Background(), Payload(64, 9))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.OK() {
		t.Error("corrupted echo reported OK")
	}
	if res.SentCRC == res.EchoCRC {
		t.Error("CRCs match despite corruption")
	}
}

func TestCheckerTimeout(t *testing.T) {
	port := &loopPort{mute: true}
	c := &Checker{Port: port, Timeout: 20 * time.Millisecond}

	res, err := c.Run(context.Background(), Payload(10, 1))
	if !errors.Is(err, ErrEchoTimeout) {
		t.Fatalf("got %v, want ErrEchoTimeout", err)
	}
	if res.Received != 0 {
		t.Errorf("Received = %d", res.Received)
	}
}

func TestCheckerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &Checker{Port: &loopPort{mute: true}, Timeout: time.Second}
	if _, err := c.Run(ctx, Payload(10, 1)); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestResultBytesPerSecond(t *testing.T) {
	r := Result{Received: 1000, Elapsed: 500 * time.Millisecond}
	if got := r.BytesPerSecond(); got != 2000 {
		t.Errorf("BytesPerSecond = %v", got)
	}
	if (Result{}).BytesPerSecond() != 0 {
		t.Error("zero elapsed should report 0")
	}
}
