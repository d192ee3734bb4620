package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/sigurn/crc16"
)

// ChunkSize matches the firmware's echo buffer: larger writes only queue in
// the device's receive FIFO
const ChunkSize = 64

// ErrEchoTimeout is returned when the device stops echoing
var ErrEchoTimeout = errors.New("echo timed out")

var crcTable = crc16.MakeTable(crc16.CRC16_XMODEM)

// Result summarizes one echo run
type Result struct {
	Sent     int
	Received int
	SentCRC  uint16
	EchoCRC  uint16
	Elapsed  time.Duration
	Lines    []uint32 // status line counters seen during the run
}

// OK reports whether every byte came back intact
func (r Result) OK() bool {
	return r.Sent == r.Received && r.SentCRC == r.EchoCRC
}

// BytesPerSecond is the round-trip payload rate
func (r Result) BytesPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Received) / r.Elapsed.Seconds()
}

// Payload returns n pseudo-random printable bytes. 'H' is excluded so no
// payload can be mistaken for a status line.
func Payload(n int, seed uint64) []byte {
	const alphabet = "ABCDEFGIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	p := make([]byte, n)
	for i := range p {
		p[i] = alphabet[r.IntN(len(alphabet))]
	}
	return p
}

// Checker runs echo round trips over a port opened with a read timeout
type Checker struct {
	Port io.ReadWriter
	// Timeout bounds the wait for each chunk's echo
	Timeout time.Duration
}

// Run sends payload in ChunkSize writes, waiting for each chunk to come back
// before sending the next, and compares CRC-16/XMODEM of both directions
func (c *Checker) Run(ctx context.Context, payload []byte) (Result, error) {
	res := Result{SentCRC: crc16.Checksum(payload, crcTable)}
	echoed := make([]byte, 0, len(payload))

	demux := &Demux{
		OnLine: func(n uint32) { res.Lines = append(res.Lines, n) },
		OnData: func(p []byte) { echoed = append(echoed, p...) },
	}

	buf := make([]byte, 256)
	start := time.Now()

	for off := 0; off < len(payload); off += ChunkSize {
		end := min(off+ChunkSize, len(payload))
		if _, err := c.Port.Write(payload[off:end]); err != nil {
			return res, fmt.Errorf("write: %w", err)
		}
		res.Sent = end

		deadline := time.Now().Add(c.Timeout)
		for len(echoed) < end {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			if time.Now().After(deadline) {
				demux.Flush()
				res.Received = len(echoed)
				return res, fmt.Errorf("%w after %d of %d bytes", ErrEchoTimeout, len(echoed), len(payload))
			}

			n, err := c.Port.Read(buf)
			if err != nil && !errors.Is(err, io.EOF) {
				return res, fmt.Errorf("read: %w", err)
			}
			demux.Write(buf[:n])
		}
	}

	res.Elapsed = time.Since(start)
	res.Received = len(echoed)
	res.EchoCRC = crc16.Checksum(echoed, crcTable)
	return res, nil
}
