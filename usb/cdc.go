package usb

import (
	"sync"
	"sync/atomic"
)

// Default CDC buffer sizes
const (
	DefaultRxSize = 512
	DefaultTxSize = 512
)

// CDC is a software CDC-ACM channel. The main loop side implements
// core.SerialChannel and never blocks; the endpoint side (Receive, TakeTx,
// Flushed) is driven by whatever moves bytes to and from the host.
type CDC struct {
	mu sync.Mutex
	rx *FifoBuffer
	tx *FifoBuffer

	dtr atomic.Bool
	rts atomic.Bool

	flushed chan struct{}
}

// NewCDC creates a channel with the given buffer capacities
func NewCDC(rxSize, txSize int) *CDC {
	return &CDC{
		rx:      NewFifoBuffer(rxSize),
		tx:      NewFifoBuffer(txSize),
		flushed: make(chan struct{}, 1),
	}
}

// Connected reports whether the host asserted DTR
func (c *CDC) Connected() bool {
	return c.dtr.Load()
}

// Available returns the number of received bytes
func (c *CDC) Available() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rx.Available()
}

// Read copies up to len(buf) received bytes into buf
func (c *CDC) Read(buf []byte) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rx.Read(buf)
}

// Write queues data for the host. Bytes beyond the free space are dropped.
func (c *CDC) Write(data []byte) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tx.Write(data)
}

// Flush signals the endpoint side that queued data should go out now
func (c *CDC) Flush() {
	select {
	case c.flushed <- struct{}{}:
	default:
		// A flush is already pending
	}
}

// SetLineState implements LineStateSetter
func (c *CDC) SetLineState(dtr, rts bool) {
	c.dtr.Store(dtr)
	c.rts.Store(rts)
}

// RTS returns the last RTS state set by the host
func (c *CDC) RTS() bool {
	return c.rts.Load()
}

// Receive stores bytes from the host and returns how many fit
func (c *CDC) Receive(data []byte) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rx.Write(data)
}

// TakeTx moves queued outbound bytes into p
func (c *CDC) TakeTx(p []byte) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tx.Read(p)
}

// Flushed delivers a value after each Flush that found no flush pending
func (c *CDC) Flushed() <-chan struct{} {
	return c.flushed
}

// Reset drops all buffered data in both directions
func (c *CDC) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rx.Reset()
	c.tx.Reset()
}
