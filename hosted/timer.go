package hosted

import (
	"context"
	"time"
)

// Timer implements core.TimerDriver with a ticker raising an interrupt line
type Timer struct {
	irq    *IRQController
	line   int
	period time.Duration
	ctx    context.Context
}

// NewTimer creates a timer that raises line on irq every period once Init runs.
// The ticker stops when ctx is done.
func NewTimer(ctx context.Context, irq *IRQController, line int, period time.Duration) *Timer {
	return &Timer{
		irq:    irq,
		line:   line,
		period: period,
		ctx:    ctx,
	}
}

// Init implements core.TimerDriver
func (t *Timer) Init() error {
	ticker := time.NewTicker(t.period)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-t.ctx.Done():
				return
			case <-ticker.C:
				t.irq.Raise(t.line)
			}
		}
	}()
	return nil
}

// ClearPending implements core.TimerDriver
func (t *Timer) ClearPending() {
	t.irq.Clear(t.line)
}
