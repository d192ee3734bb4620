package hosted

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// IRQController implements core.InterruptController in software
type IRQController struct {
	pending atomic.Uint32
	mask    atomic.Uint32
	enabled atomic.Bool

	handler func()
	wake    chan struct{}
	log     *slog.Logger
}

// NewIRQController creates a controller with every line masked and delivery
// disabled
func NewIRQController(log *slog.Logger) *IRQController {
	if log == nil {
		log = slog.Default()
	}
	return &IRQController{
		wake: make(chan struct{}, 1),
		log:  log,
	}
}

// SetHandler registers the interrupt vector. Call before Start.
func (c *IRQController) SetHandler(handler func()) {
	c.handler = handler
}

// Start runs interrupt context until ctx is done
func (c *IRQController) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *IRQController) run(ctx context.Context) {
	c.log.Debug("interrupt context started")
	defer c.log.Debug("interrupt context stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.wake:
		}

		if !c.enabled.Load() || c.Pending()&c.Mask() == 0 || c.handler == nil {
			continue
		}
		c.handler()

		// Level triggered: a line left asserted fires again
		if c.Pending()&c.Mask() != 0 {
			c.trigger()
		}
	}
}

func (c *IRQController) trigger() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Raise asserts an interrupt line
func (c *IRQController) Raise(line int) {
	c.pending.Or(1 << line)
	c.trigger()
}

// Clear deasserts an interrupt line (write-1-to-clear)
func (c *IRQController) Clear(line int) {
	c.pending.And(^(uint32(1) << line))
}

// Pending implements core.InterruptController
func (c *IRQController) Pending() uint32 {
	return c.pending.Load()
}

// Mask implements core.InterruptController
func (c *IRQController) Mask() uint32 {
	return c.mask.Load()
}

// SetMask implements core.InterruptController
func (c *IRQController) SetMask(mask uint32) {
	c.mask.Store(mask)
	c.trigger()
}

// EnableGlobal implements core.InterruptController
func (c *IRQController) EnableGlobal() {
	c.enabled.Store(true)
	c.trigger()
}
