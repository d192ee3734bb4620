package core

import (
	"errors"
	"sync/atomic"
)

// ErrRebootRequested is returned by Run on hosted builds after the button
// watchdog wrote the reset register and the write returned.
var ErrRebootRequested = errors.New("reboot requested")

// Context is the process-lifetime firmware state. It is created once at boot and
// threaded through the scheduler loop; nothing else holds firmware state.
//
// Every task called from Iterate is bounded: the USB service step drains a
// fixed-size event queue, the echo task moves at most EchoBufferSize bytes and
// the blink and button tasks are a comparison and a register access. A full
// iteration must stay well below the few milliseconds the USB host tolerates
// before it sees a stall.
type Context struct {
	Board Board
	USB   Transport

	Time  Timebase
	Blink BlinkState
	Echo  EchoTask
	Trace Trace

	// Last line state reported by the host
	DTR bool
	RTS bool

	conn       ConnState
	dispatcher *Dispatcher
	watchdog   *ButtonWatchdog
	iterations uint32
	halted     bool
	stopped    atomic.Bool
}

// NewContext builds the firmware context over a board and a USB transport
func NewContext(board Board, usb Transport) *Context {
	c := &Context{
		Board: board,
		USB:   usb,
		Blink: NewBlinkState(),
	}
	c.dispatcher = NewDispatcher(board.IRQ, board.Timer, usb, &c.Time)
	c.watchdog = NewButtonWatchdog(board.Button, board.Reset)
	return c
}

// Dispatcher returns the interrupt entry point the platform must call from its
// interrupt vector
func (c *Context) Dispatcher() *Dispatcher {
	return c.dispatcher
}

// Setup masks every interrupt line, enables interrupts globally, then brings up
// the timebase and the USB transport, unmasking each line as its owner is ready.
func (c *Context) Setup() error {
	state := enterCritical()
	defer exitCritical(state)

	irq := c.Board.IRQ
	irq.SetMask(0)
	irq.EnableGlobal()

	if err := c.Board.Timer.Init(); err != nil {
		return err
	}
	irq.SetMask(irq.Mask() | irqLines[IRQTimer])

	c.USB.SetCallbacks(c)
	if err := c.USB.Init(); err != nil {
		return err
	}
	irq.SetMask(irq.Mask() | irqLines[IRQUSB])

	return nil
}

// Iterate runs one scheduler pass: USB service, echo, blink, button. It returns
// false once a reboot has been requested.
func (c *Context) Iterate() bool {
	if c.halted {
		return false
	}
	c.iterations++

	c.USB.ServiceStep()

	serial := c.USB.Serial()
	if n := c.Echo.Run(serial); n > 0 {
		c.Trace.Record(EvtEcho, c.Time.Now(), uint32(n), 0)
	}

	now := c.Time.Now()
	if c.Blink.Run(now, c.Board.LED, serial) {
		c.Trace.Record(EvtToggle, now, boolToUint(c.Blink.LEDOn), c.Blink.IntervalMs)
	}

	if c.watchdog.Poll(now, &c.Trace) {
		c.halted = true
		return false
	}
	return true
}

// Run loops forever. On hardware the only way out is the reset the button
// watchdog requests. Hosted builds return ErrRebootRequested in that case, or
// nil once Stop was called.
func (c *Context) Run() error {
	for !c.stopped.Load() {
		if !c.Iterate() {
			return ErrRebootRequested
		}
	}
	return nil
}

// Stop makes Run return after the current iteration. Hosted builds only.
func (c *Context) Stop() {
	c.stopped.Store(true)
}

// Iterations returns the number of scheduler passes run so far
func (c *Context) Iterations() uint32 {
	return c.iterations
}

// ConnState returns the connection state last reported by the transport
func (c *Context) ConnState() ConnState {
	return c.conn
}

func (c *Context) setConnState(s ConnState) {
	c.conn = s
	c.Blink.SetConnState(s)
}

// Mount implements DeviceCallbacks
func (c *Context) Mount() {
	c.setConnState(Mounted)
	c.Trace.Record(EvtMount, c.Time.Now(), 0, 0)
	c.Trace.Println("usb: mounted")
}

// Unmount implements DeviceCallbacks
func (c *Context) Unmount() {
	c.setConnState(NotMounted)
	c.Trace.Record(EvtUnmount, c.Time.Now(), 0, 0)
	c.Trace.Println("usb: unmounted")
}

// Suspend implements DeviceCallbacks. Remote wakeup is never used.
func (c *Context) Suspend(remoteWakeup bool) {
	c.setConnState(Suspended)
	c.Trace.Record(EvtSuspend, c.Time.Now(), boolToUint(remoteWakeup), 0)
	c.Trace.Println("usb: suspended")
}

// Resume implements DeviceCallbacks
func (c *Context) Resume() {
	c.setConnState(Mounted)
	c.Trace.Record(EvtResume, c.Time.Now(), 0, 0)
	c.Trace.Println("usb: resumed")
}

// LineStateChanged implements DeviceCallbacks. The values are kept for
// inspection; terminal presence for the status line is read from the serial
// channel itself.
func (c *Context) LineStateChanged(dtr, rts bool) {
	c.DTR = dtr
	c.RTS = rts
	c.Trace.Record(EvtLineState, c.Time.Now(), boolToUint(dtr), boolToUint(rts))
}
