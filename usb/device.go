package usb

import (
	"errors"
	"sync/atomic"

	"divafw/core"
)

// EventQueueSize bounds the events latched between two service steps
const EventQueueSize = 16

// ErrEventOverflow is returned by Raise when the event queue is full
var ErrEventOverflow = errors.New("usb: event queue overflow")

// EventKind identifies a bus-level event reported by a controller
type EventKind uint8

const (
	EventBusReset EventKind = iota + 1
	EventConfigured
	EventSuspend
	EventResume
	EventDetach
	EventLineState
)

func (k EventKind) String() string {
	switch k {
	case EventBusReset:
		return "bus-reset"
	case EventConfigured:
		return "configured"
	case EventSuspend:
		return "suspend"
	case EventResume:
		return "resume"
	case EventDetach:
		return "detach"
	case EventLineState:
		return "line-state"
	default:
		return "unknown"
	}
}

// Event is a bus-level event
type Event struct {
	Kind         EventKind
	RemoteWakeup bool // EventSuspend
	DTR          bool // EventLineState
	RTS          bool // EventLineState
}

// Controller is the device controller below the stack.
type Controller interface {
	// Init brings up the controller
	Init() error

	// Poll runs in interrupt context. It reports hardware events through raise
	// and clears the controller's pending interrupt condition.
	Poll(raise func(Event) error)
}

// LineStateSetter is implemented by serial channels that track DTR/RTS
// themselves
type LineStateSetter interface {
	SetLineState(dtr, rts bool)
}

// Device is the USB device stack. The controller's interrupt path only latches
// events into a fixed queue; ServiceStep, running on the main loop, turns them
// into state changes and callbacks. It implements core.Transport.
type Device struct {
	ctrl   Controller
	serial core.SerialChannel
	cb     core.DeviceCallbacks

	queue   [EventQueueSize]Event
	head    atomic.Uint32 // next slot to fill, interrupt context
	tail    atomic.Uint32 // next slot to drain, main loop
	dropped atomic.Uint32

	raise func(Event) error

	mounted   bool
	suspended bool
	dtr       bool
	rts       bool
}

// NewDevice creates a device stack over a controller and its CDC channel
func NewDevice(ctrl Controller, serial core.SerialChannel) *Device {
	d := &Device{
		ctrl:   ctrl,
		serial: serial,
	}
	// Bound once so the interrupt path does not allocate a method value
	d.raise = d.Raise
	return d
}

// Init implements core.Transport
func (d *Device) Init() error {
	return d.ctrl.Init()
}

// SetCallbacks implements core.Transport
func (d *Device) SetCallbacks(cb core.DeviceCallbacks) {
	d.cb = cb
}

// Serial implements core.Transport
func (d *Device) Serial() core.SerialChannel {
	return d.serial
}

// InterruptHandler implements core.Transport
func (d *Device) InterruptHandler() {
	d.ctrl.Poll(d.raise)
}

// Raise latches an event. Single producer: call it only from interrupt context
// (or from a controller's Poll).
func (d *Device) Raise(ev Event) error {
	head := d.head.Load()
	if head-d.tail.Load() >= EventQueueSize {
		d.dropped.Add(1)
		return ErrEventOverflow
	}
	d.queue[head%EventQueueSize] = ev
	d.head.Store(head + 1)
	return nil
}

// Dropped returns the number of events lost to a full queue
func (d *Device) Dropped() uint32 {
	return d.dropped.Load()
}

// ServiceStep implements core.Transport. It handles at most EventQueueSize
// events per call.
func (d *Device) ServiceStep() {
	for i := 0; i < EventQueueSize; i++ {
		tail := d.tail.Load()
		if tail == d.head.Load() {
			return
		}
		ev := d.queue[tail%EventQueueSize]
		d.tail.Store(tail + 1)
		d.handle(ev)
	}
}

func (d *Device) handle(ev Event) {
	switch ev.Kind {
	case EventConfigured:
		if d.mounted {
			return
		}
		d.mounted = true
		d.suspended = false
		if d.cb != nil {
			d.cb.Mount()
		}

	case EventBusReset, EventDetach:
		d.suspended = false
		d.setLineState(false, false)
		if !d.mounted {
			return
		}
		d.mounted = false
		if d.cb != nil {
			d.cb.Unmount()
		}

	case EventSuspend:
		// Suspend before configuration is normal bus idle, not worth reporting
		if !d.mounted || d.suspended {
			return
		}
		d.suspended = true
		if d.cb != nil {
			d.cb.Suspend(ev.RemoteWakeup)
		}

	case EventResume:
		if !d.suspended {
			return
		}
		d.suspended = false
		if d.cb != nil {
			d.cb.Resume()
		}

	case EventLineState:
		d.setLineState(ev.DTR, ev.RTS)
	}
}

func (d *Device) setLineState(dtr, rts bool) {
	if dtr == d.dtr && rts == d.rts {
		return
	}
	d.dtr = dtr
	d.rts = rts
	if s, ok := d.serial.(LineStateSetter); ok {
		s.SetLineState(dtr, rts)
	}
	if d.cb != nil {
		d.cb.LineStateChanged(dtr, rts)
	}
}

// State returns the connection state as seen by the main loop
func (d *Device) State() core.ConnState {
	switch {
	case d.suspended:
		return core.Suspended
	case d.mounted:
		return core.Mounted
	default:
		return core.NotMounted
	}
}
