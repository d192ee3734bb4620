package core

// Interrupt line numbers on the platform interrupt controller
const (
	Timer0Interrupt = 1
	USBInterrupt    = 4
)

// IRQEvent is a decoded interrupt source
type IRQEvent uint8

const (
	IRQUSB IRQEvent = iota
	IRQTimer
	numIRQEvents
)

// irqLines maps each event to its interrupt line bit, in service order
var irqLines = [numIRQEvents]uint32{
	IRQUSB:   1 << USBInterrupt,
	IRQTimer: 1 << Timer0Interrupt,
}

// IRQEvents is a decoded pending set
type IRQEvents struct {
	events [numIRQEvents]IRQEvent
	n      int
}

// Len returns the number of decoded events
func (e *IRQEvents) Len() int {
	return e.n
}

// At returns the i-th decoded event
func (e *IRQEvents) At(i int) IRQEvent {
	return e.events[i]
}

// DecodeIRQ turns a pending&mask bitmask into events. Lines without a handler
// are ignored.
func DecodeIRQ(bits uint32) IRQEvents {
	var out IRQEvents
	for ev, line := range irqLines {
		if bits&line != 0 {
			out.events[out.n] = IRQEvent(ev)
			out.n++
		}
	}
	return out
}

// Dispatcher is the interrupt entry point. The platform calls Dispatch from its
// interrupt vector; it never blocks.
type Dispatcher struct {
	irq   InterruptController
	timer TimerDriver
	usb   Transport
	time  *Timebase
}

// NewDispatcher wires the dispatcher to the timebase and the interrupt sources
func NewDispatcher(irq InterruptController, timer TimerDriver, usb Transport, tb *Timebase) *Dispatcher {
	return &Dispatcher{
		irq:   irq,
		timer: timer,
		usb:   usb,
		time:  tb,
	}
}

// Dispatch services every pending, unmasked interrupt source once
func (d *Dispatcher) Dispatch() {
	events := DecodeIRQ(d.irq.Pending() & d.irq.Mask())

	for i := 0; i < events.Len(); i++ {
		switch events.At(i) {
		case IRQUSB:
			d.usb.InterruptHandler()
		case IRQTimer:
			// Counter update lands before the acknowledge
			d.time.tick()
			d.timer.ClearPending()
		}
	}
}
