package core

// InterruptController is the platform interrupt controller: a pending register and a
// mask register, one bit per interrupt line.
type InterruptController interface {
	// Pending returns the currently asserted interrupt lines
	Pending() uint32

	// Mask returns the currently enabled interrupt lines
	Mask() uint32

	// SetMask replaces the enabled interrupt lines
	SetMask(mask uint32)

	// EnableGlobal turns on interrupt delivery to the CPU
	EnableGlobal()
}

// TimerDriver is the periodic timer behind the Timebase. It must fire
// TicksPerSecond interrupts per second once initialized.
type TimerDriver interface {
	// Init starts the periodic timer
	Init() error

	// ClearPending acknowledges the timer event (write-1-to-clear)
	ClearPending()
}

// LEDDriver drives the single status LED.
type LEDDriver interface {
	SetLED(on bool)
}

// ButtonReader samples the raw button register.
type ButtonReader interface {
	// ReadButtons returns the raw button bitmask (see ButtonAPress, ButtonAHold)
	ReadButtons() uint32
}

// ResetControl is the reset-control register. Writing ResetSentinel requests a full
// device reset; on hardware the write does not return.
type ResetControl interface {
	WriteReset(value uint8)
}

// SerialChannel is the CDC virtual serial port exposed by the USB transport.
// None of the methods block.
type SerialChannel interface {
	// Connected reports whether a host terminal is attached (DTR asserted)
	Connected() bool

	// Available returns the number of received bytes ready to read
	Available() int

	// Read copies up to len(buf) received bytes into buf
	Read(buf []byte) int

	// Write queues data for transmission and returns the number of bytes queued
	Write(data []byte) int

	// Flush starts transmission of everything queued so far
	Flush()
}

// DeviceCallbacks receives USB device events. The transport invokes these from its
// ServiceStep, i.e. on the main loop, never from interrupt context.
type DeviceCallbacks interface {
	Mount()
	Unmount()
	Suspend(remoteWakeup bool)
	Resume()
	LineStateChanged(dtr, rts bool)
}

// Transport is the USB device stack.
type Transport interface {
	// Init brings up the controller. Called once during setup.
	Init() error

	// ServiceStep runs the stack's deferred work and dispatches callbacks.
	// Called once per scheduler iteration.
	ServiceStep()

	// InterruptHandler is the low-level handler for the USB interrupt line.
	// It clears its own pending condition.
	InterruptHandler()

	// SetCallbacks registers the receiver of device events
	SetCallbacks(cb DeviceCallbacks)

	// Serial returns the CDC channel
	Serial() SerialChannel
}

// Board bundles the hardware collaborators of the firmware.
type Board struct {
	IRQ    InterruptController
	Timer  TimerDriver
	LED    LEDDriver
	Button ButtonReader
	Reset  ResetControl
}
