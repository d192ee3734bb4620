package core

// ConnState is the USB connection state as seen through the device callbacks
type ConnState uint8

const (
	NotMounted ConnState = iota
	Mounted
	Suspended
)

func (s ConnState) String() string {
	switch s {
	case NotMounted:
		return "not-mounted"
	case Mounted:
		return "mounted"
	case Suspended:
		return "suspended"
	default:
		return "unknown"
	}
}

// Blink intervals in milliseconds
const (
	BlinkNotMounted uint32 = 250
	BlinkMounted    uint32 = 1000
	BlinkSuspended  uint32 = 2500
)

// BlinkInterval returns the blink interval for a connection state
func BlinkInterval(s ConnState) uint32 {
	switch s {
	case Mounted:
		return BlinkMounted
	case Suspended:
		return BlinkSuspended
	default:
		return BlinkNotMounted
	}
}

// statusPrefix starts every status line written to an attached terminal
const statusPrefix = "Hello! "

// statusLineMax fits the prefix, a full uint32 and CRLF
const statusLineMax = len(statusPrefix) + maxUintDigits + 2

// BlinkState drives the status LED. IntervalMs is changed by the connection
// callbacks; everything else belongs to Run.
type BlinkState struct {
	IntervalMs     uint32
	LastToggleMs   uint32
	LEDOn          bool
	MessageCounter uint32

	line [statusLineMax]byte
}

// NewBlinkState returns the boot state: not mounted, LED off, counter zero
func NewBlinkState() BlinkState {
	return BlinkState{IntervalMs: BlinkNotMounted}
}

// SetConnState selects the interval for s. The toggle phase and LED level are
// left alone so a state change never forces an immediate toggle.
func (b *BlinkState) SetConnState(s ConnState) {
	b.IntervalMs = BlinkInterval(s)
}

// Run toggles the LED once if a full interval has passed since the last toggle.
// The deadline advances by exactly one interval so a late call does not shift
// the phase; a call that is more than one interval late catches up on the
// following calls. It returns true when the LED was toggled.
func (b *BlinkState) Run(now uint32, led LEDDriver, serial SerialChannel) bool {
	if !IntervalElapsed(now, b.LastToggleMs, MillisToTicks(b.IntervalMs)) {
		return false
	}
	b.LastToggleMs += MillisToTicks(b.IntervalMs)

	// Toggle, then write: the first write turns the LED on
	b.LEDOn = !b.LEDOn
	led.SetLED(b.LEDOn)

	// The counter only moves when the line is actually printed
	if serial != nil && serial.Connected() {
		serial.Write(b.statusLine(b.MessageCounter))
		serial.Flush()
		b.MessageCounter++
	}
	return true
}

// statusLine formats "Hello! <n>\r\n" into the state's own buffer
func (b *BlinkState) statusLine(n uint32) []byte {
	out := append(b.line[:0], statusPrefix...)
	out = appendUint(out, n)
	return append(out, '\r', '\n')
}
