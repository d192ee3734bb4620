package core

// DefaultHoldMs is how long button A must stay down before the hold bit is set
const DefaultHoldMs = 2000

// HoldDetector produces the button register bits on boards whose button has no
// hold-detecting hardware: the press bit follows the pin, the hold bit is set
// once the press has lasted HoldMs.
type HoldDetector struct {
	HoldMs uint32

	pressed   bool
	pressedAt uint32
}

// Sample feeds one pin sample taken at tick now and returns the register bits
func (h *HoldDetector) Sample(pressed bool, now uint32) uint32 {
	if !pressed {
		h.pressed = false
		return 0
	}
	if !h.pressed {
		h.pressed = true
		h.pressedAt = now
	}

	bits := uint32(ButtonAPress)
	if IntervalElapsed(now, h.pressedAt, MillisToTicks(h.HoldMs)) {
		bits |= ButtonAHold
	}
	return bits
}
