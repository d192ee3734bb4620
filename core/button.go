package core

// Button register bits
const (
	ButtonAPress = 0x01
	ButtonAHold  = 0x02
)

// ResetSentinel is the reset-control value that requests a full device reset
const ResetSentinel uint8 = 0xAC

// ButtonWatchdog reboots the device while button A is held. There is no debounce
// and no confirmation: the hold bit itself is the trigger.
type ButtonWatchdog struct {
	button ButtonReader
	reset  ResetControl
}

// NewButtonWatchdog creates a watchdog over a button register and a reset register
func NewButtonWatchdog(button ButtonReader, reset ResetControl) *ButtonWatchdog {
	return &ButtonWatchdog{button: button, reset: reset}
}

// Poll samples the button once. It returns true when a reset was requested; on
// hardware it does not return at all in that case. The trace entry is written
// first because nothing runs after the reset register write.
func (w *ButtonWatchdog) Poll(now uint32, trace *Trace) bool {
	if w.button.ReadButtons()&ButtonAHold == 0 {
		return false
	}
	if trace != nil {
		trace.Record(EvtReboot, now, uint32(ResetSentinel), 0)
	}
	w.reset.WriteReset(ResetSentinel)
	return true
}
