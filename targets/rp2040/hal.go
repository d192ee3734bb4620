//go:build rp2040

package main

import (
	"machine"
	"time"

	"divafw/core"
)

// irqController implements core.InterruptController. The timer line mirrors
// alarm 1's masked status; the USB line is raised while the bus state differs
// from what the stack last saw.
type irqController struct {
	mask uint32
	bus  *busController
}

func (c *irqController) Pending() uint32 {
	var bits uint32
	if timerPending() {
		bits |= 1 << core.Timer0Interrupt
	}
	if c.bus.changed() {
		bits |= 1 << core.USBInterrupt
	}
	return bits
}

func (c *irqController) Mask() uint32 {
	return c.mask
}

func (c *irqController) SetMask(mask uint32) {
	c.mask = mask
}

func (c *irqController) EnableGlobal() {
	timerIRQ.SetPriority(0xC0)
	timerIRQ.Enable()
}

// Button A sits on GP15 to ground
const buttonAPin = machine.GP15

// holdButton implements core.ButtonReader. RP2040 has no hold-detecting
// button register, so the hold bit is derived from the press time.
type holdButton struct {
	pin  machine.Pin
	time *core.Timebase
	hold core.HoldDetector
}

// newHoldButton configures the pin; the timebase is attached once the firmware
// context exists
func newHoldButton(pin machine.Pin) *holdButton {
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return &holdButton{
		pin:  pin,
		hold: core.HoldDetector{HoldMs: core.DefaultHoldMs},
	}
}

func (b *holdButton) ReadButtons() uint32 {
	return b.hold.Sample(!b.pin.Get(), b.time.Now())
}

// watchdogReset implements core.ResetControl with a watchdog reset, which
// re-enumerates USB more reliably than SYSRESETREQ
type watchdogReset struct{}

func (watchdogReset) WriteReset(value uint8) {
	if value != core.ResetSentinel {
		return
	}
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 1})
	if err != nil {
		return
	}
	err = machine.Watchdog.Start()
	if err != nil {
		return
	}
	// Wait for reset (should happen in ~1ms)
	for {
		time.Sleep(1 * time.Millisecond)
	}
}
