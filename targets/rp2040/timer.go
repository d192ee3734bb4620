//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"

	"divafw/core"
)

// RP2040 Timer peripheral memory map. Alarm 0 belongs to the TinyGo runtime;
// the timebase runs on alarm 1.
const (
	timerBase   = 0x40054000
	timerTIMELR = timerBase + 0x0C // Time low word, latches the high word
	timerALARM1 = timerBase + 0x14
	timerINTR   = timerBase + 0x34 // Raw interrupts, write 1 to clear
	timerINTE   = timerBase + 0x38
	timerINTS   = timerBase + 0x40 // Masked interrupt status

	timerAlarm1Bit = 1 << 1

	// The timer counts microseconds
	tickPeriodUS = 1000000 / core.TicksPerSecond
)

var (
	timeLR     = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMELR)))
	alarm1     = (*volatile.Register32)(unsafe.Pointer(uintptr(timerALARM1)))
	timerIntR  = (*volatile.Register32)(unsafe.Pointer(uintptr(timerINTR)))
	timerIntE  = (*volatile.Register32)(unsafe.Pointer(uintptr(timerINTE)))
	timerIntS  = (*volatile.Register32)(unsafe.Pointer(uintptr(timerINTS)))
	alarmArmed = false
)

// alarmTimer implements core.TimerDriver on hardware alarm 1
type alarmTimer struct{}

// Init arms the first alarm one tick from now and enables its interrupt
func (alarmTimer) Init() error {
	alarm1.Set(timeLR.Get() + tickPeriodUS)
	timerIntE.SetBits(timerAlarm1Bit)
	alarmArmed = true
	return nil
}

// ClearPending acknowledges the alarm and re-arms it. RP2040 alarms are one
// shot and fire only on an exact match with TIMELR, so a deadline already in
// the past would not fire again until the counter wraps. The next deadline
// keeps the previous phase and lands after the current time; ticks missed
// while interrupts were masked are not credited to the timebase.
func (alarmTimer) ClearPending() {
	timerIntR.Set(timerAlarm1Bit)

	next := core.NextDeadline(alarm1.Get(), timeLR.Get(), tickPeriodUS)
	alarm1.Set(next)
	// The counter may pass the deadline between the read and the write
	for int32(next-timeLR.Get()) <= 0 {
		next += tickPeriodUS
		alarm1.Set(next)
	}
}

// timerPending reports an unacknowledged alarm 1 interrupt
func timerPending() bool {
	return alarmArmed && timerIntS.HasBits(timerAlarm1Bit)
}
