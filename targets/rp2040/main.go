//go:build rp2040

package main

import (
	"device/rp"
	"machine"
	"runtime/interrupt"
	"time"

	"divafw/core"
	"divafw/usb"
)

var (
	// fw is the firmware context, reachable from the interrupt vector
	fw *core.Context

	timerIRQ interrupt.Interrupt
)

// timerISR is the interrupt vector for alarm 1. Bus changes are sampled here
// too, so USB state reaches the stack at tick rate.
func timerISR(interrupt.Interrupt) {
	fw.Dispatcher().Dispatch()
}

// ledBlink blinks the LED a specific number of times for diagnostics. Used
// only before the scheduler runs.
func ledBlink(count int) {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for i := 0; i < count; i++ {
		led.High()
		time.Sleep(150 * time.Millisecond)
		led.Low()
		time.Sleep(150 * time.Millisecond)
	}
	time.Sleep(500 * time.Millisecond)
}

func main() {
	// Clear any watchdog state left over from the reboot path
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitDebugUART()
	InitUSB()

	bus := &busController{}
	dev := usb.NewDevice(bus, usbSerial{})

	button := newHoldButton(buttonAPin)

	board := core.Board{
		IRQ:    &irqController{bus: bus},
		Timer:  alarmTimer{},
		LED:    newStatusLED(),
		Button: button,
		Reset:  watchdogReset{},
	}
	fw = core.NewContext(board, dev)
	button.time = &fw.Time
	fw.Trace.SetDebugWriter(DebugPrintln)
	fw.Trace.SetDebugEnabled(true)

	timerIRQ = interrupt.New(rp.IRQ_TIMER_IRQ_1, timerISR)

	if err := fw.Setup(); err != nil {
		DebugPrintln("setup failed: " + err.Error())
		for {
			ledBlink(3)
		}
	}

	// Only returns if the reset write did not take
	fw.Run()
	fw.Trace.Dump()
	for {
		ledBlink(5)
	}
}
