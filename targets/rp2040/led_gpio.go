//go:build rp2040 && !ws2812

package main

import "machine"

// gpioLED implements core.LEDDriver on the board LED pin
type gpioLED struct {
	pin machine.Pin
}

func newStatusLED() *gpioLED {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led.Low()
	return &gpioLED{pin: led}
}

func (l *gpioLED) SetLED(on bool) {
	l.pin.Set(on)
}
