//go:build rp2040 && ws2812

package main

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ws2812"
)

// Boards like the RP2040-Zero carry a WS2812 instead of a plain LED
const ws2812Pin = machine.GP16

var (
	ledOnColor  = color.RGBA{R: 0, G: 32, B: 0}
	ledOffColor = color.RGBA{}
)

// pixelLED implements core.LEDDriver on a single WS2812 pixel
type pixelLED struct {
	dev   ws2812.Device
	pixel [1]color.RGBA
}

func newStatusLED() *pixelLED {
	ws2812Pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	l := &pixelLED{dev: ws2812.New(ws2812Pin)}
	l.SetLED(false)
	return l
}

func (l *pixelLED) SetLED(on bool) {
	l.pixel[0] = ledOffColor
	if on {
		l.pixel[0] = ledOnColor
	}
	l.dev.WriteColors(l.pixel[:])
}
