//go:build rp2040

package main

import (
	"machine"
	"runtime/volatile"
	"unsafe"

	"divafw/usb"
)

// InitUSB initializes USB serial communication.
// On RP2040 machine.Serial is USB CDC and TinyGo's runtime owns the USB
// controller interrupt and descriptors.
func InitUSB() {
	err := machine.Serial.Configure(machine.UARTConfig{})
	if err != nil {
		return
	}
}

// USB controller registers sampled for bus state
const (
	usbctrlBase       = 0x50110000
	usbctrlADDR_ENDP  = usbctrlBase + 0x00
	usbctrlSIE_STATUS = usbctrlBase + 0x50

	addrMask        = 0x7F
	sieSuspended    = 1 << 4
	sieConnected    = 1 << 16
	sieVbusDetected = 1 << 0
)

var (
	usbAddrEndp  = (*volatile.Register32)(unsafe.Pointer(uintptr(usbctrlADDR_ENDP)))
	usbSIEStatus = (*volatile.Register32)(unsafe.Pointer(uintptr(usbctrlSIE_STATUS)))
)

func sampleBus() usb.BusState {
	sie := usbSIEStatus.Get()
	return usb.BusState{
		Configured: usbAddrEndp.Get()&addrMask != 0 && sie&sieConnected != 0 && sie&sieVbusDetected != 0,
		Suspended:  sie&sieSuspended != 0,
		DTR:        machine.Serial.DTR(),
		RTS:        machine.Serial.RTS(),
	}
}

// busController implements usb.Controller by diffing register snapshots. The
// USB line is reported pending whenever the bus state moved since the last
// Poll, so changes reach the stack from the timer interrupt at tick rate.
type busController struct {
	last usb.BusState
}

func (c *busController) Init() error {
	c.last = usb.BusState{}
	return nil
}

func (c *busController) changed() bool {
	return sampleBus() != c.last
}

// Poll runs in interrupt context
func (c *busController) Poll(raise func(usb.Event) error) {
	now := sampleBus()
	usb.RaiseChanges(c.last, now, raise)
	c.last = now
}

// usbSerial implements core.SerialChannel over machine.Serial
type usbSerial struct{}

func (usbSerial) Connected() bool {
	return machine.Serial.DTR()
}

func (usbSerial) Available() int {
	return machine.Serial.Buffered()
}

// Read drains at most len(buf) already-buffered bytes
func (usbSerial) Read(buf []byte) int {
	n := machine.Serial.Buffered()
	if n > len(buf) {
		n = len(buf)
	}
	for i := 0; i < n; i++ {
		b, err := machine.Serial.ReadByte()
		if err != nil {
			return i
		}
		buf[i] = b
	}
	return n
}

func (usbSerial) Write(data []byte) int {
	n, err := machine.Serial.Write(data)
	if err != nil {
		return 0
	}
	return n
}

// Flush is a no-op: TinyGo queues each Write for the next IN transfer
func (usbSerial) Flush() {}
