package core

import "testing"

func TestDecodeIRQ(t *testing.T) {
	tests := []struct {
		name string
		bits uint32
		want []IRQEvent
	}{
		{"none", 0, nil},
		{"timer", 1 << Timer0Interrupt, []IRQEvent{IRQTimer}},
		{"usb", 1 << USBInterrupt, []IRQEvent{IRQUSB}},
		{"both in service order", 1<<Timer0Interrupt | 1<<USBInterrupt, []IRQEvent{IRQUSB, IRQTimer}},
		{"unknown lines ignored", 1<<0 | 1<<7 | 1<<31, nil},
		{"unknown mixed with timer", 1<<Timer0Interrupt | 1<<9, []IRQEvent{IRQTimer}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeIRQ(tt.bits)
			if got.Len() != len(tt.want) {
				t.Fatalf("Expected %d events, got %d", len(tt.want), got.Len())
			}
			for i, ev := range tt.want {
				if got.At(i) != ev {
					t.Errorf("event %d: got %d, want %d", i, got.At(i), ev)
				}
			}
		})
	}
}

func TestDispatchTimer(t *testing.T) {
	r := newTestRig()
	r.irq.mask = 1<<Timer0Interrupt | 1<<USBInterrupt

	for i := 0; i < 500; i++ {
		r.irq.pending |= 1 << Timer0Interrupt
		r.ctx.Dispatcher().Dispatch()
	}

	if r.ctx.Time.Now() != 500 {
		t.Errorf("Expected 500 ticks, got %d", r.ctx.Time.Now())
	}
	if r.timer.cleared != 500 {
		t.Errorf("Expected 500 acknowledges, got %d", r.timer.cleared)
	}
	if r.irq.pending != 0 {
		t.Errorf("Timer pending flag not cleared: %#x", r.irq.pending)
	}
	if r.usb.irqs != 0 {
		t.Errorf("USB handler ran without a USB interrupt")
	}
}

func TestDispatchRespectsMask(t *testing.T) {
	r := newTestRig()
	r.irq.pending = 1<<Timer0Interrupt | 1<<USBInterrupt

	r.ctx.Dispatcher().Dispatch()
	if r.ctx.Time.Now() != 0 || r.usb.irqs != 0 || r.timer.cleared != 0 {
		t.Error("Masked interrupts were serviced")
	}

	r.irq.mask = 1 << USBInterrupt
	r.ctx.Dispatcher().Dispatch()
	if r.usb.irqs != 1 {
		t.Errorf("Expected one USB handler call, got %d", r.usb.irqs)
	}
	if r.ctx.Time.Now() != 0 {
		t.Error("Masked timer interrupt advanced the timebase")
	}
}

func TestDispatchNoPending(t *testing.T) {
	r := newTestRig()
	r.irq.mask = ^uint32(0)

	r.ctx.Dispatcher().Dispatch()
	if r.ctx.Time.Now() != 0 || r.usb.irqs != 0 {
		t.Error("Dispatch acted without a pending interrupt")
	}
}
