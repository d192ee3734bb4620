package hosted

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"divafw/core"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestIRQControllerDelivery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	irq := NewIRQController(nil)
	var calls atomic.Int32
	irq.SetHandler(func() {
		calls.Add(1)
		irq.Clear(3)
	})
	irq.Start(ctx)

	// Masked and globally disabled: the line stays pending
	irq.Raise(3)
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != 0 {
		t.Fatal("Handler ran with delivery disabled")
	}

	irq.EnableGlobal()
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != 0 {
		t.Fatal("Handler ran for a masked line")
	}

	irq.SetMask(1 << 3)
	waitFor(t, "handler", func() bool { return calls.Load() == 1 })
	if irq.Pending() != 0 {
		t.Errorf("Expected line cleared, pending=%#x", irq.Pending())
	}
}

func TestIRQControllerLevelTriggered(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	irq := NewIRQController(nil)
	var calls atomic.Int32
	irq.SetHandler(func() {
		// Clear only on the third entry
		if calls.Add(1) == 3 {
			irq.Clear(0)
		}
	})
	irq.SetMask(1)
	irq.EnableGlobal()
	irq.Start(ctx)

	irq.Raise(0)
	waitFor(t, "three handler entries", func() bool { return calls.Load() >= 3 })
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != 3 {
		t.Errorf("Expected handler to stop after the line cleared, got %d calls", calls.Load())
	}
}

type nopTransport struct{}

func (nopTransport) Init() error                       { return nil }
func (nopTransport) ServiceStep()                      {}
func (nopTransport) InterruptHandler()                 {}
func (nopTransport) SetCallbacks(core.DeviceCallbacks) {}
func (nopTransport) Serial() core.SerialChannel        { return nil }

func TestTimerDrivesTimebase(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	irq := NewIRQController(nil)
	timer := NewTimer(ctx, irq, core.Timer0Interrupt, time.Millisecond)
	fw := core.NewContext(core.Board{IRQ: irq, Timer: timer}, nopTransport{})
	irq.SetHandler(fw.Dispatcher().Dispatch)
	irq.Start(ctx)

	if err := fw.Setup(); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	waitFor(t, "timebase to advance", func() bool { return fw.Time.Now() >= 20 })

	prev := fw.Time.Now()
	for i := 0; i < 50; i++ {
		now := fw.Time.Now()
		if core.ElapsedSince(now, prev) > 1<<31 {
			t.Fatalf("Timebase went backwards: %d -> %d", prev, now)
		}
		prev = now
		time.Sleep(time.Millisecond)
	}
}
