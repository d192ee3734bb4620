package core

import "testing"

func TestButtonWatchdogIdle(t *testing.T) {
	buttons := &mockButtons{}
	reset := &mockReset{}
	w := NewButtonWatchdog(buttons, reset)

	if w.Poll(0, nil) {
		t.Error("Reboot requested with no button pressed")
	}

	// A press without the hold bit is not the reboot gesture
	buttons.bits = ButtonAPress
	if w.Poll(0, nil) {
		t.Error("Reboot requested on a plain press")
	}
	if len(reset.writes) != 0 {
		t.Errorf("Unexpected reset writes %v", reset.writes)
	}
}

func TestButtonWatchdogHold(t *testing.T) {
	buttons := &mockButtons{bits: ButtonAPress | ButtonAHold}
	reset := &mockReset{}
	var trace Trace
	w := NewButtonWatchdog(buttons, reset)

	if !w.Poll(1234, &trace) {
		t.Fatal("Expected reboot request")
	}
	if len(reset.writes) != 1 || reset.writes[0] != 0xAC {
		t.Errorf("Expected a single 0xAC reset write, got %v", reset.writes)
	}

	events := trace.Events()
	if len(events) != 1 || events[0].EventType != EvtReboot || events[0].Tick != 1234 {
		t.Errorf("Expected one reboot trace event, got %+v", events)
	}
}
