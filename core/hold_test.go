package core

import (
	"math"
	"testing"
)

func TestHoldDetector(t *testing.T) {
	h := HoldDetector{HoldMs: 100}

	if bits := h.Sample(false, 0); bits != 0 {
		t.Errorf("Released button reported %#x", bits)
	}
	if bits := h.Sample(true, 10); bits != ButtonAPress {
		t.Errorf("Expected press bit only, got %#x", bits)
	}
	if bits := h.Sample(true, 109); bits != ButtonAPress {
		t.Errorf("Hold reported early: %#x", bits)
	}
	if bits := h.Sample(true, 110); bits != ButtonAPress|ButtonAHold {
		t.Errorf("Expected hold bit at 100 ms, got %#x", bits)
	}

	// Releasing restarts the measurement
	h.Sample(false, 111)
	if bits := h.Sample(true, 200); bits&ButtonAHold != 0 {
		t.Error("Hold survived a release")
	}
}

func TestHoldDetectorAcrossWrap(t *testing.T) {
	h := HoldDetector{HoldMs: DefaultHoldMs}
	start := uint32(math.MaxUint32 - 500)

	h.Sample(true, start)
	if bits := h.Sample(true, start+DefaultHoldMs); bits&ButtonAHold == 0 {
		t.Error("Hold not detected across counter wrap")
	}
}
