//go:build !wasm

package serial

import (
	"errors"
	"testing"
)

func TestParseUSBID(t *testing.T) {
	id, err := ParseUSBID("2e8a:000a")
	if err != nil {
		t.Fatalf("ParseUSBID: %v", err)
	}
	if id != (USBID{VID: "2E8A", PID: "000A"}) {
		t.Errorf("got %v", id)
	}
	if id.String() != "2E8A:000A" {
		t.Errorf("String() = %q", id.String())
	}

	for _, bad := range []string{"", "2e8a", "2e8a:", "2e8a:0x0a", "zzzz:0000", "12345:0000"} {
		if _, err := ParseUSBID(bad); err == nil {
			t.Errorf("ParseUSBID(%q) succeeded", bad)
		}
	}
}

func TestSelect(t *testing.T) {
	ports := []PortInfo{
		{Device: "/dev/ttyS0"},
		{Device: "/dev/ttyUSB0", IsUSB: true, ID: USBID{VID: "0403", PID: "6001"}},
		{Device: "/dev/ttyACM0", IsUSB: true, ID: USBID{VID: "2e8a", PID: "000a"}},
		{Device: "/dev/ttyACM1", IsUSB: true, ID: USBID{VID: "2E8A", PID: "000A"}},
	}

	p, err := Select(ports, KnownIDs)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if p.Device != "/dev/ttyACM0" {
		t.Errorf("Select = %s, want first match /dev/ttyACM0", p.Device)
	}

	if _, err := Select(ports[:2], KnownIDs); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestMatchesIgnoresNonUSB(t *testing.T) {
	p := PortInfo{Device: "/dev/ttyS0", ID: USBID{VID: "2E8A", PID: "000A"}}
	if p.Matches(KnownIDs) {
		t.Error("non-USB port matched")
	}
}
