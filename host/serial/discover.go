//go:build !wasm

package serial

import (
	"errors"
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
)

// ErrNotFound is returned when no matching CDC port is attached
var ErrNotFound = errors.New("no matching USB serial port found")

// USBID is a USB vendor/product pair
type USBID struct {
	VID string
	PID string
}

func (id USBID) String() string {
	return id.VID + ":" + id.PID
}

// KnownIDs are the IDs the firmware enumerates with: the RP2040 CDC stack
// and the Linux g_serial gadget
var KnownIDs = []USBID{
	{VID: "2E8A", PID: "000A"},
	{VID: "0525", PID: "A4A7"},
}

// PortInfo describes an attached serial port
type PortInfo struct {
	Device  string
	ID      USBID
	Serial  string
	Product string
	IsUSB   bool
}

// Matches reports whether the port carries one of ids. Hex case is ignored.
func (p PortInfo) Matches(ids []USBID) bool {
	if !p.IsUSB {
		return false
	}
	for _, id := range ids {
		if strings.EqualFold(p.ID.VID, id.VID) && strings.EqualFold(p.ID.PID, id.PID) {
			return true
		}
	}
	return false
}

// List returns every serial port the OS reports
func List() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerate ports: %w", err)
	}

	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		ports = append(ports, PortInfo{
			Device:  d.Name,
			ID:      USBID{VID: d.VID, PID: d.PID},
			Serial:  d.SerialNumber,
			Product: d.Product,
			IsUSB:   d.IsUSB,
		})
	}
	return ports, nil
}

// Select returns the first port matching ids
func Select(ports []PortInfo, ids []USBID) (PortInfo, error) {
	for _, p := range ports {
		if p.Matches(ids) {
			return p, nil
		}
	}
	return PortInfo{}, ErrNotFound
}

// Find locates the firmware's CDC port
func Find(ids []USBID) (string, error) {
	ports, err := List()
	if err != nil {
		return "", err
	}
	p, err := Select(ports, ids)
	if err != nil {
		return "", err
	}
	return p.Device, nil
}

// ParseUSBID parses "VID:PID" in hex
func ParseUSBID(s string) (USBID, error) {
	vid, pid, ok := strings.Cut(s, ":")
	if !ok || !isHex16(vid) || !isHex16(pid) {
		return USBID{}, fmt.Errorf("invalid USB ID %q, want VID:PID", s)
	}
	return USBID{VID: strings.ToUpper(vid), PID: strings.ToUpper(pid)}, nil
}

func isHex16(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
