package main

import (
	"io"
	"testing"
)

func TestResolveDeviceExplicit(t *testing.T) {
	got, err := resolveDevice("/dev/ttyACM3", "zzzz")
	if err != nil {
		t.Fatalf("resolveDevice: %v", err)
	}
	if got != "/dev/ttyACM3" {
		t.Errorf("got %q", got)
	}
}

func TestResolveDeviceBadID(t *testing.T) {
	if _, err := resolveDevice("", "2e8a"); err == nil {
		t.Error("expected error for malformed USB ID")
	}
}

func TestIsTimeout(t *testing.T) {
	if !isTimeout(io.EOF) {
		t.Error("io.EOF should count as a read timeout")
	}
	if isTimeout(io.ErrClosedPipe) {
		t.Error("closed pipe is not a timeout")
	}
}
