package core

import (
	"bytes"
	"testing"
)

func TestEchoTwoBytes(t *testing.T) {
	var e EchoTask
	serial := &mockSerial{connected: true, rx: []byte("AB")}

	if n := e.Run(serial); n != 2 {
		t.Fatalf("Expected 2 bytes echoed, got %d", n)
	}
	if string(serial.tx) != "AB" {
		t.Errorf("Expected echo %q, got %q", "AB", serial.tx)
	}
	if serial.reads != 1 || serial.writes != 1 || serial.flushes != 1 {
		t.Errorf("Expected one read, write and flush; got %d, %d, %d",
			serial.reads, serial.writes, serial.flushes)
	}
}

func TestEchoEmptyIsNoop(t *testing.T) {
	var e EchoTask
	serial := &mockSerial{connected: true}

	if n := e.Run(serial); n != 0 {
		t.Errorf("Expected 0 bytes echoed, got %d", n)
	}
	if serial.reads != 0 || serial.writes != 0 || serial.flushes != 0 {
		t.Errorf("Empty channel saw side effects: reads=%d writes=%d flushes=%d",
			serial.reads, serial.writes, serial.flushes)
	}
}

func TestEchoBoundedPerCall(t *testing.T) {
	var e EchoTask
	data := make([]byte, 100)
	for i := range data {
		data[i] = byte(i)
	}
	serial := &mockSerial{rx: append([]byte(nil), data...)}

	if n := e.Run(serial); n != EchoBufferSize {
		t.Fatalf("Expected %d bytes on first call, got %d", EchoBufferSize, n)
	}
	if serial.Available() != 100-EchoBufferSize {
		t.Errorf("Expected %d bytes left, got %d", 100-EchoBufferSize, serial.Available())
	}
	if n := e.Run(serial); n != 100-EchoBufferSize {
		t.Fatalf("Expected %d bytes on second call, got %d", 100-EchoBufferSize, n)
	}
	if !bytes.Equal(serial.tx, data) {
		t.Error("Echoed bytes differ from received bytes")
	}
}

func TestEchoEveryLength(t *testing.T) {
	for n := 0; n <= EchoBufferSize; n++ {
		var e EchoTask
		data := bytes.Repeat([]byte{'x'}, n)
		serial := &mockSerial{rx: append([]byte(nil), data...)}

		if got := e.Run(serial); got != n {
			t.Errorf("n=%d: echoed %d", n, got)
		}
		if !bytes.Equal(serial.tx, data) {
			t.Errorf("n=%d: echoed %q", n, serial.tx)
		}
	}
}
