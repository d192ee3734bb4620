//go:build linux

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/tarm/serial"

	"divafw/usb"
)

// gadgetPort moves bytes between the gadget tty and the software CDC channel.
// The blocking reads and writes live in their own goroutines; the main loop
// only touches the CDC FIFOs.
type gadgetPort struct {
	port *serial.Port
	cdc  *usb.CDC
	ctrl *gadgetController
	log  *slog.Logger
}

func openGadgetPort(path string, cdc *usb.CDC, ctrl *gadgetController, log *slog.Logger) (*gadgetPort, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        path,
		Baud:        115200, // ignored by the gadget function
		ReadTimeout: 100 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gadget tty %s: %w", path, err)
	}

	return &gadgetPort{
		port: port,
		cdc:  cdc,
		ctrl: ctrl,
		log:  log.With("tty", path),
	}, nil
}

// Start launches the reader and writer goroutines
func (p *gadgetPort) Start(ctx context.Context) {
	go p.readLoop(ctx)
	go p.writeLoop(ctx)
}

func (p *gadgetPort) readLoop(ctx context.Context) {
	var buf [usb.DefaultRxSize]byte
	for ctx.Err() == nil {
		n, err := p.port.Read(buf[:])
		if errors.Is(err, io.EOF) {
			// read timeout with nothing received
			continue
		}
		if err != nil {
			p.log.Debug("tty read", "error", err)
			time.Sleep(10 * time.Millisecond)
			continue
		}
		if n == 0 {
			continue
		}

		p.ctrl.noteActivity()
		if stored := p.cdc.Receive(buf[:n]); stored < n {
			p.log.Warn("rx overflow", "dropped", n-stored)
		}
	}
}

func (p *gadgetPort) writeLoop(ctx context.Context) {
	var buf [usb.DefaultTxSize]byte
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.cdc.Flushed():
		}

		for {
			n := p.cdc.TakeTx(buf[:])
			if n == 0 {
				break
			}
			if _, err := p.port.Write(buf[:n]); err != nil {
				// Host not listening: drop, like an unread IN endpoint
				p.log.Debug("tty write", "error", err)
				break
			}
		}
	}
}

// Close closes the tty
func (p *gadgetPort) Close() error {
	return p.port.Close()
}
