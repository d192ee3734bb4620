//go:build linux

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"divafw/core"
	"divafw/hosted"
	"divafw/usb"
)

// errNoUDC is returned when no gadget controller is registered
var errNoUDC = errors.New("no USB device controller found")

// udcState is the part of a UDC sysfs state that matters to the stack
type udcState struct {
	configured bool
	suspended  bool
}

// parseUDCState maps /sys/class/udc/<udc>/state to a udcState. A suspended
// gadget keeps its configuration; the kernel only reports it as "suspended".
func parseUDCState(s string) udcState {
	switch strings.TrimSpace(s) {
	case "configured":
		return udcState{configured: true}
	case "suspended":
		return udcState{configured: true, suspended: true}
	default:
		// not attached, attached, powered, default, addressed, ...
		return udcState{}
	}
}

// findUDC returns the first controller registered under root
func findUDC(root string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", fmt.Errorf("list %s: %w", root, err)
	}
	if len(entries) == 0 {
		return "", errNoUDC
	}
	return entries[0].Name(), nil
}

// gadgetController implements usb.Controller for a Linux gadget. A poller
// goroutine reads the UDC state file and raises the USB interrupt line on
// change; Poll, in interrupt context, turns the latest sample into events.
//
// The gadget serial function does not expose the host's DTR, so a terminal
// counts as attached once the host has sent data since configuration.
type gadgetController struct {
	statePath string
	period    time.Duration
	irq       *hosted.IRQController
	ctx       context.Context
	log       *slog.Logger

	state    atomic.Uint32 // udcState bits written by the poller
	activity atomic.Bool

	last usb.BusState
}

const (
	stateConfigured = 1 << 0
	stateSuspended  = 1 << 1
)

func newGadgetController(ctx context.Context, cfg USBConfig, irq *hosted.IRQController, log *slog.Logger) (*gadgetController, error) {
	udc := cfg.UDC
	if udc == "" {
		var err error
		if udc, err = findUDC(cfg.SysfsRoot); err != nil {
			return nil, err
		}
	}

	return &gadgetController{
		statePath: filepath.Join(cfg.SysfsRoot, udc, "state"),
		period:    time.Duration(cfg.PollMs) * time.Millisecond,
		irq:       irq,
		ctx:       ctx,
		log:       log.With("udc", udc),
	}, nil
}

// Init reads the state once and starts the poller
func (g *gadgetController) Init() error {
	if _, err := g.sample(); err != nil {
		return err
	}
	go g.poll()
	return nil
}

func (g *gadgetController) sample() (bool, error) {
	data, err := os.ReadFile(g.statePath)
	if err != nil {
		return false, fmt.Errorf("read UDC state: %w", err)
	}

	st := parseUDCState(string(data))
	var bits uint32
	if st.configured {
		bits |= stateConfigured
	}
	if st.suspended {
		bits |= stateSuspended
	}
	return g.state.Swap(bits) != bits, nil
}

func (g *gadgetController) poll() {
	ticker := time.NewTicker(g.period)
	defer ticker.Stop()

	for {
		select {
		case <-g.ctx.Done():
			return
		case <-ticker.C:
		}

		changed, err := g.sample()
		if err != nil {
			g.log.Warn("UDC state", "error", err)
			continue
		}
		if changed {
			g.irq.Raise(core.USBInterrupt)
		}
	}
}

// noteActivity is called by the tty reader when host data arrives
func (g *gadgetController) noteActivity() {
	if !g.activity.Swap(true) {
		g.irq.Raise(core.USBInterrupt)
	}
}

// Poll implements usb.Controller. Interrupt context.
func (g *gadgetController) Poll(raise func(usb.Event) error) {
	g.irq.Clear(core.USBInterrupt)

	bits := g.state.Load()
	now := usb.BusState{
		Configured: bits&stateConfigured != 0,
		Suspended:  bits&stateSuspended != 0,
	}
	if !now.Configured {
		g.activity.Store(false)
	}
	now.DTR = now.Configured && g.activity.Load()

	usb.RaiseChanges(g.last, now, raise)
	g.last = now
}
