//go:build linux

package main

import (
	"fmt"
	"log/slog"

	"github.com/warthog618/go-gpiocdev"

	"divafw/core"
)

// gpioBoard drives the status LED and samples button A through the GPIO
// character device
type gpioBoard struct {
	chip   *gpiocdev.Chip
	led    *gpiocdev.Line
	button *gpiocdev.Line
	hold   core.HoldDetector
	time   *core.Timebase
	log    *slog.Logger
}

func openGPIO(cfg GPIOConfig, log *slog.Logger) (*gpioBoard, error) {
	chip, err := gpiocdev.NewChip(cfg.Chip, gpiocdev.WithConsumer("divafw"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	led, err := chip.RequestLine(*cfg.LED, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request LED line %d: %w", *cfg.LED, err)
	}

	buttonOpts := []gpiocdev.LineReqOption{gpiocdev.AsInput}
	if *cfg.ButtonActiveLow {
		buttonOpts = append(buttonOpts, gpiocdev.AsActiveLow, gpiocdev.WithPullUp)
	} else {
		buttonOpts = append(buttonOpts, gpiocdev.WithPullDown)
	}
	button, err := chip.RequestLine(*cfg.Button, buttonOpts...)
	if err != nil {
		led.Close()
		chip.Close()
		return nil, fmt.Errorf("request button line %d: %w", *cfg.Button, err)
	}

	return &gpioBoard{
		chip:   chip,
		led:    led,
		button: button,
		hold:   core.HoldDetector{HoldMs: cfg.HoldMs},
		log:    log,
	}, nil
}

// SetLED implements core.LEDDriver
func (g *gpioBoard) SetLED(on bool) {
	v := 0
	if on {
		v = 1
	}
	if err := g.led.SetValue(v); err != nil {
		g.log.Warn("set LED", "error", err)
	}
}

// ReadButtons implements core.ButtonReader. A failed read counts as released.
func (g *gpioBoard) ReadButtons() uint32 {
	v, err := g.button.Value()
	if err != nil {
		g.log.Warn("read button", "error", err)
		v = 0
	}
	return g.hold.Sample(v == 1, g.time.Now())
}

// Close turns the LED off and releases the lines
func (g *gpioBoard) Close() error {
	var errs []error

	if err := g.led.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("clear LED: %w", err))
	}
	if err := g.led.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close LED line: %w", err))
	}
	if err := g.button.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close button line: %w", err))
	}
	if err := g.chip.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close chip: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
