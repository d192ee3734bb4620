//go:build linux

// Command linux runs the firmware core on a Linux board in USB gadget mode.
//
// The board exposes a CDC-ACM gadget function (for example g_serial or a
// configfs acm function) as /dev/ttyGS0, a status LED and a button on GPIO
// lines. The scheduler, blink, echo and button watchdog are the same code the
// microcontroller targets run; interrupt context is a goroutine driven by a
// 1 kHz ticker and the UDC state poller.
//
// Usage:
//
//	linux [options]
//
// Options:
//
//	-config path   YAML board file (default: built-in defaults)
//	-v             Enable verbose (debug) logging, including the event trace
//	-json          Use JSON log format
//	-dry-run       Log the button reboot instead of restarting the machine
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"divafw/core"
	"divafw/hosted"
	"divafw/usb"
)

func main() {
	configPath := flag.String("config", "", "YAML board file")
	verbose := flag.Bool("v", false, "enable verbose (debug) logging")
	jsonLog := flag.Bool("json", false, "use JSON log format")
	dryRun := flag.Bool("dry-run", false, "log the reboot request instead of restarting")
	flag.Parse()

	log := newLogger(*verbose, *jsonLog)

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *dryRun {
		cfg.Reboot.DryRun = true
	}

	if err := run(cfg, log, *verbose); err != nil {
		log.Error("firmware stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(verbose, jsonLog bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if jsonLog {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func run(cfg *Config, log *slog.Logger, verbose bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	irq := hosted.NewIRQController(log.With("component", "irq"))
	timer := hosted.NewTimer(ctx, irq, core.Timer0Interrupt, time.Second/core.TicksPerSecond)

	gpio, err := openGPIO(cfg.GPIO, log.With("component", "gpio"))
	if err != nil {
		return err
	}
	defer func() {
		if err := gpio.Close(); err != nil {
			log.Warn("release gpio", "error", err)
		}
	}()

	ctrl, err := newGadgetController(ctx, cfg.USB, irq, log.With("component", "udc"))
	if err != nil {
		return err
	}

	cdc := usb.NewCDC(usb.DefaultRxSize, usb.DefaultTxSize)
	port, err := openGadgetPort(cfg.USB.TTY, cdc, ctrl, log.With("component", "tty"))
	if err != nil {
		return err
	}
	defer port.Close()

	var transport core.Transport = usb.NewDevice(ctrl, cdc)
	reset := &rebootControl{dryRun: cfg.Reboot.DryRun, log: log.With("component", "reset")}

	var reporter *statusReporter
	if cfg.MQTT.Broker != "" {
		pub, err := newMQTTPublisher(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("status publisher: %w", err)
		}
		defer pub.Close()

		reporter = newStatusReporter(pub, log.With("component", "mqtt"))
		transport = &statusTransport{Transport: transport, reporter: reporter}
		reset.publish = func(event string) { reporter.PublishNow(event, core.NotMounted) }
		go reporter.Run(ctx)
	}

	fw := core.NewContext(core.Board{
		IRQ:    irq,
		Timer:  timer,
		LED:    gpio,
		Button: gpio,
		Reset:  reset,
	}, transport)
	gpio.time = &fw.Time
	if reporter != nil {
		reporter.now = fw.Time.Now
	}
	fw.Trace.SetDebugWriter(func(s string) { log.Debug(s, "component", "trace") })
	fw.Trace.SetDebugEnabled(verbose)

	irq.SetHandler(fw.Dispatcher().Dispatch)
	irq.Start(ctx)
	port.Start(ctx)

	if err := fw.Setup(); err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	go func() {
		<-ctx.Done()
		fw.Stop()
	}()

	log.Info("firmware running",
		"tty", cfg.USB.TTY,
		"led", *cfg.GPIO.LED,
		"button", *cfg.GPIO.Button,
		"dryRun", cfg.Reboot.DryRun)

	err = fw.Run()
	if errors.Is(err, core.ErrRebootRequested) {
		fw.Trace.SetDebugWriter(func(s string) { log.Info(s, "component", "trace") })
		fw.Trace.Dump()
		log.Warn("scheduler halted by reboot request")
		return nil
	}
	return err
}
