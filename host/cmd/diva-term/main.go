// Command diva-term is the host-side companion for the firmware's USB serial
// port: an interactive terminal plus echo, throughput and status checks.
//
// Usage:
//
//	diva-term [options]
//
// Options:
//
//	-device path   Serial device (default: first port with a known VID:PID)
//	-id VID:PID    Match this USB ID when discovering the device
//	-list          List serial ports and exit
//	-check         Send a short payload and verify the echo
//	-bench n       Echo n bytes and report throughput
//	-watch         Print status lines and report skipped counters
//	-timeout d     Per-chunk echo timeout (default 2s)
//	-v             Enable verbose (debug) logging
//	-json          Use JSON log format
//
// In interactive mode keystrokes go to the device and everything it sends is
// printed. Press Ctrl-] to quit.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/inhies/go-bytesize"
	tty "github.com/mattn/go-tty"

	"divafw/host/console"
	"divafw/host/serial"
)

// quitKey is Ctrl-]
const quitKey = 0x1d

// checkSize is the -check payload: a few chunks so the device's FIFO wraps
const checkSize = 4 * console.ChunkSize

func main() {
	device := flag.String("device", "", "serial device path (default: discover)")
	id := flag.String("id", "", "USB VID:PID to discover")
	list := flag.Bool("list", false, "list serial ports and exit")
	check := flag.Bool("check", false, "verify echo with a short payload")
	bench := flag.Int("bench", 0, "echo this many bytes and report throughput")
	watch := flag.Bool("watch", false, "print status lines")
	timeout := flag.Duration("timeout", 2*time.Second, "per-chunk echo timeout")
	verbose := flag.Bool("v", false, "enable verbose (debug) logging")
	jsonLog := flag.Bool("json", false, "use JSON log format")
	flag.Parse()

	log := newLogger(*verbose, *jsonLog)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *list {
		if err := listPorts(); err != nil {
			log.Error("list ports", "error", err)
			os.Exit(1)
		}
		return
	}

	path, err := resolveDevice(*device, *id)
	if err != nil {
		log.Error("find device", "error", err)
		os.Exit(1)
	}

	port, err := serial.Open(serial.DefaultConfig(path))
	if err != nil {
		log.Error("open device", "error", err)
		os.Exit(1)
	}
	defer port.Close()
	log.Debug("opened device", "device", path)

	switch {
	case *check:
		err = runEcho(ctx, log, port, checkSize, *timeout, false)
	case *bench > 0:
		err = runEcho(ctx, log, port, *bench, *timeout, true)
	case *watch:
		err = runWatch(ctx, log, port)
	default:
		err = runTerminal(ctx, port)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("failed", "device", path, "error", err)
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

func resolveDevice(device, id string) (string, error) {
	if device != "" {
		return device, nil
	}

	ids := serial.KnownIDs
	if id != "" {
		usbID, err := serial.ParseUSBID(id)
		if err != nil {
			return "", err
		}
		ids = []serial.USBID{usbID}
	}
	return serial.Find(ids)
}

func listPorts() error {
	ports, err := serial.List()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return nil
	}

	for _, p := range ports {
		if !p.IsUSB {
			fmt.Printf("%-20s\n", p.Device)
			continue
		}
		mark := ""
		if p.Matches(serial.KnownIDs) {
			mark = "  *"
		}
		fmt.Printf("%-20s %s  %-16s %s%s\n", p.Device, p.ID, p.Serial, p.Product, mark)
	}
	return nil
}

func runEcho(ctx context.Context, log *slog.Logger, port serial.Port, size int, timeout time.Duration, bench bool) error {
	if err := port.Flush(); err != nil {
		log.Debug("flush failed", "error", err)
	}

	c := &console.Checker{Port: port, Timeout: timeout}
	res, err := c.Run(ctx, console.Payload(size, uint64(time.Now().UnixNano())))
	if err != nil {
		return err
	}

	attrs := []any{
		"sent", res.Sent,
		"received", res.Received,
		"sentCRC", fmt.Sprintf("%04x", res.SentCRC),
		"echoCRC", fmt.Sprintf("%04x", res.EchoCRC),
		"statusLines", len(res.Lines),
	}
	if bench {
		attrs = append(attrs,
			"elapsed", res.Elapsed.Round(time.Millisecond),
			"rate", bytesize.New(res.BytesPerSecond()).String()+"/s")
	}

	if !res.OK() {
		log.Error("echo mismatch", attrs...)
		return errors.New("echo mismatch")
	}
	log.Info("echo ok", attrs...)
	return nil
}

func runWatch(ctx context.Context, log *slog.Logger, port serial.Port) error {
	start := time.Now()
	return console.Watch(ctx, port, func(n, skipped uint32) {
		if skipped > 0 {
			log.Warn("status lines skipped", "counter", n, "skipped", skipped)
		}
		fmt.Printf("%8.3fs  Hello! %d\n", time.Since(start).Seconds(), n)
	})
}

func runTerminal(ctx context.Context, port serial.Port) error {
	t, err := tty.Open()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	defer t.Close()

	restore, err := t.Raw()
	if err != nil {
		return fmt.Errorf("raw mode: %w", err)
	}
	defer restore()

	fmt.Fprint(t.Output(), "Connected. Press Ctrl-] to quit.\r\n")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	readErr := make(chan error, 1)
	go func() {
		buf := make([]byte, 256)
		for ctx.Err() == nil {
			n, err := port.Read(buf)
			if n > 0 {
				t.Output().Write(buf[:n])
			}
			if err != nil && n == 0 && !isTimeout(err) {
				readErr <- err
				return
			}
		}
	}()

	keys := make(chan rune, 16)
	go func() {
		for {
			r, err := t.ReadRune()
			if err != nil {
				close(keys)
				return
			}
			keys <- r
		}
	}()

	var out [4]byte
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			return fmt.Errorf("read: %w", err)
		case r, ok := <-keys:
			if !ok || r == quitKey {
				return nil
			}
			n := copy(out[:], string(r))
			if _, err := port.Write(out[:n]); err != nil {
				return fmt.Errorf("write: %w", err)
			}
		}
	}
}

// isTimeout reports whether a read error only means no data arrived before
// the port's read timeout
func isTimeout(err error) bool {
	return errors.Is(err, io.EOF)
}
