//go:build linux

package main

import (
	"log/slog"

	"golang.org/x/sys/unix"

	"divafw/core"
)

// rebootControl implements core.ResetControl by restarting the machine. With
// dryRun set the request is only logged, and the scheduler returns
// core.ErrRebootRequested instead.
type rebootControl struct {
	dryRun  bool
	log     *slog.Logger
	publish func(event string)
}

func (r *rebootControl) WriteReset(value uint8) {
	if value != core.ResetSentinel {
		return
	}

	r.log.Warn("reset requested", "button", "A", "dryRun", r.dryRun)
	if r.publish != nil {
		r.publish("reboot")
	}
	if r.dryRun {
		return
	}

	unix.Sync()
	if err := unix.Reboot(unix.LINUX_REBOOT_CMD_RESTART); err != nil {
		r.log.Error("reboot failed", "error", err)
	}
}
