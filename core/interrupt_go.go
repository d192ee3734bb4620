//go:build !tinygo

package core

// irqState stands in for the saved CPU interrupt state on hosted builds, where
// interrupt context is a goroutine managed by the platform controller.
type irqState uintptr

func enterCritical() irqState {
	return 0
}

func exitCritical(irqState) {}
