//go:build tinygo

package core

import "runtime/interrupt"

type irqState = interrupt.State

// enterCritical masks CPU interrupts and returns the previous state
func enterCritical() irqState {
	return interrupt.Disable()
}

// exitCritical restores the state saved by enterCritical
func exitCritical(state irqState) {
	interrupt.Restore(state)
}
