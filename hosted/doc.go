// Package hosted provides the interrupt controller and timer of a hosted board:
// the firmware core runs unchanged on an operating system, with a single
// goroutine standing in for interrupt context.
//
// The controller keeps pending and mask registers in memory. Sources set bits
// with Raise; the interrupt goroutine runs the registered handler whenever a
// pending line is unmasked and delivery is globally enabled. Because only that
// goroutine runs the handler, interrupt context is never re-entered.
package hosted
