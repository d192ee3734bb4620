package core

import "sync/atomic"

// TicksPerSecond is the timer interrupt rate. One tick is one millisecond.
const TicksPerSecond = 1000

// Timebase is the free-running millisecond counter. It is written only by the
// interrupt dispatcher and read by the main loop. The counter is 32 bits wide and
// wraps after 2^32 ms; every interval comparison goes through ElapsedSince.
type Timebase struct {
	ticks uint32
}

// Now returns the current tick count
func (t *Timebase) Now() uint32 {
	return atomic.LoadUint32(&t.ticks)
}

// tick advances the counter by one. Interrupt context only.
func (t *Timebase) tick() {
	atomic.AddUint32(&t.ticks, 1)
}

// Set forces the counter value (boot and tests)
func (t *Timebase) Set(ticks uint32) {
	atomic.StoreUint32(&t.ticks, ticks)
}

// ElapsedSince returns now - then modulo 2^32, which is the correct elapsed tick
// count as long as the real interval is shorter than one full counter period.
func ElapsedSince(now, then uint32) uint32 {
	return now - then
}

// IntervalElapsed reports whether at least interval ticks have passed since then
func IntervalElapsed(now, then, interval uint32) bool {
	return ElapsedSince(now, then) >= interval
}

// NextDeadline returns the next expiry of a one-shot alarm that fires every
// period, given the deadline that just fired and the counter value now. The
// result keeps the phase of prev and is always after now, skipping whole
// periods that were missed while the handler ran late.
func NextDeadline(prev, now, period uint32) uint32 {
	next := prev + period
	if int32(next-now) > 0 {
		return next
	}
	missed := ElapsedSince(now, prev) / period
	return prev + (missed+1)*period
}

// MillisToTicks converts milliseconds to timer ticks
func MillisToTicks(ms uint32) uint32 {
	return ms * (TicksPerSecond / 1000)
}
