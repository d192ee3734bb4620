// Package console talks to the firmware's CDC port from the host side: it
// separates status lines from echoed bytes and verifies echo integrity.
package console

import (
	"strconv"
)

// statusPrefix starts every status line the firmware prints while a terminal
// is attached
const statusPrefix = "Hello! "

// maxCounterDigits is the width of a uint32 in decimal
const maxCounterDigits = 10

// ParseStatusLine parses "Hello! N" with an optional trailing "\r\n". N must be
// an unsigned decimal without leading zeros.
func ParseStatusLine(line string) (uint32, bool) {
	if len(line) >= 2 && line[len(line)-2:] == "\r\n" {
		line = line[:len(line)-2]
	}
	if len(line) <= len(statusPrefix) || line[:len(statusPrefix)] != statusPrefix {
		return 0, false
	}

	digits := line[len(statusPrefix):]
	if len(digits) > maxCounterDigits || (len(digits) > 1 && digits[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}

	n, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

// Sequence tracks status line counters and reports skipped values
type Sequence struct {
	last uint32
	seen bool
}

// Observe records counter n and returns how many values were skipped since
// the previous one. The counter wraps at 2^32. A repeated or backwards value
// (device reset) restarts tracking and reports no gap.
func (s *Sequence) Observe(n uint32) (skipped uint32) {
	if s.seen {
		delta := n - s.last
		if delta >= 1 && delta < 1<<31 {
			skipped = delta - 1
		}
	}
	s.last = n
	s.seen = true
	return skipped
}

// Last returns the most recent counter, if any
func (s *Sequence) Last() (uint32, bool) {
	return s.last, s.seen
}
