package console

// Demux splits the byte stream read from the device into status lines and
// everything else. The firmware writes each status line in one call, so a
// line is never interleaved with echoed bytes; it may still arrive split
// across reads, so a partial match is held until it completes or fails.
type Demux struct {
	// OnLine receives each status line counter
	OnLine func(n uint32)
	// OnData receives bytes that are not part of a status line. p is only
	// valid during the call.
	OnData func(p []byte)

	pending []byte
}

// Write feeds bytes read from the port
func (d *Demux) Write(p []byte) (int, error) {
	start := 0
	for i, b := range p {
		if len(d.pending) == 0 && b != statusPrefix[0] {
			continue
		}
		if len(d.pending) == 0 {
			d.data(p[start:i])
		}
		d.pending = append(d.pending, b)
		d.settle()
		start = i + 1
	}
	if len(d.pending) == 0 {
		d.data(p[start:])
	}
	return len(p), nil
}

// Flush releases a held partial match as data
func (d *Demux) Flush() {
	d.data(d.pending)
	d.pending = d.pending[:0]
}

// settle resolves pending: emits a complete line, or drops leading bytes
// until what is left could still begin a line
func (d *Demux) settle() {
	for len(d.pending) > 0 {
		switch matchStatus(d.pending) {
		case matchPartial:
			return
		case matchComplete:
			if n, ok := ParseStatusLine(string(d.pending)); ok && d.OnLine != nil {
				d.OnLine(n)
			}
			d.pending = d.pending[:0]
			return
		default:
			d.data(d.pending[:1])
			d.pending = append(d.pending[:0], d.pending[1:]...)
		}
	}
}

func (d *Demux) data(p []byte) {
	if len(p) > 0 && d.OnData != nil {
		d.OnData(p)
	}
}

type match int

const (
	matchNone match = iota
	matchPartial
	matchComplete
)

// matchStatus classifies b against "Hello! <digits>\r\n"
func matchStatus(b []byte) match {
	for i := 0; i < len(b) && i < len(statusPrefix); i++ {
		if b[i] != statusPrefix[i] {
			return matchNone
		}
	}
	if len(b) <= len(statusPrefix) {
		return matchPartial
	}

	rest := b[len(statusPrefix):]
	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	if digits > maxCounterDigits || (digits > 1 && rest[0] == '0') {
		return matchNone
	}
	tail := rest[digits:]
	switch {
	case len(tail) == 0:
		return matchPartial
	case digits == 0 || tail[0] != '\r':
		return matchNone
	case len(tail) == 1:
		return matchPartial
	case tail[1] == '\n' && len(tail) == 2:
		return matchComplete
	default:
		return matchNone
	}
}
