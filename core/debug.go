package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TraceEvent captures a device event for post-mortem analysis
type TraceEvent struct {
	EventType uint8  // Event type code
	Tick      uint32 // Timebase value at the event
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtMount     = 1 // Mount callback
	EvtUnmount   = 2 // Unmount callback
	EvtSuspend   = 3 // Suspend callback, v1=remote wakeup allowed
	EvtResume    = 4 // Resume callback
	EvtLineState = 5 // Line state callback, v1=dtr v2=rts
	EvtToggle    = 6 // LED toggle, v1=new level v2=interval
	EvtEcho      = 7 // Echoed bytes, v1=count
	EvtReboot    = 8 // Reset register written, v1=sentinel
)

// TraceRingSize is the number of events kept
const TraceRingSize = 32

// Trace is a fixed-size ring of the most recent device events. Recording never
// blocks or allocates, so it is safe on the main loop hot path.
type Trace struct {
	ring    [TraceRingSize]TraceEvent
	head    uint8
	writer  DebugWriter
	enabled bool
}

// SetDebugWriter sets the platform-specific debug output function
func (t *Trace) SetDebugWriter(writer DebugWriter) {
	t.writer = writer
}

// SetDebugEnabled enables or disables immediate debug output
func (t *Trace) SetDebugEnabled(enabled bool) {
	t.enabled = enabled
}

// Println writes a debug message when debug output is enabled
func (t *Trace) Println(msg string) {
	if t.enabled && t.writer != nil {
		t.writer(msg)
	}
}

// Record captures an event in the ring buffer
func (t *Trace) Record(eventType uint8, tick, value1, value2 uint32) {
	idx := t.head
	t.ring[idx] = TraceEvent{
		EventType: eventType,
		Tick:      tick,
		Value1:    value1,
		Value2:    value2,
	}
	t.head = (idx + 1) % TraceRingSize
}

// Events returns the recorded events, oldest first
func (t *Trace) Events() []TraceEvent {
	out := make([]TraceEvent, 0, TraceRingSize)
	for i := uint8(0); i < TraceRingSize; i++ {
		evt := t.ring[(t.head+i)%TraceRingSize]
		if evt.EventType == 0 {
			continue
		}
		out = append(out, evt)
	}
	return out
}

// Dump writes the ring through the debug writer, oldest first
func (t *Trace) Dump() {
	if t.writer == nil {
		return
	}

	t.writer("[TRACE] === Event Ring Dump ===")
	for _, evt := range t.Events() {
		t.writer("[TRACE] " + eventName(evt.EventType) +
			" tick=" + utoa(evt.Tick) +
			" v1=" + utoa(evt.Value1) +
			" v2=" + utoa(evt.Value2))
	}
	t.writer("[TRACE] === End Dump ===")
}

// Clear empties the ring
func (t *Trace) Clear() {
	for i := range t.ring {
		t.ring[i] = TraceEvent{}
	}
	t.head = 0
}

func eventName(eventType uint8) string {
	switch eventType {
	case EvtMount:
		return "MOUNT"
	case EvtUnmount:
		return "UNMOUNT"
	case EvtSuspend:
		return "SUSPEND"
	case EvtResume:
		return "RESUME"
	case EvtLineState:
		return "LINE_STATE"
	case EvtToggle:
		return "TOGGLE"
	case EvtEcho:
		return "ECHO"
	case EvtReboot:
		return "REBOOT!"
	default:
		return "UNKNOWN"
	}
}

func boolToUint(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
