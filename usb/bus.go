package usb

// BusState is a sampled view of the bus for controllers that learn about the
// bus by polling status registers rather than from event interrupts
type BusState struct {
	Configured bool
	Suspended  bool
	DTR        bool
	RTS        bool
}

// RaiseChanges reports the events that take the bus from prev to now
func RaiseChanges(prev, now BusState, raise func(Event) error) {
	if now.Configured != prev.Configured {
		if now.Configured {
			raise(Event{Kind: EventConfigured})
		} else {
			raise(Event{Kind: EventDetach})
		}
	}
	if now.Suspended != prev.Suspended {
		if now.Suspended {
			raise(Event{Kind: EventSuspend})
		} else {
			raise(Event{Kind: EventResume})
		}
	}
	if now.DTR != prev.DTR || now.RTS != prev.RTS {
		raise(Event{Kind: EventLineState, DTR: now.DTR, RTS: now.RTS})
	}
}
