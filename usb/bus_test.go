package usb

import (
	"reflect"
	"testing"
)

func TestRaiseChanges(t *testing.T) {
	tests := []struct {
		name      string
		prev, now BusState
		want      []Event
	}{
		{"unchanged", BusState{Configured: true}, BusState{Configured: true}, nil},
		{"configured", BusState{}, BusState{Configured: true}, []Event{{Kind: EventConfigured}}},
		{"detached", BusState{Configured: true}, BusState{}, []Event{{Kind: EventDetach}}},
		{
			"suspend and resume",
			BusState{Configured: true}, BusState{Configured: true, Suspended: true},
			[]Event{{Kind: EventSuspend}},
		},
		{
			"resume",
			BusState{Configured: true, Suspended: true}, BusState{Configured: true},
			[]Event{{Kind: EventResume}},
		},
		{
			"configured with terminal",
			BusState{}, BusState{Configured: true, DTR: true},
			[]Event{{Kind: EventConfigured}, {Kind: EventLineState, DTR: true}},
		},
		{
			"rts only",
			BusState{DTR: true}, BusState{DTR: true, RTS: true},
			[]Event{{Kind: EventLineState, DTR: true, RTS: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []Event
			RaiseChanges(tt.prev, tt.now, func(ev Event) error {
				got = append(got, ev)
				return nil
			})
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}
