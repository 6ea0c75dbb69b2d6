package comms

import (
	"github.com/CodedInternet/goservod/servo"
)

// Cmd is an inbound client command: write one attribute on one motor.
type Cmd struct {
	Cmd   string `json:"cmd"`   // attribute name, e.g. "position"
	Name  string `json:"name"`  // device name, e.g. "motor0"
	Value string `json:"value"` // string-encoded attribute value
}

// StatePayload is the periodic snapshot frame pushed to every client.
type StatePayload struct {
	Type   string                      `json:"type"`
	Motors map[string]servo.MotorState `json:"motors"`
}

// EventPayload wraps a lifecycle event for the wire. Clients use these to
// discover motors appearing and disappearing without polling.
type EventPayload struct {
	Type string `json:"type"`
	servo.Event
}
