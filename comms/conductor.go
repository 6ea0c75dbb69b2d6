// Package comms pushes motor state and lifecycle notifications to connected
// clients and routes their commands back into the servo class.
package comms

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/CodedInternet/goservod/servo"
	deverrors "github.com/CodedInternet/goservod/servo/errors"
	"github.com/gorilla/websocket"
)

// state frames per second pushed to each client
const frameRate = 20

type ConductorInterface interface {
	ProcessCommand(cmd Cmd) error
}

// Conductor fans motor state out to websocket clients on a fixed frame
// interval and forwards registry lifecycle events as they happen. Writes to
// each connection are serialized by the conductor lock; a client whose write
// fails is dropped.
type Conductor struct {
	Registry *servo.Registry

	lock    sync.Mutex
	clients []*websocket.Conn
	events  chan servo.Event
}

func NewConductor(registry *servo.Registry) *Conductor {
	c := &Conductor{
		Registry: registry,
		events:   make(chan servo.Event, 16),
	}
	registry.AddListener(c.events)
	return c
}

// AddClient subscribes a websocket connection to state and lifecycle frames.
func (c *Conductor) AddClient(conn *websocket.Conn) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.clients = append(c.clients, conn)
}

// UpdateClients runs the broadcast loop. Call in a goroutine; it runs for
// the lifetime of the process.
func (c *Conductor) UpdateClients() {
	ticker := time.NewTicker(time.Second / frameRate)
	defer ticker.Stop()

	for {
		select {
		case event := <-c.events:
			c.broadcast(EventPayload{Type: "lifecycle", Event: event})

		case <-ticker.C:
			state := StatePayload{
				Type:   "state",
				Motors: make(map[string]servo.MotorState),
			}
			for _, m := range c.Registry.Motors() {
				state.Motors[m.Device()] = m.State()
			}
			c.broadcast(state)
		}
	}
}

func (c *Conductor) broadcast(payload interface{}) {
	buf, err := json.Marshal(payload)
	if err != nil {
		log.Println("marshal broadcast:", err)
		return
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	alive := c.clients[:0]
	for _, conn := range c.clients {
		if err := conn.WriteMessage(websocket.TextMessage, buf); err != nil {
			log.Println("dropping client:", err)
			conn.Close()
			continue
		}
		alive = append(alive, conn)
	}
	c.clients = alive
}

// ProcessCommand routes an inbound command through the motor attribute
// table, so clients get exactly the same validation as the REST surface.
func (c *Conductor) ProcessCommand(cmd Cmd) error {
	m, ok := c.Registry.Get(cmd.Name)
	if !ok {
		return deverrors.InvalidArgumentError{Attr: "name", Value: cmd.Name}
	}

	attr, ok := servo.LookupAttribute(cmd.Cmd)
	if !ok || !attr.Writable {
		return deverrors.InvalidArgumentError{Attr: "cmd", Value: cmd.Cmd}
	}

	return attr.Store(m, cmd.Value)
}
