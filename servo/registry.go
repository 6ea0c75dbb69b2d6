package servo

import (
	"errors"
	"fmt"
	"log"
	"sync"
)

var (
	ErrNoDriver = errors.New("a driver is required to register a motor")
	ErrNoParent = errors.New("a parent identity is required to register a motor")
	ErrNoPort   = errors.New("a port name is required to register a motor")
)

// EventType distinguishes lifecycle notifications.
type EventType string

const (
	MotorRegistered   EventType = "registered"
	MotorUnregistered EventType = "unregistered"
)

// Event is a lifecycle notification emitted when a driver registers or
// unregisters a motor. It carries the same identity fields the class exposes
// as attributes so clients can react without a follow-up read.
type Event struct {
	Type     EventType `json:"event"`
	Device   string    `json:"device"`
	Name     string    `json:"name"`
	PortName string    `json:"port_name"`
}

// Registry owns the set of live motors. Device names are assigned from a
// process-unique sequential counter guarded by the registry lock; the index
// is purely for display and unrelated to which port the motor is plugged
// in to.
type Registry struct {
	lock      sync.Mutex
	nextID    int
	motors    map[string]*Motor
	listeners []chan<- Event
}

func NewRegistry() *Registry {
	return &Registry{
		motors: make(map[string]*Motor),
	}
}

// AddListener subscribes a channel to lifecycle events. Events are dropped
// rather than blocking registration when the listener cannot keep up, so
// callers should provide a buffered channel.
func (r *Registry) AddListener(events chan<- Event) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.listeners = append(r.listeners, events)
}

// Register constructs a live Motor for the given driver, installs the
// default pulse configuration and derives the initial command from the
// driver's current raw reading: a nonzero pulse is taken to mean the output
// was left running. This conflates a controller that was genuinely left
// driving with one sitting at a commanded position while floating; the raw
// reading alone cannot distinguish the two, so the heuristic is preserved
// as-is from the reference controller.
func (r *Registry) Register(driver Driver, parent, portName string) (*Motor, error) {
	if driver == nil {
		return nil, ErrNoDriver
	}
	if parent == "" {
		return nil, ErrNoParent
	}
	if portName == "" {
		return nil, ErrNoPort
	}

	raw, err := driver.GetPosition()
	if err != nil {
		return nil, err
	}
	command := CommandFloat
	if raw != 0 {
		command = CommandRun
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	m := &Motor{
		device:   fmt.Sprintf("motor%d", r.nextID),
		name:     driver.Name(),
		portName: portName,
		driver:   driver,
		minPulse: DefaultMinPulse,
		midPulse: DefaultMidPulse,
		maxPulse: DefaultMaxPulse,
		command:  command,
	}
	r.nextID++
	r.motors[m.device] = m

	log.Printf("%s: bound to device '%s'", m.device, parent)
	r.emit(Event{
		Type:     MotorRegistered,
		Device:   m.device,
		Name:     m.name,
		PortName: m.portName,
	})

	return m, nil
}

// Unregister releases a motor. Any further operation on the instance fails
// with RemovedError.
func (r *Registry) Unregister(m *Motor) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.motors[m.device]; !ok {
		return fmt.Errorf("motor %s is not registered", m.device)
	}
	delete(r.motors, m.device)

	m.lock.Lock()
	m.removed = true
	m.lock.Unlock()

	log.Printf("%s: unregistered", m.device)
	r.emit(Event{
		Type:     MotorUnregistered,
		Device:   m.device,
		Name:     m.name,
		PortName: m.portName,
	})

	return nil
}

// Get looks up a live motor by its assigned device name.
func (r *Registry) Get(device string) (*Motor, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	m, ok := r.motors[device]
	return m, ok
}

// Devices returns the device names of all live motors.
func (r *Registry) Devices() []string {
	r.lock.Lock()
	defer r.lock.Unlock()

	devices := make([]string, 0, len(r.motors))
	for device := range r.motors {
		devices = append(devices, device)
	}
	return devices
}

// Motors returns all live motors.
func (r *Registry) Motors() []*Motor {
	r.lock.Lock()
	defer r.lock.Unlock()

	motors := make([]*Motor, 0, len(r.motors))
	for _, m := range r.motors {
		motors = append(motors, m)
	}
	return motors
}

// emit delivers an event to every listener. Lock must be held.
func (r *Registry) emit(event Event) {
	for _, c := range r.listeners {
		select {
		case c <- event:
		default:
		}
	}
}
