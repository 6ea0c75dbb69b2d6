package servo

import (
	"strconv"
	"sync"

	deverrors "github.com/CodedInternet/goservod/servo/errors"
)

// Pulse bounds in milliseconds. Each attribute is validated only against its
// own fixed range; the cross-field ordering min < mid < max is the caller's
// responsibility, matching the reference controller behaviour.
const (
	MinPulseLower = 300
	MinPulseUpper = 700
	MidPulseLower = 1300
	MidPulseUpper = 1700
	MaxPulseLower = 2300
	MaxPulseUpper = 2700

	DefaultMinPulse = 600
	DefaultMidPulse = 1500
	DefaultMaxPulse = 2400
)

// Polarity controls the sign of the position attribute. Inverted polarity
// causes -100 to correspond to the maximum pulse and 100 to the minimum.
type Polarity int

const (
	PolarityNormal Polarity = iota
	PolarityInverted
)

var polarityValues = []string{"normal", "inverted"}

func (p Polarity) String() string {
	return polarityValues[p]
}

// ParsePolarity converts the textual attribute form into a Polarity.
func ParsePolarity(value string) (Polarity, error) {
	for i, v := range polarityValues {
		if v == value {
			return Polarity(i), nil
		}
	}
	return 0, deverrors.InvalidArgumentError{Attr: "polarity", Value: value}
}

// Command determines whether the motor is actively driven. Run drives the
// motor to the stored position; Float removes drive from the output.
type Command int

const (
	CommandRun Command = iota
	CommandFloat
)

var commandValues = []string{"run", "float"}

func (c Command) String() string {
	return commandValues[c]
}

// ParseCommand converts the textual attribute form into a Command.
func ParseCommand(value string) (Command, error) {
	for i, v := range commandValues {
		if v == value {
			return Command(i), nil
		}
	}
	return 0, deverrors.InvalidArgumentError{Attr: "command", Value: value}
}

// Motor is a single registered servo motor. All mutable state is guarded by
// one mutex per motor; every public operation is atomic end-to-end including
// the driver call it may trigger, so concurrent callers on the same motor
// serialize while motors on different ports do not contend.
//
// Driver failures propagate to the caller unchanged and are never retried.
// Operations that both mutate stored state and call the driver update the
// stored fields first and do not roll them back on failure.
type Motor struct {
	device   string // assigned class name, e.g. "motor0"
	name     string // driver-reported identity
	portName string
	driver   Driver

	lock     sync.Mutex
	minPulse int
	midPulse int
	maxPulse int
	polarity Polarity
	command  Command
	position int
	removed  bool
}

// MotorState is a snapshot of a motor's stored state, suitable for
// broadcasting to clients. Position is the last commanded percentage, not a
// fresh driver reading.
type MotorState struct {
	Device   string `json:"device"`
	Name     string `json:"name"`
	PortName string `json:"port_name"`
	MinPulse int    `json:"min_pulse_ms"`
	MidPulse int    `json:"mid_pulse_ms"`
	MaxPulse int    `json:"max_pulse_ms"`
	Command  string `json:"command"`
	Polarity string `json:"polarity"`
	Position int    `json:"position"`
}

// Device returns the process-unique class name assigned at registration.
func (m *Motor) Device() string {
	return m.device
}

// Name returns the driver identity string.
func (m *Motor) Name() string {
	return m.name
}

// PortName returns the physical port label the motor is connected to.
func (m *Motor) PortName() string {
	return m.portName
}

func (m *Motor) MinPulse() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.minPulse
}

func (m *Motor) MidPulse() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.midPulse
}

func (m *Motor) MaxPulse() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.maxPulse
}

func (m *Motor) Polarity() Polarity {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.polarity
}

func (m *Motor) Command() Command {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.command
}

// SetMinPulse stores the pulse size in ms that drives the servo to its
// minimum position. The new bound only affects the next position write or
// read; the motor is not moved retroactively.
func (m *Motor) SetMinPulse(value int) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.removed {
		return deverrors.RemovedError{Device: m.device}
	}
	if value < MinPulseLower || value > MinPulseUpper {
		return deverrors.InvalidArgumentError{Attr: "min_pulse_ms", Value: strconv.Itoa(value)}
	}
	m.minPulse = value
	return nil
}

// SetMidPulse stores the pulse size in ms that drives the servo to its mid
// position. On a continuous rotation servo this is the neutral value.
func (m *Motor) SetMidPulse(value int) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.removed {
		return deverrors.RemovedError{Device: m.device}
	}
	if value < MidPulseLower || value > MidPulseUpper {
		return deverrors.InvalidArgumentError{Attr: "mid_pulse_ms", Value: strconv.Itoa(value)}
	}
	m.midPulse = value
	return nil
}

// SetMaxPulse stores the pulse size in ms that drives the servo to its
// maximum position.
func (m *Motor) SetMaxPulse(value int) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.removed {
		return deverrors.RemovedError{Device: m.device}
	}
	if value < MaxPulseLower || value > MaxPulseUpper {
		return deverrors.InvalidArgumentError{Attr: "max_pulse_ms", Value: strconv.Itoa(value)}
	}
	m.maxPulse = value
	return nil
}

// SetPolarity stores the new polarity and, when it actually changes,
// re-applies the current position so a running motor swings to the mirrored
// pulse. The polarity field is updated before the driver call and is not
// rolled back if that call fails.
func (m *Motor) SetPolarity(polarity Polarity) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.removed {
		return deverrors.RemovedError{Device: m.device}
	}
	if m.polarity == polarity {
		return nil
	}
	m.polarity = polarity
	return m.applyPosition(m.position)
}

// SetCommand switches the motor between run and float. Switching to run
// drives the motor to the stored position; switching to float instructs the
// driver to assume its neutral state without touching the stored percentage.
// Self-transitions are no-ops. The command field is updated before the
// driver call and is not rolled back if that call fails.
func (m *Motor) SetCommand(command Command) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.removed {
		return deverrors.RemovedError{Device: m.device}
	}
	if m.command == command {
		return nil
	}
	m.command = command
	if command == CommandRun {
		return m.applyPosition(m.position)
	}
	return m.driver.SetPosition(0)
}

// SetPosition validates and stores a percentage position in [-100,100].
// While running the driver is commanded immediately; while floating the
// value is recorded to take effect on the next run transition.
func (m *Motor) SetPosition(position int) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.removed {
		return deverrors.RemovedError{Device: m.device}
	}
	if position < -100 || position > 100 {
		return deverrors.InvalidArgumentError{Attr: "position", Value: strconv.Itoa(position)}
	}
	if m.position == position {
		return nil
	}
	return m.applyPosition(position)
}

// applyPosition records the requested percentage and, when the motor is
// running, translates it into the pulse domain and commands the driver.
// Lock must be held.
func (m *Motor) applyPosition(position int) error {
	m.position = position

	if m.command != CommandRun {
		return nil
	}

	if m.polarity == PolarityInverted {
		position = -position
	}

	var pulse int
	if position > 0 {
		pulse = Scale(0, 100, m.midPulse, m.maxPulse, position)
	} else {
		pulse = Scale(-100, 0, m.minPulse, m.midPulse, position)
	}
	return m.driver.SetPosition(pulse)
}

// Position reads the current position as a percentage. A raw driver reading
// of 0 means the output is idle, in which case the last commanded value is
// reported instead.
func (m *Motor) Position() (int, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.removed {
		return 0, deverrors.RemovedError{Device: m.device}
	}

	raw, err := m.driver.GetPosition()
	if err != nil {
		return 0, err
	}

	switch {
	case raw == 0:
		return m.position, nil
	case raw < m.midPulse:
		return Scale(m.minPulse, m.midPulse, -100, 0, raw), nil
	default:
		return Scale(m.midPulse, m.maxPulse, 0, 100, raw), nil
	}
}

// Rate reads the travel rate from the driver. Fails with NotSupportedError
// if the driver does not implement the rate capability.
func (m *Motor) Rate() (int, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.removed {
		return 0, deverrors.RemovedError{Device: m.device}
	}
	rd, ok := m.driver.(RateDriver)
	if !ok {
		return 0, deverrors.NotSupportedError{Op: "rate"}
	}
	return rd.Rate()
}

// SetRate passes a travel rate through to the driver. Fails with
// NotSupportedError if the driver does not implement the rate capability,
// independent of any other validation.
func (m *Motor) SetRate(value int) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.removed {
		return deverrors.RemovedError{Device: m.device}
	}
	rd, ok := m.driver.(RateDriver)
	if !ok {
		return deverrors.NotSupportedError{Op: "rate"}
	}
	return rd.SetRate(value)
}

// State returns a snapshot of the stored state without touching the driver.
func (m *Motor) State() MotorState {
	m.lock.Lock()
	defer m.lock.Unlock()

	return MotorState{
		Device:   m.device,
		Name:     m.name,
		PortName: m.portName,
		MinPulse: m.minPulse,
		MidPulse: m.midPulse,
		MaxPulse: m.maxPulse,
		Command:  m.command.String(),
		Polarity: m.polarity.String(),
		Position: m.position,
	}
}
