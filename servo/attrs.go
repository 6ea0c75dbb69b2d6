package servo

import (
	"strconv"

	deverrors "github.com/CodedInternet/goservod/servo/errors"
)

// Attribute is one named, typed, string-encoded accessor onto a Motor. The
// fixed attribute table mirrors the class's device attributes: external
// surfaces (REST, websocket commands, the dev shell) all funnel reads and
// writes through it so textual validation happens in exactly one place.
type Attribute struct {
	Name     string
	Writable bool
	Show     func(m *Motor) (string, error)
	Store    func(m *Motor, value string) error
}

func parseInt(attr, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, deverrors.InvalidArgumentError{Attr: attr, Value: value}
	}
	return n, nil
}

var attributes = []Attribute{
	{
		Name: "name",
		Show: func(m *Motor) (string, error) { return m.Name(), nil },
	},
	{
		Name: "port_name",
		Show: func(m *Motor) (string, error) { return m.PortName(), nil },
	},
	{
		Name:     "min_pulse_ms",
		Writable: true,
		Show: func(m *Motor) (string, error) {
			return strconv.Itoa(m.MinPulse()), nil
		},
		Store: func(m *Motor, value string) error {
			n, err := parseInt("min_pulse_ms", value)
			if err != nil {
				return err
			}
			return m.SetMinPulse(n)
		},
	},
	{
		Name:     "mid_pulse_ms",
		Writable: true,
		Show: func(m *Motor) (string, error) {
			return strconv.Itoa(m.MidPulse()), nil
		},
		Store: func(m *Motor, value string) error {
			n, err := parseInt("mid_pulse_ms", value)
			if err != nil {
				return err
			}
			return m.SetMidPulse(n)
		},
	},
	{
		Name:     "max_pulse_ms",
		Writable: true,
		Show: func(m *Motor) (string, error) {
			return strconv.Itoa(m.MaxPulse()), nil
		},
		Store: func(m *Motor, value string) error {
			n, err := parseInt("max_pulse_ms", value)
			if err != nil {
				return err
			}
			return m.SetMaxPulse(n)
		},
	},
	{
		Name:     "command",
		Writable: true,
		Show: func(m *Motor) (string, error) {
			return m.Command().String(), nil
		},
		Store: func(m *Motor, value string) error {
			command, err := ParseCommand(value)
			if err != nil {
				return err
			}
			return m.SetCommand(command)
		},
	},
	{
		Name:     "polarity",
		Writable: true,
		Show: func(m *Motor) (string, error) {
			return m.Polarity().String(), nil
		},
		Store: func(m *Motor, value string) error {
			polarity, err := ParsePolarity(value)
			if err != nil {
				return err
			}
			return m.SetPolarity(polarity)
		},
	},
	{
		Name:     "position",
		Writable: true,
		Show: func(m *Motor) (string, error) {
			position, err := m.Position()
			if err != nil {
				return "", err
			}
			return strconv.Itoa(position), nil
		},
		Store: func(m *Motor, value string) error {
			n, err := parseInt("position", value)
			if err != nil {
				return err
			}
			return m.SetPosition(n)
		},
	},
	{
		Name:     "rate",
		Writable: true,
		Show: func(m *Motor) (string, error) {
			rate, err := m.Rate()
			if err != nil {
				return "", err
			}
			return strconv.Itoa(rate), nil
		},
		Store: func(m *Motor, value string) error {
			n, err := parseInt("rate", value)
			if err != nil {
				return err
			}
			return m.SetRate(n)
		},
	},
}

// Attributes returns the fixed attribute table in declaration order.
func Attributes() []Attribute {
	return attributes
}

// LookupAttribute finds an attribute by name.
func LookupAttribute(name string) (Attribute, bool) {
	for _, attr := range attributes {
		if attr.Name == name {
			return attr, true
		}
	}
	return Attribute{}, false
}
