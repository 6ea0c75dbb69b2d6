package uartmcu

import "fmt"

// bridge is the subset of MCU the drivers use; tests substitute their own.
type bridge interface {
	Put(i2cAddr int, reg uint8, value int32) error
	Get(i2cAddr int, reg uint8) (int32, error)
}

// Servo is one controller behind the bridge, addressed by its I2C address.
type Servo struct {
	mcu  bridge
	addr int
	name string
}

// Servo returns a driver for the controller at addr. An empty name falls
// back to a generated identity. Controllers whose firmware implements the
// rate registers should be wrapped with RateServo instead.
func (mcu *MCU) Servo(addr int, name string) *Servo {
	return newServo(mcu, addr, name)
}

// RateServo returns a driver for a controller that also implements the
// travel rate registers.
func (mcu *MCU) RateServo(addr int, name string) *RateServo {
	return &RateServo{newServo(mcu, addr, name)}
}

func newServo(mcu bridge, addr int, name string) *Servo {
	if name == "" {
		name = fmt.Sprintf("uartmcu:m%d", addr)
	}
	return &Servo{
		mcu:  mcu,
		addr: addr,
		name: name,
	}
}

func (s *Servo) Name() string {
	return s.name
}

func (s *Servo) GetPosition() (int, error) {
	value, err := s.mcu.Get(s.addr, regPosition)
	return int(value), err
}

func (s *Servo) SetPosition(pulse int) error {
	return s.mcu.Put(s.addr, regGoto, int32(pulse))
}

// RateServo adds the optional rate capability on top of Servo.
type RateServo struct {
	*Servo
}

func (s *RateServo) Rate() (int, error) {
	value, err := s.mcu.Get(s.addr, regRate)
	return int(value), err
}

func (s *RateServo) SetRate(value int) error {
	return s.mcu.Put(s.addr, regRate, int32(value))
}
