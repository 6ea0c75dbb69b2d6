package servo

import (
	"errors"
	"testing"

	deverrors "github.com/CodedInternet/goservod/servo/errors"
	. "github.com/smartystreets/goconvey/convey"
)

type MockDriver struct {
	name     string
	raw      int // returned by GetPosition
	lastSet  int
	setCount int
	getErr   error
	setErr   error
}

func (d *MockDriver) Name() string {
	return d.name
}

func (d *MockDriver) GetPosition() (int, error) {
	return d.raw, d.getErr
}

func (d *MockDriver) SetPosition(pulse int) error {
	if d.setErr != nil {
		return d.setErr
	}
	d.lastSet = pulse
	d.setCount++
	return nil
}

type MockRateDriver struct {
	*MockDriver
	rate int
}

func (d *MockRateDriver) Rate() (int, error) {
	return d.rate, nil
}

func (d *MockRateDriver) SetRate(value int) error {
	d.rate = value
	return nil
}

func newTestMotor(driver Driver, command Command) *Motor {
	return &Motor{
		device:   "motor0",
		name:     driver.Name(),
		portName: "test:out1",
		driver:   driver,
		minPulse: DefaultMinPulse,
		midPulse: DefaultMidPulse,
		maxPulse: DefaultMaxPulse,
		command:  command,
	}
}

func TestSetPosition(t *testing.T) {
	Convey("with a running motor", t, func() {
		driver := &MockDriver{name: "mock-servo"}
		m := newTestMotor(driver, CommandRun)

		Convey("valid positions are scaled into the pulse domain", func() {
			So(m.SetPosition(50), ShouldBeNil)
			So(driver.lastSet, ShouldEqual, 1950)

			So(m.SetPosition(100), ShouldBeNil)
			So(driver.lastSet, ShouldEqual, 2400)

			So(m.SetPosition(-100), ShouldBeNil)
			So(driver.lastSet, ShouldEqual, 600)

			So(m.SetPosition(0), ShouldBeNil)
			So(driver.lastSet, ShouldEqual, 1500)
		})

		Convey("out of range positions fail and leave state untouched", func() {
			So(m.SetPosition(50), ShouldBeNil)

			err := m.SetPosition(150)
			So(err, ShouldHaveSameTypeAs, deverrors.InvalidArgumentError{})
			So(m.position, ShouldEqual, 50)

			err = m.SetPosition(-101)
			So(err, ShouldHaveSameTypeAs, deverrors.InvalidArgumentError{})
			So(m.position, ShouldEqual, 50)
		})

		Convey("writing the stored value is a no-op", func() {
			So(m.SetPosition(50), ShouldBeNil)
			before := driver.setCount
			So(m.SetPosition(50), ShouldBeNil)
			So(driver.setCount, ShouldEqual, before)
		})

		Convey("a driver failure propagates but the percentage stays stored", func() {
			driver.setErr = errors.New("bus timeout")
			err := m.SetPosition(25)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "bus timeout")
			So(m.position, ShouldEqual, 25)
		})
	})

	Convey("with a floating motor the value is pre-staged", t, func() {
		driver := &MockDriver{name: "mock-servo"}
		m := newTestMotor(driver, CommandFloat)

		So(m.SetPosition(50), ShouldBeNil)
		So(driver.setCount, ShouldEqual, 0)
		So(m.position, ShouldEqual, 50)

		Convey("and applied on the next run transition", func() {
			So(m.SetCommand(CommandRun), ShouldBeNil)
			So(driver.lastSet, ShouldEqual, 1950)
		})
	})
}

func TestSetCommand(t *testing.T) {
	Convey("command transitions drive the hardware", t, func() {
		driver := &MockDriver{name: "mock-servo"}
		m := newTestMotor(driver, CommandRun)
		So(m.SetPosition(50), ShouldBeNil)

		Convey("run to float commands the driver neutral", func() {
			So(m.SetCommand(CommandFloat), ShouldBeNil)
			So(driver.lastSet, ShouldEqual, 0)
			So(m.position, ShouldEqual, 50)

			Convey("float to run reapplies the stored position", func() {
				So(m.SetCommand(CommandRun), ShouldBeNil)
				So(driver.lastSet, ShouldEqual, 1950)
			})
		})

		Convey("self transitions are no-ops", func() {
			before := driver.setCount
			So(m.SetCommand(CommandRun), ShouldBeNil)
			So(driver.setCount, ShouldEqual, before)
		})

		Convey("the command field is updated even when the driver fails", func() {
			driver.setErr = errors.New("bus timeout")
			err := m.SetCommand(CommandFloat)
			So(err, ShouldNotBeNil)
			So(m.Command(), ShouldEqual, CommandFloat)
		})
	})
}

func TestSetPolarity(t *testing.T) {
	Convey("inverted polarity negates the requested percentage", t, func() {
		driver := &MockDriver{name: "mock-servo"}
		m := newTestMotor(driver, CommandRun)
		m.polarity = PolarityInverted

		So(m.SetPosition(40), ShouldBeNil)
		// -40 through the negative half of the scale
		So(driver.lastSet, ShouldEqual, 1140)
	})

	Convey("changing polarity on a running motor swings it", t, func() {
		driver := &MockDriver{name: "mock-servo"}
		m := newTestMotor(driver, CommandRun)
		So(m.SetPosition(40), ShouldBeNil)
		So(driver.lastSet, ShouldEqual, 1860)

		So(m.SetPolarity(PolarityInverted), ShouldBeNil)
		So(driver.lastSet, ShouldEqual, 1140)

		Convey("setting the same polarity again is a no-op", func() {
			before := driver.setCount
			So(m.SetPolarity(PolarityInverted), ShouldBeNil)
			So(driver.setCount, ShouldEqual, before)
		})
	})

	Convey("changing polarity on a floating motor records it silently", t, func() {
		driver := &MockDriver{name: "mock-servo"}
		m := newTestMotor(driver, CommandFloat)

		So(m.SetPolarity(PolarityInverted), ShouldBeNil)
		So(driver.setCount, ShouldEqual, 0)
		So(m.Polarity(), ShouldEqual, PolarityInverted)
	})
}

func TestPulseBounds(t *testing.T) {
	Convey("each bound validates against its own fixed range", t, func() {
		driver := &MockDriver{name: "mock-servo"}
		m := newTestMotor(driver, CommandRun)

		Convey("out of range values fail and leave the field unchanged", func() {
			err := m.SetMinPulse(250)
			So(err, ShouldHaveSameTypeAs, deverrors.InvalidArgumentError{})
			So(m.MinPulse(), ShouldEqual, DefaultMinPulse)

			err = m.SetMidPulse(1800)
			So(err, ShouldHaveSameTypeAs, deverrors.InvalidArgumentError{})
			So(m.MidPulse(), ShouldEqual, DefaultMidPulse)

			err = m.SetMaxPulse(2800)
			So(err, ShouldHaveSameTypeAs, deverrors.InvalidArgumentError{})
			So(m.MaxPulse(), ShouldEqual, DefaultMaxPulse)
		})

		Convey("valid values are stored", func() {
			So(m.SetMinPulse(650), ShouldBeNil)
			So(m.SetMidPulse(1400), ShouldBeNil)
			So(m.SetMaxPulse(2500), ShouldBeNil)
			So(m.MinPulse(), ShouldEqual, 650)
			So(m.MidPulse(), ShouldEqual, 1400)
			So(m.MaxPulse(), ShouldEqual, 2500)
		})

		Convey("a new bound does not move the motor until the next write", func() {
			So(m.SetPosition(100), ShouldBeNil)
			So(driver.lastSet, ShouldEqual, 2400)

			So(m.SetMaxPulse(2500), ShouldBeNil)
			So(driver.lastSet, ShouldEqual, 2400)

			So(m.SetPosition(50), ShouldBeNil)
			So(driver.lastSet, ShouldEqual, 2000)
		})
	})
}

func TestPosition(t *testing.T) {
	Convey("reading position scales the raw pulse back to a percentage", t, func() {
		driver := &MockDriver{name: "mock-servo"}
		m := newTestMotor(driver, CommandRun)

		driver.raw = 1950
		position, err := m.Position()
		So(err, ShouldBeNil)
		So(position, ShouldEqual, 50)

		driver.raw = 900
		position, err = m.Position()
		So(err, ShouldBeNil)
		So(position, ShouldEqual, -67)

		Convey("an idle output falls back to the stored percentage", func() {
			So(m.SetPosition(42), ShouldBeNil)
			driver.raw = 0
			position, err := m.Position()
			So(err, ShouldBeNil)
			So(position, ShouldEqual, 42)
		})

		Convey("driver errors propagate verbatim", func() {
			driver.getErr = errors.New("bus timeout")
			_, err := m.Position()
			So(err, ShouldEqual, driver.getErr)
		})
	})

	Convey("positions round-trip within scaling tolerance", t, func() {
		driver := &MockDriver{name: "mock-servo"}
		m := newTestMotor(driver, CommandRun)

		for want := -100; want <= 100; want++ {
			if want == m.position {
				continue // no-op write would leave a stale raw reading
			}
			So(m.SetPosition(want), ShouldBeNil)
			driver.raw = driver.lastSet
			got, err := m.Position()
			So(err, ShouldBeNil)
			So(got, ShouldAlmostEqual, want, 1)
		}
	})
}

func TestRate(t *testing.T) {
	Convey("drivers without the capability report not supported", t, func() {
		driver := &MockDriver{name: "mock-servo"}
		m := newTestMotor(driver, CommandRun)

		_, err := m.Rate()
		So(err, ShouldHaveSameTypeAs, deverrors.NotSupportedError{})
		So(m.SetRate(1000), ShouldHaveSameTypeAs, deverrors.NotSupportedError{})
	})

	Convey("rate calls pass through to a capable driver", t, func() {
		driver := &MockRateDriver{MockDriver: &MockDriver{name: "mock-servo"}}
		m := newTestMotor(driver, CommandRun)

		So(m.SetRate(1000), ShouldBeNil)
		rate, err := m.Rate()
		So(err, ShouldBeNil)
		So(rate, ShouldEqual, 1000)
	})
}

func TestParsers(t *testing.T) {
	Convey("textual enum values parse and print symmetrically", t, func() {
		command, err := ParseCommand("run")
		So(err, ShouldBeNil)
		So(command, ShouldEqual, CommandRun)
		So(command.String(), ShouldEqual, "run")

		command, err = ParseCommand("float")
		So(err, ShouldBeNil)
		So(command, ShouldEqual, CommandFloat)

		_, err = ParseCommand("coast")
		So(err, ShouldHaveSameTypeAs, deverrors.InvalidArgumentError{})

		polarity, err := ParsePolarity("inverted")
		So(err, ShouldBeNil)
		So(polarity, ShouldEqual, PolarityInverted)

		_, err = ParsePolarity("reversed")
		So(err, ShouldHaveSameTypeAs, deverrors.InvalidArgumentError{})
	})
}
