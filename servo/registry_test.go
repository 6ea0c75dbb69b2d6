package servo

import (
	"errors"
	"testing"

	deverrors "github.com/CodedInternet/goservod/servo/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRegister(t *testing.T) {
	Convey("registration needs a driver, parent and port", t, func() {
		r := NewRegistry()

		_, err := r.Register(nil, "servod", "test:out1")
		So(err, ShouldEqual, ErrNoDriver)

		_, err = r.Register(&MockDriver{name: "mock-servo"}, "", "test:out1")
		So(err, ShouldEqual, ErrNoParent)

		_, err = r.Register(&MockDriver{name: "mock-servo"}, "servod", "")
		So(err, ShouldEqual, ErrNoPort)
	})

	Convey("a registered motor carries the class defaults", t, func() {
		r := NewRegistry()
		m, err := r.Register(&MockDriver{name: "mock-servo"}, "servod", "test:out1")
		So(err, ShouldBeNil)

		So(m.Name(), ShouldEqual, "mock-servo")
		So(m.PortName(), ShouldEqual, "test:out1")
		So(m.MinPulse(), ShouldEqual, 600)
		So(m.MidPulse(), ShouldEqual, 1500)
		So(m.MaxPulse(), ShouldEqual, 2400)
	})

	Convey("device names increment per process, not per port", t, func() {
		r := NewRegistry()
		m0, _ := r.Register(&MockDriver{name: "mock-servo"}, "servod", "test:out1")
		m1, _ := r.Register(&MockDriver{name: "mock-servo"}, "servod", "test:out2")

		So(m0.Device(), ShouldEqual, "motor0")
		So(m1.Device(), ShouldEqual, "motor1")

		got, ok := r.Get("motor1")
		So(ok, ShouldBeTrue)
		So(got, ShouldEqual, m1)
	})

	Convey("the initial command is derived from the raw reading", t, func() {
		r := NewRegistry()

		Convey("an idle output registers floating", func() {
			m, err := r.Register(&MockDriver{name: "mock-servo"}, "servod", "test:out1")
			So(err, ShouldBeNil)
			So(m.Command(), ShouldEqual, CommandFloat)
		})

		Convey("a driven output registers running", func() {
			m, err := r.Register(&MockDriver{name: "mock-servo", raw: 1800}, "servod", "test:out1")
			So(err, ShouldBeNil)
			So(m.Command(), ShouldEqual, CommandRun)
		})

		Convey("a driver failure aborts registration", func() {
			driver := &MockDriver{name: "mock-servo", getErr: errors.New("bus timeout")}
			_, err := r.Register(driver, "servod", "test:out1")
			So(err, ShouldEqual, driver.getErr)
		})
	})

	Convey("lifecycle events are emitted to listeners", t, func() {
		r := NewRegistry()
		events := make(chan Event, 4)
		r.AddListener(events)

		m, err := r.Register(&MockDriver{name: "mock-servo"}, "servod", "test:out1")
		So(err, ShouldBeNil)

		event := <-events
		So(event.Type, ShouldEqual, MotorRegistered)
		So(event.Device, ShouldEqual, "motor0")
		So(event.Name, ShouldEqual, "mock-servo")
		So(event.PortName, ShouldEqual, "test:out1")

		So(r.Unregister(m), ShouldBeNil)
		event = <-events
		So(event.Type, ShouldEqual, MotorUnregistered)
		So(event.Device, ShouldEqual, "motor0")
	})
}

func TestUnregister(t *testing.T) {
	Convey("unregistering releases the motor", t, func() {
		r := NewRegistry()
		m, _ := r.Register(&MockDriver{name: "mock-servo"}, "servod", "test:out1")

		So(r.Unregister(m), ShouldBeNil)
		_, ok := r.Get("motor0")
		So(ok, ShouldBeFalse)

		Convey("unregistering twice fails", func() {
			So(r.Unregister(m), ShouldNotBeNil)
		})

		Convey("all further operations fail rather than silently succeed", func() {
			So(m.SetPosition(10), ShouldHaveSameTypeAs, deverrors.RemovedError{})
			So(m.SetCommand(CommandRun), ShouldHaveSameTypeAs, deverrors.RemovedError{})
			So(m.SetPolarity(PolarityInverted), ShouldHaveSameTypeAs, deverrors.RemovedError{})
			So(m.SetMinPulse(650), ShouldHaveSameTypeAs, deverrors.RemovedError{})
			_, err := m.Position()
			So(err, ShouldHaveSameTypeAs, deverrors.RemovedError{})
			_, err = m.Rate()
			So(err, ShouldHaveSameTypeAs, deverrors.RemovedError{})
		})
	})
}
