package comms

import (
	"testing"

	"github.com/CodedInternet/goservod/servo"
	deverrors "github.com/CodedInternet/goservod/servo/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestProcessCommand(t *testing.T) {
	registry := servo.NewRegistry()
	driver := servo.NewSimulatedRateDriver("sim-servo")
	m, err := registry.Register(driver, "servod", "sim0")
	if err != nil {
		t.Fatal(err)
	}

	conductor := NewConductor(registry)

	Convey("commands write through the attribute table", t, func() {
		So(conductor.ProcessCommand(Cmd{Cmd: "command", Name: m.Device(), Value: "run"}), ShouldBeNil)
		So(m.Command(), ShouldEqual, servo.CommandRun)

		So(conductor.ProcessCommand(Cmd{Cmd: "position", Name: m.Device(), Value: "50"}), ShouldBeNil)
		pulse, _ := driver.GetPosition()
		So(pulse, ShouldEqual, 1950)

		So(conductor.ProcessCommand(Cmd{Cmd: "rate", Name: m.Device(), Value: "1000"}), ShouldBeNil)
		rate, _ := m.Rate()
		So(rate, ShouldEqual, 1000)
	})

	Convey("invalid commands are rejected", t, func() {
		err := conductor.ProcessCommand(Cmd{Cmd: "position", Name: "motor9", Value: "50"})
		So(err, ShouldHaveSameTypeAs, deverrors.InvalidArgumentError{})

		err = conductor.ProcessCommand(Cmd{Cmd: "warp", Name: m.Device(), Value: "9"})
		So(err, ShouldHaveSameTypeAs, deverrors.InvalidArgumentError{})

		// read-only attributes cannot be written
		err = conductor.ProcessCommand(Cmd{Cmd: "name", Name: m.Device(), Value: "x"})
		So(err, ShouldHaveSameTypeAs, deverrors.InvalidArgumentError{})

		err = conductor.ProcessCommand(Cmd{Cmd: "position", Name: m.Device(), Value: "150"})
		So(err, ShouldHaveSameTypeAs, deverrors.InvalidArgumentError{})
	})
}
