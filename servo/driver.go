// Package servo provides a uniform control interface for hobby type servo
// motors, regardless of which underlying controller produces the pulse
// signal. Concrete controllers plug in by implementing Driver and
// registering with a Registry; callers then command the motor as a
// percentage position and the package handles the translation into the
// controller's pulse domain.
package servo

// Driver is the capability a concrete servo controller must provide.
// Positions are raw pulse-domain values in milliseconds; by convention a
// reading or command of 0 means "not actively driven / assume neutral".
// Calls may block on hardware I/O; a hung driver call blocks its caller
// indefinitely.
type Driver interface {
	// Name reports the driver identity string, e.g. "ev3-servo".
	Name() string

	// GetPosition returns the raw pulse value the controller is currently
	// generating, or 0 if the output is idle.
	GetPosition() (int, error)

	// SetPosition commands the controller to the given pulse value.
	// A value of 0 instructs it to stop driving the output.
	SetPosition(pulse int) error
}

// RateDriver is an optional capability for controllers that can limit the
// speed at which the servo travels. Detected by type assertion on the
// motor's Driver.
type RateDriver interface {
	// Rate returns the time in milliseconds taken to travel half of the
	// full range of the servo.
	Rate() (int, error)

	// SetRate sets the travel rate in milliseconds.
	SetRate(value int) error
}
