package servo

// ServodConfig describes the motors the daemon should bring up at start.
// Keys of the Motors map are port labels ("ev3-ports:out1", "sim0", ...)
// exposed through the port_name attribute.
type ServodConfig struct {
	Version int `yaml:"version"`
	Motors  map[string]MotorConfig
}

// MotorConfig selects and parameterizes a concrete driver for one motor.
type MotorConfig struct {
	// Driver selects the implementation: "simulated", "uartmcu" or
	// "cannode".
	Driver string `yaml:"driver"`

	// Name overrides the driver-reported identity string when set.
	Name string `yaml:"name,omitempty"`

	// Device is the transport device for hardware drivers: a tty path for
	// uartmcu, a CAN interface name for cannode.
	Device string `yaml:"device,omitempty"`

	// Address is the controller address on the transport: an I2C address
	// behind the uartmcu, a node ID on the CAN bus.
	Address uint32 `yaml:"address,omitempty"`

	// Index is the output channel on a multi-servo controller node.
	Index uint8 `yaml:"index,omitempty"`

	// Rate enables the optional rate capability where the driver supports
	// choosing, e.g. on the simulated driver.
	Rate bool `yaml:"rate,omitempty"`
}
