package errors

import "fmt"

// InvalidArgumentError indicates a value outside its documented bound or
// unparseable textual input. Raised before any state has been mutated.
type InvalidArgumentError struct {
	Attr  string
	Value string
}

func (err InvalidArgumentError) Error() string {
	if len(err.Attr) == 0 {
		err.Attr = "UNKNOWN"
	}

	return fmt.Sprintf("invalid value %q for %s", err.Value, err.Attr)
}

// NotSupportedError indicates the underlying driver does not implement an
// optional capability.
type NotSupportedError struct {
	Op string
}

func (err NotSupportedError) Error() string {
	return fmt.Sprintf("driver does not support %s", err.Op)
}

// RemovedError indicates an operation on a motor whose driver has already
// unregistered.
type RemovedError struct {
	Device string
}

func (err RemovedError) Error() string {
	return fmt.Sprintf("motor %s has been unregistered", err.Device)
}
