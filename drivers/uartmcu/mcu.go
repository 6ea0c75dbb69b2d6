// Package uartmcu drives servo controller boards that sit behind a UART
// bridge MCU. The bridge speaks a simple line protocol: "M<addr> <reg>"
// reads a register, "M<addr> <reg> <value>" writes one.
package uartmcu

import (
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/serial"
)

// Bridge registers per servo controller.
const (
	regRate     = 0 // travel rate limit in ms
	regPosition = 3 // current pulse reading
	regGoto     = 4 // pulse setpoint
)

type MCU struct {
	port serial.Port
	lock sync.Mutex
}

func Open(ttyName string) (mcu *MCU, err error) {
	port, err := serial.Open(&serial.Config{
		Address:  ttyName,
		BaudRate: 115200,
		Timeout:  500 * time.Millisecond,
	})
	if err != nil {
		return nil, err
	}

	return &MCU{port: port}, nil
}

func (mcu *MCU) Close() error {
	return mcu.port.Close()
}

// Put writes a register on the controller at i2cAddr.
func (mcu *MCU) Put(i2cAddr int, reg uint8, value int32) error {
	// keep as little processing inside the critical section as possible
	buf := []byte(fmt.Sprintf("M%d %d %d\n", i2cAddr, reg, value))

	mcu.lock.Lock()
	defer mcu.lock.Unlock()

	_, err := mcu.port.Write(buf)
	return err
}

// Get reads a register from the controller at i2cAddr. The write and read
// happen inside one critical section so concurrent callers cannot interleave
// their transactions.
func (mcu *MCU) Get(i2cAddr int, reg uint8) (value int32, err error) {
	buf := []byte(fmt.Sprintf("M%d %d\n", i2cAddr, reg))
	resp := make([]byte, 32)

	mcu.lock.Lock()
	defer mcu.lock.Unlock()

	if _, err = mcu.port.Write(buf); err != nil {
		return 0, err
	}

	n, err := mcu.port.Read(resp)
	if err != nil {
		return 0, err
	}

	if _, err = fmt.Sscanf(string(resp[:n]), "%d", &value); err != nil {
		return 0, fmt.Errorf("malformed response from bridge: %w", err)
	}
	return value, nil
}
