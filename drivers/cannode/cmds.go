package cannode

import (
	"errors"
	"time"

	"github.com/CodedInternet/goservod/canbus"
)

const (
	cmdAllStop = 0x0000
	cmdGetPos  = 0x0040
	cmdSetPos  = 0x0050
	cmdGetRate = 0x0060
	cmdSetRate = 0x0070
	cmdVersion = 0x03E0

	maxRetries = 5
	ackTimeout = 5 * time.Millisecond
)

var (
	ErrMaxRetries = errors.New("maxRetries reached while attempting to send")
	ErrSendAbort  = errors.New("send has been aborted")
)

// ackKey identifies which in-flight command a frame acknowledges. Servo
// channel commands carry their output index in the first payload byte, so
// commands to different channels ack independently.
func ackKey(msg canbus.Msg) uint16 {
	switch msg.Cmd {
	case cmdGetPos, cmdSetPos, cmdGetRate, cmdSetRate:
		if len(msg.Data) > 0 {
			return msg.Cmd | uint16(msg.Data[0])
		}
	}
	return msg.Cmd
}

type command struct {
	node  *Node
	msg   canbus.Msg
	ack   chan canbus.Msg
	abort chan struct{}
}

// process sends the command and waits for an acknowledgement from the node,
// resending on timeout until maxRetries sends have gone unanswered. Can be
// canceled by closing the abort channel. Returns the node's response for
// upstream decoding should it be necessary.
func (c *command) process() (resp canbus.Msg, err error) {
	if c.ack == nil {
		c.ack = make(chan canbus.Msg)
	}
	if c.abort == nil {
		c.abort = make(chan struct{})
	}

	// register with the node before the first send so an immediate
	// response has somewhere to land
	c.node.addPending(c)
	defer c.node.removePending(c)

	if err = c.node.send(c.msg); err != nil {
		return resp, err
	}

	for i := 1; i < maxRetries; i++ {
		select {
		case resp = <-c.ack:
			return resp, nil

		case <-c.abort:
			return resp, ErrSendAbort

		case <-time.After(ackTimeout):
			if err = c.node.send(c.msg); err != nil {
				return resp, err
			}
		}
	}

	// we have exhausted maxRetries
	return resp, ErrMaxRetries
}

func (c *command) Abort() error {
	if c.abort == nil {
		return errors.New("send not yet attempted")
	}

	close(c.abort)
	return nil
}

func (c *command) Ack(msg canbus.Msg) {
	c.ack <- msg
}
