// Package cannode drives servo controller nodes attached over CAN. A node
// exposes up to 16 output channels; each channel is wired into the servo
// class as its own Driver.
package cannode

import (
	"fmt"
	"sync"

	"github.com/CodedInternet/goservod/canbus"
	"github.com/Masterminds/semver"
)

// NodeVersion is the firmware constraint a node must satisfy before any
// servo command is issued to it.
const NodeVersion = "~0.1.0"

type Node struct {
	id  uint32
	bus canbus.Interface

	lock       sync.Mutex // guards bus writes and the pending map
	pendingCmd map[uint16]*command
	rx         chan canbus.Msg
}

// NewNode attaches to a controller node and verifies its firmware version
// against NodeVersion. A firmware reporting "DEV" is a direct development
// build and is accepted as-is.
func NewNode(bus canbus.Interface, id uint32) (n *Node, err error) {
	n = &Node{
		id:         id,
		bus:        bus,
		pendingCmd: make(map[uint16]*command),
		rx:         make(chan canbus.Msg),
	}

	go n.listen()

	resp, err := n.exec(canbus.Msg{ID: n.id, Cmd: cmdVersion})
	if err != nil {
		return nil, err
	}

	version := string(resp.Data)
	if version == "DEV" {
		// TODO: require a config flag before accepting dev firmware
		return n, nil
	}

	semVer, err := semver.NewVersion(version)
	if err != nil {
		return nil, fmt.Errorf("unable to use node %d: unrecognised version %q", id, version)
	}

	constraint, err := semver.NewConstraint(NodeVersion)
	if err != nil {
		return nil, err
	}

	if !constraint.Check(semVer) {
		return nil, fmt.Errorf("unable to use node %d: received version %s - require %s", id, version, NodeVersion)
	}

	return n, nil
}

func (n *Node) send(msg canbus.Msg) error {
	n.lock.Lock()
	defer n.lock.Unlock()

	return n.bus.SendMsg(msg)
}

func (n *Node) exec(msg canbus.Msg) (canbus.Msg, error) {
	c := &command{node: n, msg: msg}
	return c.process()
}

func (n *Node) addPending(c *command) {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.pendingCmd[ackKey(c.msg)] = c
}

func (n *Node) removePending(c *command) {
	n.lock.Lock()
	defer n.lock.Unlock()
	delete(n.pendingCmd, ackKey(c.msg))
}

// listen routes frames coming back from the node to the command waiting on
// them. Responses nobody is waiting for any more are dropped.
func (n *Node) listen() {
	n.bus.AddListener(n.id, n.rx)

	for msg := range n.rx {
		n.lock.Lock()
		c, ok := n.pendingCmd[ackKey(msg)]
		n.lock.Unlock()

		if ok {
			c.Ack(msg)
		}
	}
}
