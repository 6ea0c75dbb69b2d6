package cannode

import (
	"encoding/binary"
	"fmt"

	"github.com/CodedInternet/goservod/canbus"
)

// Servo is one output channel on a controller node. It implements the servo
// class Driver and RateDriver capabilities; pulse values travel on the wire
// as little-endian int16 following the channel index byte.
type Servo struct {
	node  *Node
	index uint8
	name  string
}

// Servo returns a driver for one of the node's output channels. An empty
// name falls back to a generated identity.
func (n *Node) Servo(index uint8, name string) *Servo {
	if name == "" {
		name = fmt.Sprintf("cannode%d:sv%d", n.id, index)
	}
	return &Servo{
		node:  n,
		index: index,
		name:  name,
	}
}

func (s *Servo) Name() string {
	return s.name
}

func (s *Servo) GetPosition() (int, error) {
	resp, err := s.node.exec(canbus.Msg{
		ID:   s.node.id,
		Cmd:  cmdGetPos,
		Data: []byte{s.index},
	})
	if err != nil {
		return 0, err
	}
	return decodeValue(s.node.id, resp)
}

func (s *Servo) SetPosition(pulse int) error {
	_, err := s.node.exec(canbus.Msg{
		ID:   s.node.id,
		Cmd:  cmdSetPos,
		Data: encodeValue(s.index, pulse),
	})
	return err
}

func (s *Servo) Rate() (int, error) {
	resp, err := s.node.exec(canbus.Msg{
		ID:   s.node.id,
		Cmd:  cmdGetRate,
		Data: []byte{s.index},
	})
	if err != nil {
		return 0, err
	}
	return decodeValue(s.node.id, resp)
}

func (s *Servo) SetRate(value int) error {
	_, err := s.node.exec(canbus.Msg{
		ID:   s.node.id,
		Cmd:  cmdSetRate,
		Data: encodeValue(s.index, value),
	})
	return err
}

func encodeValue(index uint8, value int) []byte {
	data := make([]byte, 3)
	data[0] = index
	binary.LittleEndian.PutUint16(data[1:3], uint16(int16(value)))
	return data
}

func decodeValue(nodeID uint32, resp canbus.Msg) (int, error) {
	if len(resp.Data) < 3 {
		return 0, fmt.Errorf("short response from node %d", nodeID)
	}
	return int(int16(binary.LittleEndian.Uint16(resp.Data[1:3]))), nil
}
