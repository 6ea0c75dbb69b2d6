// Package canbus provides the SocketCAN transport used to talk to servo
// controller nodes. Frames carry a 16-bit command in the first two data
// bytes, leaving six bytes of payload.
package canbus

import (
	"encoding/binary"
	"errors"
)

const (
	frameLength   = 16
	maxDataLength = 6 // two data bytes of each frame carry the command

	canEFFFlag uint32 = 0x80000000
	canEFFMask uint32 = 0x1fffffff
)

var ErrDataTooLong = errors.New("data length exceeds 6 bytes")

// Msg is a single command frame exchanged with a controller node.
type Msg struct {
	ID   uint32 // node ID this is being issued for
	Cmd  uint16 // command being issued in this message
	Data []byte // raw payload up to six bytes. DLC is taken from len(Data).
}

// Interface is the transport capability consumed by controller nodes.
type Interface interface {
	AddListener(nodeID uint32, rx chan Msg)
	SendMsg(msg Msg) error
	Close() error
}

func (msg *Msg) marshal() (raw []byte, err error) {
	if len(msg.Data) > maxDataLength {
		return nil, ErrDataTooLong
	}

	raw = make([]byte, frameLength)
	binary.LittleEndian.PutUint32(raw[0:4], msg.ID&canEFFMask|canEFFFlag)
	raw[4] = byte(len(msg.Data) + 2)
	binary.LittleEndian.PutUint16(raw[8:10], msg.Cmd)
	copy(raw[10:], msg.Data)

	return raw, nil
}

// unmarshal decodes a raw frame. Frames that are not part of the node
// protocol decode to nil and are dropped by the reader.
func unmarshal(raw []byte) (msg *Msg) {
	if len(raw) < frameLength {
		return nil
	}

	oid := binary.LittleEndian.Uint32(raw[0:4])
	if oid&canEFFFlag == 0 {
		return nil
	}

	dlc := raw[4]
	if dlc < 2 || dlc > 2+maxDataLength {
		return nil
	}

	msg = &Msg{
		ID:  oid & canEFFMask,
		Cmd: binary.LittleEndian.Uint16(raw[8:10]),
	}
	msg.Data = raw[10 : 8+dlc]

	return msg
}
