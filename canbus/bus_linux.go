package canbus

import (
	"net"
	"sync"

	"golang.org/x/sys/unix"
)

// CANBus is a raw SocketCAN connection. Writes are serialized through the tx
// channel; inbound frames are routed to the listener registered for their
// node ID, or dropped when nobody is listening.
type CANBus struct {
	fd   int
	tx   chan []byte
	open bool

	lock sync.Mutex
	rx   map[uint32]chan Msg
}

func NewCANBus(ifname string) (bus *CANBus, err error) {
	iface, err := net.InterfaceByName(ifname)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return nil, err
	}

	if err = unix.Bind(fd, &unix.SockaddrCAN{Ifindex: iface.Index}); err != nil {
		unix.Close(fd)
		return nil, err
	}

	bus = &CANBus{
		fd:   fd,
		tx:   make(chan []byte),
		rx:   make(map[uint32]chan Msg),
		open: true,
	}

	go bus.reader()
	go bus.writer()

	return bus, nil
}

func (c *CANBus) AddListener(nodeID uint32, rx chan Msg) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.rx[nodeID] = rx
}

func (c *CANBus) SendMsg(msg Msg) error {
	raw, err := msg.marshal()
	if err != nil {
		return err
	}
	c.tx <- raw
	return nil
}

func (c *CANBus) Close() error {
	c.open = false
	return unix.Close(c.fd)
}

func (c *CANBus) writer() {
	for c.open {
		raw := <-c.tx
		unix.Write(c.fd, raw)
	}
}

func (c *CANBus) reader() {
	for c.open {
		raw := make([]byte, frameLength)
		if _, err := unix.Read(c.fd, raw); err != nil {
			continue
		}

		msg := unmarshal(raw)
		if msg == nil {
			continue
		}

		c.lock.Lock()
		rx, ok := c.rx[msg.ID]
		c.lock.Unlock()
		if ok {
			rx <- *msg
		}
	}
}
