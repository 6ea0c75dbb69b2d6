package canbus

import "sync"

// CANBus on darwin is a loopback used for development away from the robot:
// every frame written is echoed straight back to the sender's listener.
type CANBus struct {
	tx   chan []byte
	open bool

	lock sync.Mutex
	rx   map[uint32]chan Msg
}

func NewCANBus(ifname string) (bus *CANBus, err error) {
	bus = &CANBus{
		tx:   make(chan []byte),
		rx:   make(map[uint32]chan Msg),
		open: true,
	}

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
	return nil
}

func (c *CANBus) writer() {
	for c.open {
		raw := <-c.tx

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
