package servo

import "sync"

// SimulatedDriver is an in-memory Driver for the -sim daemon mode and for
// tests. It remembers the last commanded pulse and can be primed with an
// error to exercise failure paths.
type SimulatedDriver struct {
	name string

	lock  sync.Mutex
	pulse int

	// Err, when set, is returned by every driver call.
	Err error
}

func NewSimulatedDriver(name string) *SimulatedDriver {
	return &SimulatedDriver{name: name}
}

func (s *SimulatedDriver) Name() string {
	return s.name
}

func (s *SimulatedDriver) GetPosition() (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	return s.pulse, nil
}

func (s *SimulatedDriver) SetPosition(pulse int) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.pulse = pulse
	return nil
}

// SimulatedRateDriver extends SimulatedDriver with the optional rate
// capability.
type SimulatedRateDriver struct {
	*SimulatedDriver
	rate int
}

func NewSimulatedRateDriver(name string) *SimulatedRateDriver {
	return &SimulatedRateDriver{SimulatedDriver: NewSimulatedDriver(name)}
}

func (s *SimulatedRateDriver) Rate() (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	return s.rate, nil
}

func (s *SimulatedRateDriver) SetRate(value int) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.rate = value
	return nil
}
