package server

import (
	"sync"

	"go.trai.ch/tandem/internal/core/domain"
)

// Event reports a service state change.
type Event struct {
	Role  domain.Role
	State domain.ServiceState
	// Addr is the bound address. It is empty before the service is serving.
	Addr string
}

// service tracks the lifecycle of one running entry point.
type service struct {
	mu    sync.RWMutex
	role  domain.Role
	state domain.ServiceState
	addr  string

	gauge    func(float64)
	observer func(Event)
}

func newService(role domain.Role, gauge func(float64), observer func(Event)) *service {
	s := &service{role: role, state: domain.ServiceStarting, gauge: gauge, observer: observer}
	s.notify(Event{Role: role, State: domain.ServiceStarting})
	return s
}

// transition moves the service to next. Transitions the state machine does not allow are
// ignored and reported as false.
func (s *service) transition(next domain.ServiceState, addr string) bool {
	s.mu.Lock()
	if !s.state.CanTransition(next) {
		s.mu.Unlock()
		return false
	}
	s.state = next
	if addr != "" {
		s.addr = addr
	}
	ev := Event{Role: s.role, State: next, Addr: s.addr}
	s.mu.Unlock()

	s.notify(ev)
	return true
}

func (s *service) snapshot() (domain.ServiceState, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.addr
}

func (s *service) notify(ev Event) {
	if s.gauge != nil {
		s.gauge(float64(ev.State))
	}
	if s.observer != nil {
		s.observer(ev)
	}
}
