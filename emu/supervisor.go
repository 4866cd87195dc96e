package emu

import (
	"errors"
	"sync"
)

// ErrAlreadyActive is returned when a second handle is requested while one
// is live. Duplicate initialization historically produced a second engine
// instance behind the caller's back, so the guard fails loudly instead.
var ErrAlreadyActive = errors.New("emulator already active")

// Supervisor is a single-slot registry for the process-wide emulator
// handle. All handle creation goes through acquire so the at-most-one
// invariant is enforced in exactly one place.
type Supervisor struct {
	mu     sync.Mutex
	active *Handle
}

// NewSupervisor creates an empty supervisor. Production code uses the
// package default; tests construct their own to stay isolated.
func NewSupervisor() *Supervisor {
	return &Supervisor{}
}

// defaultSupervisor guards the one handle a process may own.
var defaultSupervisor = NewSupervisor()

// Default returns the process-wide supervisor.
func Default() *Supervisor {
	return defaultSupervisor
}

// acquire claims the slot for h. Fails with ErrAlreadyActive if another
// handle holds it.
func (s *Supervisor) acquire(h *Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return ErrAlreadyActive
	}
	s.active = h
	return nil
}

// release frees the slot if h holds it. Safe to call more than once.
func (s *Supervisor) release(h *Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == h {
		s.active = nil
	}
}

// Active reports whether a handle currently holds the slot.
func (s *Supervisor) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != nil
}
