package connectivity

import "sync"

// Signal exposes the current online state plus transitions. Reads are
// event-triggered, never polled: consumers subscribe and re-evaluate
// their cached-vs-fresh decision when the state flips.
type Signal interface {
	Online() bool
	// Subscribe registers fn for state transitions and returns an
	// unsubscribe function. fn is not called for the current state.
	Subscribe(fn func(online bool)) (unsubscribe func())
}

// ManualSignal is a Signal driven by explicit SetOnline calls, the test
// and simulator stand-in for a platform connectivity source.
type ManualSignal struct {
	mu     sync.Mutex
	online bool
	nextID int
	subs   map[int]func(bool)
}

func NewManualSignal(online bool) *ManualSignal {
	return &ManualSignal{
		online: online,
		subs:   map[int]func(bool){},
	}
}

func (s *ManualSignal) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

func (s *ManualSignal) Subscribe(fn func(bool)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// SetOnline flips the state and notifies subscribers on an actual change.
func (s *ManualSignal) SetOnline(online bool) {
	s.mu.Lock()
	if s.online == online {
		s.mu.Unlock()
		return
	}
	s.online = online
	fns := make([]func(bool), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(online)
	}
}
