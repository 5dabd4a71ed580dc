package account

import "sync"

// StateSlot holds one UI-facing state value. Every change goes through
// Update, an atomic read-modify-write, so concurrent writers never
// interleave partial field writes. Watchers receive the latest value only;
// intermediate values may be skipped when a watcher is slow.
type StateSlot[S any] struct {
	mu       sync.Mutex
	state    S
	watchers map[int]chan S
	nextID   int
}

// NewStateSlot creates a slot holding initial.
func NewStateSlot[S any](initial S) *StateSlot[S] {
	return &StateSlot[S]{
		state:    initial,
		watchers: make(map[int]chan S),
	}
}

// Get returns the current value.
func (s *StateSlot[S]) Get() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Update applies fn to the current value and publishes the result.
func (s *StateSlot[S]) Update(fn func(S) S) S {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = fn(s.state)
	for _, ch := range s.watchers {
		publishLatest(ch, s.state)
	}
	return s.state
}

// Watch returns a channel that receives the current value immediately and
// every later value. Call the returned func to stop watching.
func (s *StateSlot[S]) Watch() (<-chan S, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan S, 1)
	id := s.nextID
	s.nextID++
	s.watchers[id] = ch
	ch <- s.state

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.watchers, id)
			close(ch)
		})
	}
}

// publishLatest replaces any pending value in ch with v. Callers hold the
// slot lock, so ch has a single sender.
func publishLatest[S any](ch chan S, v S) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- v
}
