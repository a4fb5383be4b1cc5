package kv

import "sync"

// Subscribers is a per-key handler registry that backends embed to implement
// OnExternalChange. Handlers run on the notifying goroutine, outside any lock,
// so they may call back into the store.
type Subscribers struct {
	mu    sync.RWMutex
	next  uint64
	byKey map[string]map[uint64]Handler
}

// Add registers h for key and returns an idempotent unsubscribe func.
func (s *Subscribers) Add(key string, h Handler) func() {
	s.mu.Lock()
	if s.byKey == nil {
		s.byKey = make(map[string]map[uint64]Handler)
	}
	s.next++
	id := s.next
	if s.byKey[key] == nil {
		s.byKey[key] = make(map[uint64]Handler)
	}
	s.byKey[key][id] = h
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.byKey[key], id)
			if len(s.byKey[key]) == 0 {
				delete(s.byKey, key)
			}
		})
	}
}

// Notify delivers c to every handler registered for c.Key.
func (s *Subscribers) Notify(c Change) {
	s.mu.RLock()
	handlers := make([]Handler, 0, len(s.byKey[c.Key]))
	for _, h := range s.byKey[c.Key] {
		handlers = append(handlers, h)
	}
	s.mu.RUnlock()

	for _, h := range handlers {
		h(c)
	}
}

// Len reports how many handlers are registered for key.
func (s *Subscribers) Len(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byKey[key])
}
