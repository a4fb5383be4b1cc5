// Package memory is an in-process kv.Store. Handles opened from the same Hub
// share one key space and see each other's writes as external changes, the
// way two browser tabs share one origin's storage.
package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/unicampus/internal/common"
	"github.com/dmitrijs2005/unicampus/internal/kv"
)

// Hub owns the shared data of every handle opened from it.
type Hub struct {
	mu      sync.Mutex
	data    map[string]string
	handles map[string]*Store
}

func NewHub() *Hub {
	return &Hub{
		data:    make(map[string]string),
		handles: make(map[string]*Store),
	}
}

// Open returns a new handle with its own origin.
func (h *Hub) Open() *Store {
	s := &Store{hub: h, origin: uuid.NewString()}
	h.mu.Lock()
	h.handles[s.origin] = s
	h.mu.Unlock()
	return s
}

// New returns a handle on a private hub.
func New() *Store {
	return NewHub().Open()
}

// Store is one handle on a Hub.
type Store struct {
	hub    *Hub
	origin string
	subs   kv.Subscribers
	closed atomic.Bool
}

var _ kv.Store = (*Store)(nil)

// Origin identifies writes made through this handle.
func (s *Store) Origin() string { return s.origin }

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if s.closed.Load() {
		return "", false, common.ErrStoreClosed
	}
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	v, ok := s.hub.data[key]
	return v, ok, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if s.closed.Load() {
		return common.ErrStoreClosed
	}
	s.hub.mu.Lock()
	s.hub.data[key] = value
	peers := s.peersLocked()
	s.hub.mu.Unlock()

	s.broadcast(peers, kv.Change{Key: key, Value: value, Origin: s.origin})
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if s.closed.Load() {
		return common.ErrStoreClosed
	}
	s.hub.mu.Lock()
	_, existed := s.hub.data[key]
	delete(s.hub.data, key)
	peers := s.peersLocked()
	s.hub.mu.Unlock()

	if existed {
		s.broadcast(peers, kv.Change{Key: key, Deleted: true, Origin: s.origin})
	}
	return nil
}

func (s *Store) CompareAndSwap(ctx context.Context, key, oldDigest, value string) (bool, error) {
	if s.closed.Load() {
		return false, common.ErrStoreClosed
	}
	s.hub.mu.Lock()
	cur, ok := s.hub.data[key]
	if kv.DigestOf(cur, ok) != oldDigest {
		s.hub.mu.Unlock()
		return false, nil
	}
	s.hub.data[key] = value
	peers := s.peersLocked()
	s.hub.mu.Unlock()

	s.broadcast(peers, kv.Change{Key: key, Value: value, Origin: s.origin})
	return true, nil
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	if s.closed.Load() {
		return nil, common.ErrStoreClosed
	}
	s.hub.mu.Lock()
	keys := make([]string, 0, len(s.hub.data))
	for k := range s.hub.data {
		keys = append(keys, k)
	}
	s.hub.mu.Unlock()
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) OnExternalChange(key string, h kv.Handler) func() {
	return s.subs.Add(key, h)
}

// Close detaches the handle from its hub. It is safe to call more than once.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.hub.mu.Lock()
	delete(s.hub.handles, s.origin)
	s.hub.mu.Unlock()
	return nil
}

func (s *Store) peersLocked() []*Store {
	peers := make([]*Store, 0, len(s.hub.handles))
	for origin, h := range s.hub.handles {
		if origin != s.origin {
			peers = append(peers, h)
		}
	}
	return peers
}

func (s *Store) broadcast(peers []*Store, c kv.Change) {
	for _, p := range peers {
		p.subs.Notify(c)
	}
}
