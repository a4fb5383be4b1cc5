package kv

import "context"

// Change describes a write observed on a shared key space.
type Change struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Deleted bool   `json:"deleted"`
	Origin  string `json:"origin"`
}

// Handler receives external changes for a subscribed key.
type Handler func(Change)

// Store is a durable key/value map with cross-handle change notification.
type Store interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// CompareAndSwap stores value only if the current value's Digest equals
	// oldDigest. An empty oldDigest expects the key to be absent.
	CompareAndSwap(ctx context.Context, key, oldDigest, value string) (bool, error)

	// Keys lists every present key.
	Keys(ctx context.Context) ([]string, error)

	// OnExternalChange registers h for writes to key made through other
	// handles. The returned func unsubscribes; calling it twice is safe.
	OnExternalChange(key string, h Handler) (unsubscribe func())

	// Close releases the handle and stops change delivery.
	Close() error
}

// Batcher is implemented by stores that can write several keys atomically.
type Batcher interface {
	SetMany(ctx context.Context, entries map[string]string) error
}

// SetMany writes entries through s, in one batch when s is a Batcher and
// key by key otherwise.
func SetMany(ctx context.Context, s Store, entries map[string]string) error {
	if b, ok := s.(Batcher); ok {
		return b.SetMany(ctx, entries)
	}
	for k, v := range entries {
		if err := s.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}
