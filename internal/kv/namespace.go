package kv

import (
	"context"
	"strings"
)

// Namespaced prefixes every key of an underlying Store.
type Namespaced struct {
	inner  Store
	prefix string
}

// WithNamespace returns s with prefix applied to every key. An empty prefix
// returns s unchanged.
func WithNamespace(s Store, prefix string) Store {
	if prefix == "" {
		return s
	}
	return &Namespaced{inner: s, prefix: prefix}
}

func (n *Namespaced) Get(ctx context.Context, key string) (string, bool, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *Namespaced) Set(ctx context.Context, key, value string) error {
	return n.inner.Set(ctx, n.prefix+key, value)
}

// SetMany prefixes every key and forwards to the inner store's batch write.
func (n *Namespaced) SetMany(ctx context.Context, entries map[string]string) error {
	prefixed := make(map[string]string, len(entries))
	for k, v := range entries {
		prefixed[n.prefix+k] = v
	}
	return SetMany(ctx, n.inner, prefixed)
}

func (n *Namespaced) Delete(ctx context.Context, key string) error {
	return n.inner.Delete(ctx, n.prefix+key)
}

func (n *Namespaced) CompareAndSwap(ctx context.Context, key, oldDigest, value string) (bool, error) {
	return n.inner.CompareAndSwap(ctx, n.prefix+key, oldDigest, value)
}

func (n *Namespaced) Keys(ctx context.Context) ([]string, error) {
	all, err := n.inner.Keys(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(all))
	for _, k := range all {
		if rest, ok := strings.CutPrefix(k, n.prefix); ok {
			keys = append(keys, rest)
		}
	}
	return keys, nil
}

func (n *Namespaced) OnExternalChange(key string, h Handler) func() {
	return n.inner.OnExternalChange(n.prefix+key, func(c Change) {
		c.Key = strings.TrimPrefix(c.Key, n.prefix)
		h(c)
	})
}

func (n *Namespaced) Close() error {
	return n.inner.Close()
}
