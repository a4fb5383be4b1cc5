package kv

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/unicampus/internal/common"
)

// DecodeOr decodes raw as JSON into a T. It returns def when the value is
// absent (ok == false), empty, or does not parse.
func DecodeOr[T any](raw string, ok bool, def T) T {
	if !ok || raw == "" {
		return def
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return def
	}
	return v
}

// Load reads key and decodes it with DecodeOr. Only backend errors are returned.
func Load[T any](ctx context.Context, s Store, key string, def T) (T, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return def, fmt.Errorf("read %s: %w", key, err)
	}
	return DecodeOr(raw, ok, def), nil
}

// Save encodes v as JSON and stores it under key.
func Save(ctx context.Context, s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, string(b)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Update performs an optimistic read-modify-write of key. fn receives a
// freshly decoded value on every attempt and returns the replacement; the
// write is a CompareAndSwap against the value that was read. After attempts
// lost races Update returns common.ErrVersionConflict. An error from fn
// aborts without writing.
func Update[T any](ctx context.Context, s Store, key string, def T, attempts int, fn func(T) (T, error)) (T, error) {
	var zero T
	if attempts < 1 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		raw, ok, err := s.Get(ctx, key)
		if err != nil {
			return zero, fmt.Errorf("read %s: %w", key, err)
		}

		next, err := fn(DecodeOr(raw, ok, def))
		if err != nil {
			return zero, err
		}

		b, err := json.Marshal(next)
		if err != nil {
			return zero, fmt.Errorf("encode %s: %w", key, err)
		}

		swapped, err := s.CompareAndSwap(ctx, key, DigestOf(raw, ok), string(b))
		if err != nil {
			return zero, fmt.Errorf("write %s: %w", key, err)
		}
		if swapped {
			return next, nil
		}

		if err := ctx.Err(); err != nil {
			return zero, err
		}
	}

	return zero, fmt.Errorf("update %s: %w", key, common.ErrVersionConflict)
}
