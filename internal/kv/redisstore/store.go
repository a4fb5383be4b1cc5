// Package redisstore implements kv.Store on Redis, for server deployments
// where several replicas share one key space.
//
// Each key is a hash <prefix>kv:<key> holding the value and its digest.
// Writes are announced on the <prefix>kv:changes channel as JSON kv.Change
// messages; every handle runs one subscriber goroutine and forwards changes
// from other origins to its OnExternalChange handlers.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/unicampus/internal/common"
	"github.com/dmitrijs2005/unicampus/internal/kv"
	"github.com/dmitrijs2005/unicampus/internal/logging"
)

const (
	DefaultPrefix = "unicampus:"

	fieldValue  = "value"
	fieldDigest = "digest"
)

var errDigestMismatch = errors.New("digest mismatch")

// Options tunes a Store.
type Options struct {
	Prefix string
	Logger logging.Logger
}

// Store is a kv.Store over Redis hashes and pub/sub.
type Store struct {
	client    *redis.Client
	ownClient bool
	keyPrefix string
	channel   string
	origin    string
	logger    logging.Logger

	subs   kv.Subscribers
	pubsub *redis.PubSub
	closed atomic.Bool
	wg     sync.WaitGroup
}

var _ kv.Store = (*Store)(nil)

// Open dials addr and returns a Store that owns the client.
func Open(ctx context.Context, addr string, opts Options) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis %s: %w", addr, err)
	}
	s, err := New(ctx, client, opts)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	s.ownClient = true
	return s, nil
}

// New wraps an existing client. The caller keeps ownership of client.
func New(ctx context.Context, client *redis.Client, opts Options) (*Store, error) {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	s := &Store{
		client:    client,
		keyPrefix: prefix + "kv:",
		channel:   prefix + "kv:changes",
		origin:    uuid.NewString(),
		logger:    logger,
	}

	s.pubsub = client.Subscribe(ctx, s.channel)
	// Wait for the subscription confirmation so no change published after
	// New returns is missed.
	if _, err := s.pubsub.Receive(ctx); err != nil {
		_ = s.pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", s.channel, err)
	}

	s.wg.Add(1)
	go s.listen()
	return s, nil
}

// Origin identifies writes made through this handle.
func (s *Store) Origin() string { return s.origin }

func (s *Store) redisKey(key string) string { return s.keyPrefix + key }

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if s.closed.Load() {
		return "", false, common.ErrStoreClosed
	}
	v, err := s.client.HGet(ctx, s.redisKey(key), fieldValue).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get kv[%s]: %w", key, err)
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if s.closed.Load() {
		return common.ErrStoreClosed
	}
	if err := s.client.HSet(ctx, s.redisKey(key), fieldValue, value, fieldDigest, kv.Digest(value)).Err(); err != nil {
		return fmt.Errorf("failed to set kv[%s]: %w", key, err)
	}
	s.publish(ctx, kv.Change{Key: key, Value: value, Origin: s.origin})
	return nil
}

// SetMany writes every entry in one MULTI/EXEC block.
func (s *Store) SetMany(ctx context.Context, entries map[string]string) error {
	if s.closed.Load() {
		return common.ErrStoreClosed
	}
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for k, v := range entries {
			p.HSet(ctx, s.redisKey(k), fieldValue, v, fieldDigest, kv.Digest(v))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set kv batch: %w", err)
	}
	for k, v := range entries {
		s.publish(ctx, kv.Change{Key: k, Value: v, Origin: s.origin})
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if s.closed.Load() {
		return common.ErrStoreClosed
	}
	n, err := s.client.Del(ctx, s.redisKey(key)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete kv[%s]: %w", key, err)
	}
	if n > 0 {
		s.publish(ctx, kv.Change{Key: key, Deleted: true, Origin: s.origin})
	}
	return nil
}

func (s *Store) CompareAndSwap(ctx context.Context, key, oldDigest, value string) (bool, error) {
	if s.closed.Load() {
		return false, common.ErrStoreClosed
	}
	rk := s.redisKey(key)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.HGet(ctx, rk, fieldDigest).Result()
		if errors.Is(err, redis.Nil) {
			cur = ""
		} else if err != nil {
			return err
		}
		if cur != oldDigest {
			return errDigestMismatch
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, rk, fieldValue, value, fieldDigest, kv.Digest(value))
			return nil
		})
		return err
	}, rk)

	switch {
	case err == nil:
		s.publish(ctx, kv.Change{Key: key, Value: value, Origin: s.origin})
		return true, nil
	case errors.Is(err, errDigestMismatch), errors.Is(err, redis.TxFailedErr):
		return false, nil
	default:
		return false, fmt.Errorf("failed to swap kv[%s]: %w", key, err)
	}
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	if s.closed.Load() {
		return nil, common.ErrStoreClosed
	}
	var keys []string
	iter := s.client.Scan(ctx, 0, s.keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.keyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list kv keys: %w", err)
	}
	return keys, nil
}

func (s *Store) OnExternalChange(key string, h kv.Handler) func() {
	return s.subs.Add(key, h)
}

// Close stops the subscriber and, for stores created by Open, the client.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	err := s.pubsub.Close()
	s.wg.Wait()
	if s.ownClient {
		err = errors.Join(err, s.client.Close())
	}
	return err
}

func (s *Store) publish(ctx context.Context, c kv.Change) {
	payload, err := json.Marshal(c)
	if err != nil {
		return
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		s.logger.Warn(ctx, "failed to publish change", "key", c.Key, "error", err)
	}
}

func (s *Store) listen() {
	defer s.wg.Done()
	for msg := range s.pubsub.Channel() {
		var c kv.Change
		if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
			s.logger.Warn(context.Background(), "dropping malformed change", "error", err)
			continue
		}
		if c.Origin == s.origin {
			continue
		}
		s.subs.Notify(c)
	}
}
