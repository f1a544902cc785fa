// Package convstate holds per-scope dialog state for multi-step
// conversations, replacing stacked one-shot reply listeners with a single
// dispatcher keyed on the current state.
package convstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// State names the step a scope's dialog is waiting on.
type State string

const (
	StateIdle             State = "idle"
	StateAwaitingAge      State = "awaiting_age"
	StateAwaitingHeight   State = "awaiting_height"
	StateAwaitingWeight   State = "awaiting_weight"
	StateAwaitingActivity State = "awaiting_activity"
)

// Session is one scope's dialog position plus the answers collected so far.
type Session struct {
	State State             `json:"state"`
	Data  map[string]string `json:"data"`
}

// Store persists dialog sessions. Sessions expire on their own so an
// abandoned dialog falls back to idle without a cleanup job.
type Store interface {
	Get(ctx context.Context, scope string) (Session, error)
	Put(ctx context.Context, scope string, s Session) error
	Clear(ctx context.Context, scope string) error
}

// RedisStore keeps sessions in redis under a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// Ensure RedisStore implements Store
var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a RedisStore. A zero ttl defaults to 10 minutes.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl == 0 {
		ttl = 10 * time.Minute
	}
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(scope string) string {
	return fmt.Sprintf("dialog:%s", scope)
}

// Get returns the scope's session, or an idle one if none is stored.
func (s *RedisStore) Get(ctx context.Context, scope string) (Session, error) {
	data, err := s.client.Get(ctx, sessionKey(scope)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{State: StateIdle}, nil
		}
		return Session{}, fmt.Errorf("failed to get dialog session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("failed to unmarshal dialog session: %w", err)
	}
	return sess, nil
}

// Put stores the session and restarts its expiry window.
func (s *RedisStore) Put(ctx context.Context, scope string, sess Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal dialog session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(scope), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save dialog session: %w", err)
	}
	return nil
}

// Clear ends the dialog, returning the scope to idle.
func (s *RedisStore) Clear(ctx context.Context, scope string) error {
	if err := s.client.Del(ctx, sessionKey(scope)).Err(); err != nil {
		return fmt.Errorf("failed to clear dialog session: %w", err)
	}
	return nil
}
