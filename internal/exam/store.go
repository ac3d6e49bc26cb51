package exam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	platformredis "chalak/internal/platform/redis"
	"chalak/pkg/sentinel"
)

// MemoryStore keeps attempt state in process. Used in tests and when Redis
// is not configured.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]AttemptState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]AttemptState)}
}

func (m *MemoryStore) Get(_ context.Context, userID string) (AttemptState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.states[userID]
	if !ok {
		return AttemptState{}, fmt.Errorf("exam state %s: %w", userID, sentinel.ErrNotFound)
	}
	return state, nil
}

func (m *MemoryStore) Put(_ context.Context, state AttemptState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state.UserID] = state
	return nil
}

// RedisStore keeps one JSON document per citizen under a stable key.
type RedisStore struct {
	client *platformredis.Client
}

func NewRedisStore(client *platformredis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func key(userID string) string {
	return "exam:" + userID
}

func (s *RedisStore) Get(ctx context.Context, userID string) (AttemptState, error) {
	raw, err := s.client.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return AttemptState{}, fmt.Errorf("exam state %s: %w", userID, sentinel.ErrNotFound)
	}
	if err != nil {
		return AttemptState{}, fmt.Errorf("get exam state: %w", err)
	}

	var state AttemptState
	if err := json.Unmarshal(raw, &state); err != nil {
		return AttemptState{}, fmt.Errorf("decode exam state: %w", err)
	}
	return state, nil
}

func (s *RedisStore) Put(ctx context.Context, state AttemptState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode exam state: %w", err)
	}
	if err := s.client.Set(ctx, key(state.UserID), raw, 0).Err(); err != nil {
		return fmt.Errorf("set exam state: %w", err)
	}
	return nil
}
