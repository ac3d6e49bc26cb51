package verification

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

// MemoryStore keeps applications in process. Used in tests and when Redis is
// not configured.
type MemoryStore struct {
	mu   sync.RWMutex
	apps map[string]Application
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{apps: make(map[string]Application)}
}

func (m *MemoryStore) Get(_ context.Context, userID string) (Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	app, ok := m.apps[userID]
	if !ok {
		return Application{}, fmt.Errorf("verification %s: %w", userID, sentinel.ErrNotFound)
	}
	return app, nil
}

func (m *MemoryStore) Put(_ context.Context, app Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apps[app.UserID] = app
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
	return "verification:" + userID
}

func (s *RedisStore) Get(ctx context.Context, userID string) (Application, error) {
	raw, err := s.client.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Application{}, fmt.Errorf("verification %s: %w", userID, sentinel.ErrNotFound)
	}
	if err != nil {
		return Application{}, fmt.Errorf("get verification state: %w", err)
	}

	var app Application
	if err := json.Unmarshal(raw, &app); err != nil {
		return Application{}, fmt.Errorf("decode verification state: %w", err)
	}
	return app, nil
}

func (s *RedisStore) Put(ctx context.Context, app Application) error {
	raw, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("encode verification state: %w", err)
	}
	if err := s.client.Set(ctx, key(app.UserID), raw, 0).Err(); err != nil {
		return fmt.Errorf("set verification state: %w", err)
	}
	return nil
}
